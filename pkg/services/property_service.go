package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/chain"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/places"
	"github.com/propertyconnect/engine/pkg/repositories"
	"github.com/propertyconnect/engine/pkg/validation"
)

// enrichmentTimeout bounds a detached enrichment task. The request that
// spawned the task never waits on it.
const enrichmentTimeout = 30 * time.Second

// PropertyService provides listing operations. Reads are public; writes
// require the principal to own the listing through their agent profile.
type PropertyService interface {
	// Create stores the listing for the principal's agent profile, then
	// fires notary, analysis and map enrichment as detached tasks. The
	// caller gets no completion signal for those.
	Create(ctx context.Context, userID uuid.UUID, req *validation.PropertyCreateRequest) (*models.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, id, userID uuid.UUID, req *validation.PropertyUpdateRequest) (*models.Property, error)
	// Delete removes an owned listing. Refused while a sale is open on it.
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Search(ctx context.Context, filters *models.PropertyFilters) ([]*models.Property, int, error)
	// Recommend is the keyword entry point; it performs the same substring
	// search over active listings.
	Recommend(ctx context.Context, query, location string, page, limit int) ([]*models.Property, int, error)
	Featured(ctx context.Context, limit int) ([]*models.Property, error)
	Recent(ctx context.Context, limit int) ([]*models.Property, error)
	// ListByAgent returns the principal's own listings, optionally
	// narrowed to one status.
	ListByAgent(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*models.Property, int, error)
	Stats(ctx context.Context) (*models.PropertyStats, error)
}

type propertyService struct {
	properties   repositories.PropertyRepository
	agents       repositories.AgentRepository
	transactions repositories.TransactionRepository
	notary       *chain.Notary
	places       *places.Client
	logger       *zap.Logger
}

func NewPropertyService(
	properties repositories.PropertyRepository,
	agents repositories.AgentRepository,
	transactions repositories.TransactionRepository,
	notary *chain.Notary,
	placesClient *places.Client,
	logger *zap.Logger,
) PropertyService {
	return &propertyService{
		properties:   properties,
		agents:       agents,
		transactions: transactions,
		notary:       notary,
		places:       placesClient,
		logger:       logger.Named("property-service"),
	}
}

var _ PropertyService = (*propertyService)(nil)

func (s *propertyService) Create(ctx context.Context, userID uuid.UUID, req *validation.PropertyCreateRequest) (*models.Property, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}

	req.ApplyDefaults()

	property := &models.Property{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		Status:         models.PropertyStatusActive,
		Price:          req.Price,
		Currency:       req.Currency,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		Area:           req.Area,
		AreaUnit:       req.AreaUnit,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Country:        req.Country,
		Latitude:       req.Coordinates.Lat,
		Longitude:      req.Coordinates.Lng,
		Images:         req.Images,
		VirtualTourURL: req.VirtualTourURL,
		Amenities:      emptyIfNil(req.Amenities),
		YearBuilt:      req.YearBuilt,
		LotSize:        req.LotSize,
		AgentID:        agent.ID,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("created property",
		zap.String("property_id", property.ID.String()),
		zap.String("agent_id", agent.ID.String()))

	s.spawnEnrichment(property)

	property.Agent = agent
	return property, nil
}

// spawnEnrichment fires the integration stubs without awaiting them. Each
// task has its own deadline and error boundary; failures are logged and
// never reach the caller. In-flight tasks may be dropped on shutdown.
func (s *propertyService) spawnEnrichment(property *models.Property) {
	run := func(name string, task func(context.Context) error) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("enrichment task panicked",
						zap.String("task", name),
						zap.String("property_id", property.ID.String()),
						zap.Any("panic", r))
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), enrichmentTimeout)
			defer cancel()
			if err := task(ctx); err != nil {
				s.logger.Warn("enrichment task failed",
					zap.String("task", name),
					zap.String("property_id", property.ID.String()),
					zap.Error(err))
			}
		}()
	}

	run("notary", func(ctx context.Context) error {
		txHash, err := s.notary.SubmitVerification(ctx, property)
		if err != nil {
			return err
		}
		return s.properties.SetTxHash(ctx, property.ID, txHash)
	})

	run("analysis", func(ctx context.Context) error {
		analysis, err := json.Marshal(estimateRates(property))
		if err != nil {
			return err
		}
		return s.properties.SetAIAnalysis(ctx, property.ID, analysis)
	})

	if s.places != nil {
		run("insights", func(ctx context.Context) error {
			insights, err := s.places.LocalInsights(ctx, property.Latitude, property.Longitude)
			if err != nil {
				return err
			}
			payload, err := json.Marshal(insights)
			if err != nil {
				return err
			}
			return s.properties.SetLocalInsights(ctx, property.ID, payload)
		})
	}
}

// rateAnalysis is the stored price-analysis payload. The numbers come from
// simple arithmetic over the listing itself until a real model is wired in.
type rateAnalysis struct {
	PricePerUnit float64   `json:"pricePerUnit"`
	PriceBandLow float64   `json:"priceBandLow"`
	PriceBandHi  float64   `json:"priceBandHigh"`
	Confidence   string    `json:"confidence"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

func estimateRates(p *models.Property) *rateAnalysis {
	perUnit := 0.0
	if p.Area > 0 {
		perUnit = p.Price / p.Area
	}
	return &rateAnalysis{
		PricePerUnit: perUnit,
		PriceBandLow: p.Price * 0.9,
		PriceBandHi:  p.Price * 1.1,
		Confidence:   "low",
		GeneratedAt:  time.Now().UTC(),
	}
}

func (s *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.properties.GetByID(ctx, id)
}

func (s *propertyService) Update(ctx context.Context, id, userID uuid.UUID, req *validation.PropertyUpdateRequest) (*models.Property, error) {
	property, err := s.requireOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	applyPropertyUpdate(property, req)

	if err := s.properties.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.requireOwned(ctx, id, userID); err != nil {
		return err
	}

	// An open sale pins the listing; cancel the contract first.
	sales, err := s.transactions.ListByProperty(ctx, id)
	if err != nil {
		return err
	}
	for _, tx := range sales {
		if tx.Status == models.TransactionStatusPending {
			return apperrors.ErrConflict
		}
	}

	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted property", zap.String("property_id", id.String()))
	return nil
}

func (s *propertyService) Search(ctx context.Context, filters *models.PropertyFilters) ([]*models.Property, int, error) {
	return s.properties.Search(ctx, filters)
}

func (s *propertyService) Recommend(ctx context.Context, query, location string, page, limit int) ([]*models.Property, int, error) {
	filters := &models.PropertyFilters{
		Query:    query,
		City:     location,
		Statuses: []string{models.PropertyStatusActive},
		Page:     page,
		Limit:    limit,
	}
	return s.properties.Search(ctx, filters)
}

func (s *propertyService) Featured(ctx context.Context, limit int) ([]*models.Property, error) {
	return s.properties.ListFeatured(ctx, normalizeLimit(limit))
}

func (s *propertyService) Recent(ctx context.Context, limit int) ([]*models.Property, error) {
	return s.properties.ListRecent(ctx, normalizeLimit(limit))
}

func (s *propertyService) ListByAgent(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*models.Property, int, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, apperrors.ErrForbidden
		}
		return nil, 0, err
	}

	filters := &models.PropertyFilters{
		AgentID: &agent.ID,
		Page:    page,
		Limit:   limit,
	}
	if status != "" {
		if !models.ValidPropertyStatus(status) {
			return nil, 0, fmt.Errorf("invalid status filter: %s", status)
		}
		filters.Statuses = []string{status}
	}
	return s.properties.Search(ctx, filters)
}

func (s *propertyService) Stats(ctx context.Context) (*models.PropertyStats, error) {
	return s.properties.Stats(ctx)
}

// requireOwned loads the property and verifies the principal's agent
// profile owns it.
func (s *propertyService) requireOwned(ctx context.Context, id, userID uuid.UUID) (*models.Property, error) {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.Agent == nil || property.Agent.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return property, nil
}

func applyPropertyUpdate(p *models.Property, req *validation.PropertyUpdateRequest) {
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = *req.Currency
	}
	if req.Bedrooms != nil {
		p.Bedrooms = req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = req.Bathrooms
	}
	if req.Area != nil {
		p.Area = *req.Area
	}
	if req.AreaUnit != nil {
		p.AreaUnit = *req.AreaUnit
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.Coordinates != nil {
		p.Latitude = req.Coordinates.Lat
		p.Longitude = req.Coordinates.Lng
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.VirtualTourURL != nil {
		p.VirtualTourURL = req.VirtualTourURL
	}
	if req.Amenities != nil {
		p.Amenities = req.Amenities
	}
	if req.YearBuilt != nil {
		p.YearBuilt = req.YearBuilt
	}
	if req.LotSize != nil {
		p.LotSize = req.LotSize
	}
}

func normalizeLimit(limit int) int {
	switch {
	case limit < 1:
		return 10
	case limit > 100:
		return 100
	}
	return limit
}
