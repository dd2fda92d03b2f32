package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/repositories"
	"github.com/propertyconnect/engine/pkg/validation"
)

// AgentService provides agent directory and profile operations.
type AgentService interface {
	List(ctx context.Context, filters *models.AgentFilters) ([]*models.Agent, int, error)
	// GetByID returns the agent with recent listings and stored metrics attached.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	// CreateProfile creates the principal's agent profile. Rejects with
	// ErrConflict when a profile already exists or the license is taken.
	CreateProfile(ctx context.Context, userID uuid.UUID, req *validation.AgentProfileRequest) (*models.Agent, error)
	// UpdateProfile updates the agent, re-checking license uniqueness
	// against every other agent. Only the owning principal may update.
	UpdateProfile(ctx context.Context, id, userID uuid.UUID, req *validation.AgentProfileRequest) (*models.Agent, error)
	// Metrics is restricted to the owning principal. It combines stored
	// monthly rollups with a live breakdown of listings by status.
	Metrics(ctx context.Context, id, userID uuid.UUID) (*models.AgentMetricsReport, error)
	// Deactivate flips the active flag. The row and its listings stay.
	Deactivate(ctx context.Context, id, userID uuid.UUID) error
}

type agentService struct {
	agents     repositories.AgentRepository
	properties repositories.PropertyRepository
	metrics    repositories.MetricRepository
	logger     *zap.Logger
}

func NewAgentService(
	agents repositories.AgentRepository,
	properties repositories.PropertyRepository,
	metrics repositories.MetricRepository,
	logger *zap.Logger,
) AgentService {
	return &agentService{
		agents:     agents,
		properties: properties,
		metrics:    metrics,
		logger:     logger.Named("agent-service"),
	}
}

var _ AgentService = (*agentService)(nil)

func (s *agentService) List(ctx context.Context, filters *models.AgentFilters) ([]*models.Agent, int, error) {
	return s.agents.List(ctx, filters)
}

func (s *agentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	listings, _, err := s.properties.Search(ctx, &models.PropertyFilters{AgentID: &id, Limit: 10})
	if err != nil {
		return nil, err
	}
	agent.Properties = make([]*models.PropertySummary, 0, len(listings))
	for _, p := range listings {
		agent.Properties = append(agent.Properties, p.Summary())
	}

	monthly, err := s.metrics.ListByAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	agent.Metrics = monthly

	return agent, nil
}

func (s *agentService) CreateProfile(ctx context.Context, userID uuid.UUID, req *validation.AgentProfileRequest) (*models.Agent, error) {
	if _, err := s.agents.GetByUserID(ctx, userID); err == nil {
		return nil, apperrors.ErrConflict
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	agent := &models.Agent{
		UserID:        userID,
		LicenseNumber: req.LicenseNumber,
		Agency:        req.Agency,
		Experience:    req.Experience,
		Bio:           req.Bio,
		Specialties:   emptyIfNil(req.Specialties),
		ServiceAreas:  emptyIfNil(req.ServiceAreas),
		IsActive:      true,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}

	s.logger.Info("created agent profile",
		zap.String("agent_id", agent.ID.String()),
		zap.String("user_id", userID.String()))
	return agent, nil
}

func (s *agentService) UpdateProfile(ctx context.Context, id, userID uuid.UUID, req *validation.AgentProfileRequest) (*models.Agent, error) {
	agent, err := s.requireOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.LicenseNumber != agent.LicenseNumber {
		existing, err := s.agents.GetByLicense(ctx, req.LicenseNumber)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != agent.ID {
			return nil, apperrors.ErrConflict
		}
		agent.LicenseNumber = req.LicenseNumber
	}

	agent.Agency = req.Agency
	agent.Experience = req.Experience
	agent.Bio = req.Bio
	agent.Specialties = emptyIfNil(req.Specialties)
	agent.ServiceAreas = emptyIfNil(req.ServiceAreas)

	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *agentService) Metrics(ctx context.Context, id, userID uuid.UUID) (*models.AgentMetricsReport, error) {
	if _, err := s.requireOwned(ctx, id, userID); err != nil {
		return nil, err
	}

	monthly, err := s.metrics.ListByAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.properties.CountByStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.AgentMetricsReport{
		Monthly:         monthly,
		StatusBreakdown: breakdown,
	}, nil
}

func (s *agentService) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.requireOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.agents.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info("deactivated agent", zap.String("agent_id", id.String()))
	return nil
}

// requireOwned loads the agent and verifies the principal owns the profile.
func (s *agentService) requireOwned(ctx context.Context, id, userID uuid.UUID) (*models.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agent.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return agent, nil
}
