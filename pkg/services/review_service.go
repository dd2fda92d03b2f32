package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/repositories"
	"github.com/propertyconnect/engine/pkg/validation"
)

// ReviewService provides review authoring and listing.
type ReviewService interface {
	// CreateAgentReview stores the review and refreshes the agent's
	// aggregate rating.
	CreateAgentReview(ctx context.Context, agentID, userID uuid.UUID, req *validation.ReviewRequest) (*models.Review, error)
	CreatePropertyReview(ctx context.Context, propertyID, userID uuid.UUID, req *validation.ReviewRequest) (*models.Review, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]*models.Review, int, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*models.Review, int, error)
}

type reviewService struct {
	reviews    repositories.ReviewRepository
	agents     repositories.AgentRepository
	properties repositories.PropertyRepository
	logger     *zap.Logger
}

func NewReviewService(
	reviews repositories.ReviewRepository,
	agents repositories.AgentRepository,
	properties repositories.PropertyRepository,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviews:    reviews,
		agents:     agents,
		properties: properties,
		logger:     logger.Named("review-service"),
	}
}

var _ ReviewService = (*reviewService)(nil)

func (s *reviewService) CreateAgentReview(ctx context.Context, agentID, userID uuid.UUID, req *validation.ReviewRequest) (*models.Review, error) {
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		return nil, err
	}

	review := &models.Review{
		Rating:     req.Rating,
		Comment:    req.Comment,
		TargetKind: models.ReviewTargetAgent,
		UserID:     userID,
		AgentID:    &agentID,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	// Keep the denormalized rating in sync with the review set.
	avg, count, err := s.reviews.AgentRating(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if err := s.agents.SetRating(ctx, agentID, avg, count); err != nil {
		return nil, err
	}

	s.logger.Info("created agent review",
		zap.String("agent_id", agentID.String()),
		zap.Int("rating", req.Rating),
		zap.Float64("new_average", avg))
	return review, nil
}

func (s *reviewService) CreatePropertyReview(ctx context.Context, propertyID, userID uuid.UUID, req *validation.ReviewRequest) (*models.Review, error) {
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	review := &models.Review{
		Rating:     req.Rating,
		Comment:    req.Comment,
		TargetKind: models.ReviewTargetProperty,
		UserID:     userID,
		PropertyID: &propertyID,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	return s.reviews.ListByAgent(ctx, agentID, page, limit)
}

func (s *reviewService) ListByProperty(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	return s.reviews.ListByProperty(ctx, propertyID, page, limit)
}
