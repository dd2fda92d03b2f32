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

// UserService provides profile and saved-listing operations for the
// authenticated principal.
type UserService interface {
	// GetProfile returns the user with its role profile attached.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *validation.UpdateProfileRequest) (*models.User, error)

	// ToggleSavedProperty saves the property if absent and unsaves it if
	// present, returning whether it is saved afterwards.
	ToggleSavedProperty(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	// SavedProperties expands the buyer's saved references, dropping any
	// that point at deleted listings.
	SavedProperties(ctx context.Context, userID uuid.UUID) ([]*models.Property, error)

	// UpdateBuyerPreferences upserts the buyer profile, creating it on
	// first use.
	UpdateBuyerPreferences(ctx context.Context, userID uuid.UUID, req *validation.BuyerPreferencesRequest) (*models.Buyer, error)

	// DeleteAccount removes the user; profile, listing, transaction and
	// review rows go with it through the schema's cascades.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	users      repositories.UserRepository
	agents     repositories.AgentRepository
	buyers     repositories.BuyerRepository
	properties repositories.PropertyRepository
	logger     *zap.Logger
}

func NewUserService(
	users repositories.UserRepository,
	agents repositories.AgentRepository,
	buyers repositories.BuyerRepository,
	properties repositories.PropertyRepository,
	logger *zap.Logger,
) UserService {
	return &userService{
		users:      users,
		agents:     agents,
		buyers:     buyers,
		properties: properties,
		logger:     logger.Named("user-service"),
	}
}

var _ UserService = (*userService)(nil)

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleAgent:
		agent, err := s.agents.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		user.Agent = agent
	case models.RoleBuyer:
		buyer, err := s.buyers.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		user.Buyer = buyer
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *validation.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ToggleSavedProperty(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	// The toggled listing must exist; stale entries are only tolerated on reads.
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return false, err
	}

	buyer, err := s.buyers.GetByUserID(ctx, userID)
	if err != nil {
		// Only buyers carry a saved list; other roles are rejected, not 404ed.
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, apperrors.ErrForbidden
		}
		return false, err
	}

	saved := make([]uuid.UUID, 0, len(buyer.SavedProperties)+1)
	found := false
	for _, id := range buyer.SavedProperties {
		if id == propertyID {
			found = true
			continue
		}
		saved = append(saved, id)
	}
	if !found {
		saved = append(saved, propertyID)
	}

	if err := s.buyers.SetSavedProperties(ctx, userID, saved); err != nil {
		return false, err
	}

	s.logger.Debug("toggled saved property",
		zap.String("user_id", userID.String()),
		zap.String("property_id", propertyID.String()),
		zap.Bool("saved", !found))
	return !found, nil
}

func (s *userService) SavedProperties(ctx context.Context, userID uuid.UUID) ([]*models.Property, error) {
	buyer, err := s.buyers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	return s.properties.ListByIDs(ctx, buyer.SavedProperties)
}

func (s *userService) UpdateBuyerPreferences(ctx context.Context, userID uuid.UUID, req *validation.BuyerPreferencesRequest) (*models.Buyer, error) {
	buyer, err := s.buyers.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		buyer = &models.Buyer{UserID: userID}
		if err := s.buyers.Create(ctx, buyer); err != nil {
			return nil, err
		}
	}

	buyer.PreferredAreas = emptyIfNil(req.PreferredAreas)
	buyer.BudgetMin = req.BudgetMin
	buyer.BudgetMax = req.BudgetMax
	buyer.PropertyTypes = emptyIfNil(req.PropertyTypes)

	if err := s.buyers.UpdatePreferences(ctx, buyer); err != nil {
		return nil, err
	}
	return buyer, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("deleted account", zap.String("user_id", userID.String()))
	return nil
}
