package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/repositories"
	"github.com/propertyconnect/engine/pkg/validation"
)

// AuthService provides registration and credential operations.
type AuthService interface {
	// Register creates the user plus its role profile and returns the user
	// with a signed bearer token. Duplicate emails map to ErrConflict.
	Register(ctx context.Context, req *validation.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req *validation.LoginRequest) (*models.User, string, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *validation.ChangePasswordRequest) error
}

type authService struct {
	users  repositories.UserRepository
	buyers repositories.BuyerRepository
	tokens *auth.TokenService
	logger *zap.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	buyers repositories.BuyerRepository,
	tokens *auth.TokenService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:  users,
		buyers: buyers,
		tokens: tokens,
		logger: logger.Named("auth-service"),
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Register(ctx context.Context, req *validation.RegisterRequest) (*models.User, string, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	// Agent profiles are created later through the agents endpoint, where
	// the license number is checked. Buyers get their profile immediately.
	if req.Role == models.RoleBuyer {
		buyer := &models.Buyer{
			UserID:         user.ID,
			PreferredAreas: emptyIfNil(req.PreferredAreas),
			BudgetMin:      req.BudgetMin,
			BudgetMax:      req.BudgetMax,
			PropertyTypes:  emptyIfNil(req.PropertyTypes),
		}
		if err := s.buyers.Create(ctx, buyer); err != nil {
			return nil, "", err
		}
		user.Buyer = buyer
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("registered user",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role))
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *validation.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login attempt", zap.String("user_id", user.ID.String()))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *validation.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
