package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/models"
)

// BuyerRepository defines the interface for buyer profile data access.
type BuyerRepository interface {
	Create(ctx context.Context, buyer *models.Buyer) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Buyer, error)
	UpdatePreferences(ctx context.Context, buyer *models.Buyer) error
	// SetSavedProperties replaces the saved-property reference set. Entries
	// are weak references and are not checked against the properties table.
	SetSavedProperties(ctx context.Context, userID uuid.UUID, saved []uuid.UUID) error
}

type buyerRepository struct {
	db *database.DB
}

// NewBuyerRepository creates a new buyer repository on the given handle.
func NewBuyerRepository(db *database.DB) BuyerRepository {
	return &buyerRepository{db: db}
}

func (r *buyerRepository) Create(ctx context.Context, buyer *models.Buyer) error {
	if buyer.ID == uuid.Nil {
		buyer.ID = uuid.New()
	}
	if buyer.PreferredAreas == nil {
		buyer.PreferredAreas = []string{}
	}
	if buyer.PropertyTypes == nil {
		buyer.PropertyTypes = []string{}
	}
	if buyer.SavedProperties == nil {
		buyer.SavedProperties = []uuid.UUID{}
	}
	now := time.Now()
	buyer.CreatedAt = now
	buyer.UpdatedAt = now

	query := `
		INSERT INTO buyers (id, user_id, preferred_areas, budget_min, budget_max, property_types, saved_properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		buyer.ID,
		buyer.UserID,
		buyer.PreferredAreas,
		buyer.BudgetMin,
		buyer.BudgetMax,
		buyer.PropertyTypes,
		buyer.SavedProperties,
		buyer.CreatedAt,
		buyer.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create buyer: %w", err)
	}
	return nil
}

func (r *buyerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Buyer, error) {
	query := `
		SELECT id, user_id, preferred_areas, budget_min, budget_max, property_types, saved_properties, created_at, updated_at
		FROM buyers
		WHERE user_id = $1`

	var buyer models.Buyer
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&buyer.ID,
		&buyer.UserID,
		&buyer.PreferredAreas,
		&buyer.BudgetMin,
		&buyer.BudgetMax,
		&buyer.PropertyTypes,
		&buyer.SavedProperties,
		&buyer.CreatedAt,
		&buyer.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}
	return &buyer, nil
}

func (r *buyerRepository) UpdatePreferences(ctx context.Context, buyer *models.Buyer) error {
	buyer.UpdatedAt = time.Now()

	query := `
		UPDATE buyers
		SET preferred_areas = $1, budget_min = $2, budget_max = $3, property_types = $4, updated_at = $5
		WHERE user_id = $6`

	result, err := r.db.Exec(ctx, query,
		buyer.PreferredAreas,
		buyer.BudgetMin,
		buyer.BudgetMax,
		buyer.PropertyTypes,
		buyer.UpdatedAt,
		buyer.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update buyer preferences: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *buyerRepository) SetSavedProperties(ctx context.Context, userID uuid.UUID, saved []uuid.UUID) error {
	if saved == nil {
		saved = []uuid.UUID{}
	}
	result, err := r.db.Exec(ctx,
		`UPDATE buyers SET saved_properties = $1, updated_at = $2 WHERE user_id = $3`,
		saved, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update saved properties: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
