package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/models"
)

// PropertyRepository defines the interface for listing data access.
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	// GetByID returns the property with its owning agent (and the agent's
	// public user) attached.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search returns a page of properties matching the filters plus the
	// total count computed with the same predicate.
	Search(ctx context.Context, filters *models.PropertyFilters) ([]*models.Property, int, error)
	// ListByIDs returns the properties that still exist among ids; missing
	// entries are silently dropped so stale saved references never fail a read.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Property, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.Property, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Property, error)
	// CountByStatus returns the agent's live listing counts keyed by status.
	CountByStatus(ctx context.Context, agentID uuid.UUID) (map[string]int, error)
	Stats(ctx context.Context) (*models.PropertyStats, error)
	SetVerification(ctx context.Context, id uuid.UUID, txHash string) error
	// SetTxHash records the notary transaction without flipping the
	// verified flag; verification is an explicit, owner-driven step.
	SetTxHash(ctx context.Context, id uuid.UUID, txHash string) error
	SetLocalInsights(ctx context.Context, id uuid.UUID, insights json.RawMessage) error
	SetAIAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error
}

type propertyRepository struct {
	db *database.DB
}

// NewPropertyRepository creates a new property repository on the given handle.
func NewPropertyRepository(db *database.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, title, description, type, status, price, currency, bedrooms, bathrooms,
	area, area_unit, address, city, state, zip_code, country, latitude, longitude, images,
	virtual_tour_url, amenities, year_built, lot_size, is_verified, is_featured,
	blockchain_tx_hash, local_insights, ai_analysis, agent_id, created_at, updated_at`

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now

	query := `
		INSERT INTO properties (id, title, description, type, status, price, currency, bedrooms,
			bathrooms, area, area_unit, address, city, state, zip_code, country, latitude,
			longitude, images, virtual_tour_url, amenities, year_built, lot_size, is_verified,
			is_featured, blockchain_tx_hash, local_insights, ai_analysis, agent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`

	_, err := r.db.Exec(ctx, query,
		property.ID,
		property.Title,
		property.Description,
		property.Type,
		property.Status,
		property.Price,
		property.Currency,
		property.Bedrooms,
		property.Bathrooms,
		property.Area,
		property.AreaUnit,
		property.Address,
		property.City,
		property.State,
		property.ZipCode,
		property.Country,
		property.Latitude,
		property.Longitude,
		property.Images,
		property.VirtualTourURL,
		property.Amenities,
		property.YearBuilt,
		property.LotSize,
		property.IsVerified,
		property.IsFeatured,
		property.BlockchainTxHash,
		property.LocalInsights,
		property.AIAnalysis,
		property.AgentID,
		property.CreatedAt,
		property.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	property, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	agentQuery := fmt.Sprintf(`
		SELECT %s
		FROM agents a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`, agentColumns)
	agent, err := scanAgent(r.db.QueryRow(ctx, agentQuery, property.AgentID))
	if err != nil {
		return nil, fmt.Errorf("failed to get property agent: %w", err)
	}
	property.Agent = agent

	return property, nil
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = time.Now()

	query := `
		UPDATE properties
		SET title = $1, description = $2, type = $3, status = $4, price = $5, currency = $6,
		    bedrooms = $7, bathrooms = $8, area = $9, area_unit = $10, address = $11, city = $12,
		    state = $13, zip_code = $14, country = $15, latitude = $16, longitude = $17,
		    images = $18, virtual_tour_url = $19, amenities = $20, year_built = $21,
		    lot_size = $22, is_featured = $23, updated_at = $24
		WHERE id = $25`

	result, err := r.db.Exec(ctx, query,
		property.Title,
		property.Description,
		property.Type,
		property.Status,
		property.Price,
		property.Currency,
		property.Bedrooms,
		property.Bathrooms,
		property.Area,
		property.AreaUnit,
		property.Address,
		property.City,
		property.State,
		property.ZipCode,
		property.Country,
		property.Latitude,
		property.Longitude,
		property.Images,
		property.VirtualTourURL,
		property.Amenities,
		property.YearBuilt,
		property.LotSize,
		property.IsFeatured,
		property.UpdatedAt,
		property.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) Search(ctx context.Context, filters *models.PropertyFilters) ([]*models.Property, int, error) {
	where, args := buildPropertyWhere(filters)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM properties %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		propertyColumns, where, buildPropertyOrder(filters), len(args)+1, len(args)+2)
	args = append(args, filters.PageSize(), filters.Offset())

	properties, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *propertyRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Property, error) {
	if len(ids) == 0 {
		return []*models.Property{}, nil
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE id = ANY($1)
		ORDER BY created_at DESC`, propertyColumns)
	properties, err := r.queryMany(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *propertyRepository) ListFeatured(ctx context.Context, limit int) ([]*models.Property, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE is_featured = TRUE AND status = $1
		ORDER BY created_at DESC
		LIMIT $2`, propertyColumns)
	return r.queryMany(ctx, query, models.PropertyStatusActive, limit)
}

func (r *propertyRepository) ListRecent(ctx context.Context, limit int) ([]*models.Property, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`, propertyColumns)
	return r.queryMany(ctx, query, models.PropertyStatusActive, limit)
}

func (r *propertyRepository) CountByStatus(ctx context.Context, agentID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM properties WHERE agent_id = $1 GROUP BY status`, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

func (r *propertyRepository) Stats(ctx context.Context) (*models.PropertyStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'SOLD'),
		       COUNT(*) FILTER (WHERE status = 'WITHDRAWN'),
		       COALESCE(AVG(price), 0)
		FROM properties`

	var stats models.PropertyStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Active,
		&stats.Pending,
		&stats.Sold,
		&stats.Withdrawn,
		&stats.AveragePrice,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute property stats: %w", err)
	}
	return &stats, nil
}

func (r *propertyRepository) SetVerification(ctx context.Context, id uuid.UUID, txHash string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE properties SET is_verified = TRUE, blockchain_tx_hash = $1, updated_at = $2 WHERE id = $3`,
		txHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set property verification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) SetTxHash(ctx context.Context, id uuid.UUID, txHash string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE properties SET blockchain_tx_hash = $1, updated_at = $2 WHERE id = $3`,
		txHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set property tx hash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) SetLocalInsights(ctx context.Context, id uuid.UUID, insights json.RawMessage) error {
	result, err := r.db.Exec(ctx,
		`UPDATE properties SET local_insights = $1, updated_at = $2 WHERE id = $3`,
		insights, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set property insights: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) SetAIAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error {
	result, err := r.db.Exec(ctx,
		`UPDATE properties SET ai_analysis = $1, updated_at = $2 WHERE id = $3`,
		analysis, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set property analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties := []*models.Property{}
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return properties, nil
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Type,
		&p.Status,
		&p.Price,
		&p.Currency,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Area,
		&p.AreaUnit,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.Country,
		&p.Latitude,
		&p.Longitude,
		&p.Images,
		&p.VirtualTourURL,
		&p.Amenities,
		&p.YearBuilt,
		&p.LotSize,
		&p.IsVerified,
		&p.IsFeatured,
		&p.BlockchainTxHash,
		&p.LocalInsights,
		&p.AIAnalysis,
		&p.AgentID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
