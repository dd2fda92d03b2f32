package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/models"
)

// AgentRepository defines the interface for agent profile data access.
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Agent, error)
	GetByLicense(ctx context.Context, licenseNumber string) (*models.Agent, error)
	Update(ctx context.Context, agent *models.Agent) error
	// List returns a page of agents matching the filters plus the total
	// count computed with the same predicate, ordered by rating descending.
	List(ctx context.Context, filters *models.AgentFilters) ([]*models.Agent, int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
}

type agentRepository struct {
	db *database.DB
}

// NewAgentRepository creates a new agent repository on the given handle.
func NewAgentRepository(db *database.DB) AgentRepository {
	return &agentRepository{db: db}
}

const agentColumns = `a.id, a.user_id, a.license_number, a.agency, a.experience, a.rating,
	a.review_count, a.response_time, a.bio, a.specialties, a.service_areas, a.is_active,
	a.created_at, a.updated_at,
	u.id, u.first_name, u.last_name, u.email, u.phone, u.avatar`

func (r *agentRepository) Create(ctx context.Context, agent *models.Agent) error {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	now := time.Now()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	query := `
		INSERT INTO agents (id, user_id, license_number, agency, experience, rating, review_count,
			response_time, bio, specialties, service_areas, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		agent.ID,
		agent.UserID,
		agent.LicenseNumber,
		agent.Agency,
		agent.Experience,
		agent.Rating,
		agent.ReviewCount,
		agent.ResponseTime,
		agent.Bio,
		agent.Specialties,
		agent.ServiceAreas,
		agent.IsActive,
		agent.CreatedAt,
		agent.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	return r.getBy(ctx, "a.id = $1", id)
}

func (r *agentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Agent, error) {
	return r.getBy(ctx, "a.user_id = $1", userID)
}

func (r *agentRepository) GetByLicense(ctx context.Context, licenseNumber string) (*models.Agent, error) {
	return r.getBy(ctx, "a.license_number = $1", licenseNumber)
}

func (r *agentRepository) getBy(ctx context.Context, cond string, arg any) (*models.Agent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM agents a
		JOIN users u ON u.id = a.user_id
		WHERE %s`, agentColumns, cond)

	row := r.db.QueryRow(ctx, query, arg)
	agent, err := scanAgent(row)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return agent, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *models.Agent) error {
	agent.UpdatedAt = time.Now()

	query := `
		UPDATE agents
		SET license_number = $1, agency = $2, experience = $3, bio = $4,
		    specialties = $5, service_areas = $6, updated_at = $7
		WHERE id = $8`

	result, err := r.db.Exec(ctx, query,
		agent.LicenseNumber,
		agent.Agency,
		agent.Experience,
		agent.Bio,
		agent.Specialties,
		agent.ServiceAreas,
		agent.UpdatedAt,
		agent.ID,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update agent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *agentRepository) List(ctx context.Context, filters *models.AgentFilters) ([]*models.Agent, int, error) {
	where, args := buildAgentWhere(filters)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM agents a JOIN users u ON u.id = a.user_id %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count agents: %w", err)
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 10
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM agents a
		JOIN users u ON u.id = a.user_id
		%s
		ORDER BY a.rating DESC
		LIMIT $%d OFFSET $%d`, agentColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	agents := []*models.Agent{}
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating agents: %w", err)
	}

	return agents, total, nil
}

func (r *agentRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE agents SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set agent active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *agentRepository) SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	result, err := r.db.Exec(ctx,
		`UPDATE agents SET rating = $1, review_count = $2, updated_at = $3 WHERE id = $4`,
		rating, reviewCount, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set agent rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// buildAgentWhere translates agent filters into a WHERE clause and args.
// Pure function, unit tested without a store.
func buildAgentWhere(f *models.AgentFilters) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ActiveOnly {
		conds = append(conds, "a.is_active = TRUE")
	}
	if f.ServiceArea != "" {
		conds = append(conds, arg(f.ServiceArea)+" = ANY(a.service_areas)")
	}
	if f.Specialty != "" {
		conds = append(conds, arg(f.Specialty)+" = ANY(a.specialties)")
	}
	if f.MinRating > 0 {
		conds = append(conds, "a.rating >= "+arg(f.MinRating))
	}
	if f.MinExperience > 0 {
		conds = append(conds, "a.experience >= "+arg(f.MinExperience))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*models.Agent, error) {
	var agent models.Agent
	var user models.PublicUser
	err := row.Scan(
		&agent.ID,
		&agent.UserID,
		&agent.LicenseNumber,
		&agent.Agency,
		&agent.Experience,
		&agent.Rating,
		&agent.ReviewCount,
		&agent.ResponseTime,
		&agent.Bio,
		&agent.Specialties,
		&agent.ServiceAreas,
		&agent.IsActive,
		&agent.CreatedAt,
		&agent.UpdatedAt,
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Avatar,
	)
	if err != nil {
		return nil, err
	}
	agent.User = &user
	return &agent, nil
}
