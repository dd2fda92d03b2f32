package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]*models.Review, int, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*models.Review, int, error)
	// AgentRating returns the average rating and review count over the
	// agent's reviews. Average is 0 when there are none.
	AgentRating(ctx context.Context, agentID uuid.UUID) (float64, int, error)
}

type reviewRepository struct {
	db *database.DB
}

// NewReviewRepository creates a new review repository on the given handle.
func NewReviewRepository(db *database.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `r.id, r.rating, r.comment, r.target_kind, r.user_id, r.agent_id, r.property_id,
	r.created_at, r.updated_at,
	u.id, u.first_name, u.last_name, u.email, u.phone, u.avatar`

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	query := `
		INSERT INTO reviews (id, rating, comment, target_kind, user_id, agent_id, property_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.Rating,
		review.Comment,
		review.TargetKind,
		review.UserID,
		review.AgentID,
		review.PropertyID,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	return r.listBy(ctx, "r.agent_id = $1", agentID, page, limit)
}

func (r *reviewRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	return r.listBy(ctx, "r.property_id = $1", propertyID, page, limit)
}

func (r *reviewRepository) listBy(ctx context.Context, cond string, id uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM reviews r WHERE %s`, cond)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE %s
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`, reviewColumns, cond)

	rows, err := r.db.Query(ctx, query, id, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *reviewRepository) AgentRating(ctx context.Context, agentID uuid.UUID) (float64, int, error) {
	var avg float64
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE agent_id = $1`,
		agentID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute agent rating: %w", err)
	}
	return avg, count, nil
}

func scanReview(row rowScanner) (*models.Review, error) {
	var review models.Review
	var author models.PublicUser
	err := row.Scan(
		&review.ID,
		&review.Rating,
		&review.Comment,
		&review.TargetKind,
		&review.UserID,
		&review.AgentID,
		&review.PropertyID,
		&review.CreatedAt,
		&review.UpdatedAt,
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Email,
		&author.Phone,
		&author.Avatar,
	)
	if err != nil {
		return nil, err
	}
	review.Author = &author
	return &review, nil
}
