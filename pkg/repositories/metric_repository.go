package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/models"
)

// MetricRepository defines the interface for agent monthly rollups.
type MetricRepository interface {
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentMetric, error)
	// Upsert writes the rollup for the metric's (agent, month, year) slot,
	// replacing an existing row for the same slot.
	Upsert(ctx context.Context, metric *models.AgentMetric) error
}

type metricRepository struct {
	db *database.DB
}

// NewMetricRepository creates a new metric repository on the given handle.
func NewMetricRepository(db *database.DB) MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentMetric, error) {
	query := `
		SELECT id, agent_id, month, year, properties_listed, properties_sold, total_revenue,
		       avg_response_time, satisfaction_score, created_at, updated_at
		FROM agent_metrics
		WHERE agent_id = $1
		ORDER BY year DESC, month DESC`

	rows, err := r.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent metrics: %w", err)
	}
	defer rows.Close()

	metrics := []*models.AgentMetric{}
	for rows.Next() {
		var m models.AgentMetric
		err := rows.Scan(
			&m.ID,
			&m.AgentID,
			&m.Month,
			&m.Year,
			&m.PropertiesListed,
			&m.PropertiesSold,
			&m.TotalRevenue,
			&m.AvgResponseTime,
			&m.SatisfactionScore,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent metric: %w", err)
		}
		metrics = append(metrics, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent metrics: %w", err)
	}
	return metrics, nil
}

func (r *metricRepository) Upsert(ctx context.Context, metric *models.AgentMetric) error {
	if metric.ID == uuid.Nil {
		metric.ID = uuid.New()
	}

	query := `
		INSERT INTO agent_metrics (id, agent_id, month, year, properties_listed, properties_sold,
			total_revenue, avg_response_time, satisfaction_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (agent_id, month, year) DO UPDATE
		SET properties_listed = EXCLUDED.properties_listed,
		    properties_sold = EXCLUDED.properties_sold,
		    total_revenue = EXCLUDED.total_revenue,
		    avg_response_time = EXCLUDED.avg_response_time,
		    satisfaction_score = EXCLUDED.satisfaction_score,
		    updated_at = now()`

	_, err := r.db.Exec(ctx, query,
		metric.ID,
		metric.AgentID,
		metric.Month,
		metric.Year,
		metric.PropertiesListed,
		metric.PropertiesSold,
		metric.TotalRevenue,
		metric.AvgResponseTime,
		metric.SatisfactionScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert agent metric: %w", err)
	}
	return nil
}
