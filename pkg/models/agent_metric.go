package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentMetric is a per-agent monthly rollup. Unique per (agent, month, year).
type AgentMetric struct {
	ID                uuid.UUID `json:"id"`
	AgentID           uuid.UUID `json:"agentId"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
	PropertiesListed  int       `json:"propertiesListed"`
	PropertiesSold    int       `json:"propertiesSold"`
	TotalRevenue      float64   `json:"totalRevenue"`
	AvgResponseTime   float64   `json:"avgResponseTime"`
	SatisfactionScore float64   `json:"satisfactionScore"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AgentMetricsReport is the owner-only metrics view: stored monthly rollups
// plus a live breakdown of the agent's current listings by status.
type AgentMetricsReport struct {
	Monthly         []*AgentMetric `json:"monthly"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
}
