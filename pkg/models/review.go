package models

import (
	"time"

	"github.com/google/uuid"
)

// Review target kinds.
const (
	ReviewTargetAgent    = "AGENT"
	ReviewTargetProperty = "PROPERTY"
)

// ValidReviewTarget reports whether kind is a known review target.
func ValidReviewTarget(kind string) bool {
	return kind == ReviewTargetAgent || kind == ReviewTargetProperty
}

// Review is an authored rating of either an agent or a property.
// Exactly one of AgentID/PropertyID is set, matching TargetKind.
type Review struct {
	ID         uuid.UUID  `json:"id"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	TargetKind string     `json:"targetKind"`
	UserID     uuid.UUID  `json:"userId"`
	AgentID    *uuid.UUID `json:"agentId,omitempty"`
	PropertyID *uuid.UUID `json:"propertyId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Author *PublicUser `json:"author,omitempty"`
}
