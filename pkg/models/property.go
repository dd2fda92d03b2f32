package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Property types.
const (
	PropertyTypeHouse      = "HOUSE"
	PropertyTypeApartment  = "APARTMENT"
	PropertyTypeCondo      = "CONDO"
	PropertyTypeTownhouse  = "TOWNHOUSE"
	PropertyTypeLand       = "LAND"
	PropertyTypeCommercial = "COMMERCIAL"
)

// Property statuses. Transitions are not state-machine enforced; any value
// may be written by the owning agent.
const (
	PropertyStatusActive    = "ACTIVE"
	PropertyStatusPending   = "PENDING"
	PropertyStatusSold      = "SOLD"
	PropertyStatusWithdrawn = "WITHDRAWN"
)

// ValidPropertyType reports whether t is a known property type.
func ValidPropertyType(t string) bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeApartment, PropertyTypeCondo,
		PropertyTypeTownhouse, PropertyTypeLand, PropertyTypeCommercial:
		return true
	}
	return false
}

// ValidPropertyStatus reports whether s is a known listing status.
func ValidPropertyStatus(s string) bool {
	switch s {
	case PropertyStatusActive, PropertyStatusPending, PropertyStatusSold, PropertyStatusWithdrawn:
		return true
	}
	return false
}

// Property is a listing owned by exactly one Agent.
type Property struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency"`
	Bedrooms       *int      `json:"bedrooms,omitempty"`
	Bathrooms      *int      `json:"bathrooms,omitempty"`
	Area           float64   `json:"area"`
	AreaUnit       string    `json:"areaUnit"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	ZipCode        string    `json:"zipCode"`
	Country        string    `json:"country"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Images         []string  `json:"images"`
	VirtualTourURL *string   `json:"virtualTourUrl,omitempty"`
	Amenities      []string  `json:"amenities"`
	YearBuilt      *int      `json:"yearBuilt,omitempty"`
	LotSize        *float64  `json:"lotSize,omitempty"`
	IsVerified     bool      `json:"isVerified"`
	IsFeatured     bool      `json:"isFeatured"`

	// External notarization reference, set by the notary side-effect.
	BlockchainTxHash *string `json:"blockchainTxHash,omitempty"`

	// Opaque denormalized enrichment payloads.
	LocalInsights json.RawMessage `json:"localInsights,omitempty"`
	AIAnalysis    json.RawMessage `json:"aiAnalysis,omitempty"`

	AgentID   uuid.UUID `json:"agentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Agent *Agent `json:"agent,omitempty"`
}

// PropertySummary is the reduced property shape embedded in agent responses.
type PropertySummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Price  float64   `json:"price"`
	Status string    `json:"status"`
}

// Summary returns the embeddable shape of the property.
func (p *Property) Summary() *PropertySummary {
	return &PropertySummary{ID: p.ID, Title: p.Title, Price: p.Price, Status: p.Status}
}

// PropertyStats is the aggregate listing breakdown.
type PropertyStats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	Pending      int     `json:"pending"`
	Sold         int     `json:"sold"`
	Withdrawn    int     `json:"withdrawn"`
	AveragePrice float64 `json:"averagePrice"`
}
