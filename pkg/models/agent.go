package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent is the professional profile linked one-to-one with a User.
type Agent struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	LicenseNumber string    `json:"licenseNumber"`
	Agency        string    `json:"agency"`
	Experience    int       `json:"experience"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	ResponseTime  float64   `json:"responseTime"`
	Bio           *string   `json:"bio,omitempty"`
	Specialties   []string  `json:"specialties"`
	ServiceAreas  []string  `json:"serviceAreas"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	User       *PublicUser        `json:"user,omitempty"`
	Properties []*PropertySummary `json:"properties,omitempty"`
	Metrics    []*AgentMetric     `json:"metrics,omitempty"`
}

// AgentFilters narrows agent listing queries.
type AgentFilters struct {
	ServiceArea   string // matches city or state membership in service_areas
	Specialty     string
	MinRating     float64
	MinExperience int
	ActiveOnly    bool
	Page          int
	Limit         int
}
