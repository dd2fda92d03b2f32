package models

import "github.com/google/uuid"

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PropertyFilters is the typed search predicate for listing queries.
// Nil/zero fields are not applied. The same filter computes both the page
// and the total count.
type PropertyFilters struct {
	// Query is matched case-insensitively as a substring over title,
	// description, address and city.
	Query string

	Type     string
	Statuses []string
	City     string
	State    string
	ZipCode  string

	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MaxBedrooms  *int
	MinBathrooms *int
	MaxBathrooms *int
	MinArea      *float64
	MaxArea      *float64

	AgentID      *uuid.UUID
	VerifiedOnly bool

	// SortBy must be one of the allow-listed keys (price, area, bedrooms,
	// bathrooms, createdAt); anything else falls back to createdAt.
	SortBy    string
	SortOrder string

	Page  int
	Limit int
}

// Offset returns the row offset for the current page.
func (f *PropertyFilters) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.PageSize()
}

// PageSize returns the effective page size, bounded to [1,100].
func (f *PropertyFilters) PageSize() int {
	switch {
	case f.Limit < 1:
		return 10
	case f.Limit > 100:
		return 100
	}
	return f.Limit
}
