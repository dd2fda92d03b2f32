package models

import (
	"time"

	"github.com/google/uuid"
)

// Buyer holds search preferences for a buying user, linked one-to-one
// with a User. SavedProperties is a weak reference set: entries may point
// at properties that have since been deleted, and reads must filter
// misses rather than fail.
type Buyer struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"userId"`
	PreferredAreas  []string    `json:"preferredAreas"`
	BudgetMin       *float64    `json:"budgetMin,omitempty"`
	BudgetMax       *float64    `json:"budgetMax,omitempty"`
	PropertyTypes   []string    `json:"propertyTypes"`
	SavedProperties []uuid.UUID `json:"savedProperties"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// HasSaved reports whether the buyer has saved the given property.
func (b *Buyer) HasSaved(propertyID uuid.UUID) bool {
	for _, id := range b.SavedProperties {
		if id == propertyID {
			return true
		}
	}
	return false
}
