package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TransactionTypePurchase = "PURCHASE"
	TransactionTypeSale     = "SALE"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusCancelled = "CANCELLED"
)

// Transaction records a (prospective) sale of a property to a buyer,
// brokered by an agent. ContractHash references the external contract for
// blockchain-flavored flows.
type Transaction struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	Description  *string    `json:"description,omitempty"`
	BuyerID      uuid.UUID  `json:"buyerId"`
	PropertyID   uuid.UUID  `json:"propertyId"`
	AgentID      uuid.UUID  `json:"agentId"`
	ContractHash *string    `json:"contractHash,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Property *Property   `json:"property,omitempty"`
	Buyer    *PublicUser `json:"buyer,omitempty"`
}
