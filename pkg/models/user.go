package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleBuyer = "BUYER"
	RoleAgent = "AGENT"
	RoleAdmin = "ADMIN"
)

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account. A user owns at most one Agent
// profile and at most one Buyer profile, depending on role.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        *string   `json:"phone,omitempty"`
	Avatar       *string   `json:"avatar,omitempty"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Eagerly joined profiles, populated on profile reads.
	Agent *Agent `json:"agent,omitempty"`
	Buyer *Buyer `json:"buyer,omitempty"`
}

// PublicUser is the reduced user shape embedded in agent and property
// responses. It never carries credentials.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
}

// Public returns the embeddable shape of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
	}
}
