package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/propertyconnect/engine/pkg/models"
)

// RegisterRequest is the role-discriminated registration payload.
// Agent-only fields are forbidden when role is BUYER and vice versa;
// the conditional branches live in validateRegisterRoles.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string  `json:"lastName" validate:"required,min=2,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Role      string  `json:"role" validate:"required,oneof=BUYER AGENT"`

	// Agent-only fields.
	Agency       *string  `json:"agency,omitempty" validate:"omitempty,min=2,max=100"`
	Experience   *int     `json:"experience,omitempty" validate:"omitempty,gte=0,lte=50"`
	Specialties  []string `json:"specialties,omitempty" validate:"omitempty,max=10,dive,max=50"`
	ServiceAreas []string `json:"serviceAreas,omitempty" validate:"omitempty,max=20,dive,max=100"`

	// Buyer-only fields.
	PreferredAreas []string `json:"preferredAreas,omitempty" validate:"omitempty,max=20,dive,max=100"`
	BudgetMin      *float64 `json:"budgetMin,omitempty" validate:"omitempty,gte=0"`
	BudgetMax      *float64 `json:"budgetMax,omitempty" validate:"omitempty,gte=0"`
	PropertyTypes  []string `json:"propertyTypes,omitempty" validate:"omitempty,max=6,dive,oneof=HOUSE APARTMENT CONDO TOWNHOUSE LAND COMMERCIAL"`
}

// validateRegisterRoles enforces the role-conditional field branches.
func validateRegisterRoles(sl validator.StructLevel) {
	req := sl.Current().Interface().(RegisterRequest)

	switch req.Role {
	case models.RoleBuyer:
		if req.Agency != nil {
			sl.ReportError(req.Agency, "agency", "Agency", "excluded_with", "")
		}
		if req.Experience != nil {
			sl.ReportError(req.Experience, "experience", "Experience", "excluded_with", "")
		}
		if req.Specialties != nil {
			sl.ReportError(req.Specialties, "specialties", "Specialties", "excluded_with", "")
		}
		if req.ServiceAreas != nil {
			sl.ReportError(req.ServiceAreas, "serviceAreas", "ServiceAreas", "excluded_with", "")
		}
	case models.RoleAgent:
		if req.PreferredAreas != nil {
			sl.ReportError(req.PreferredAreas, "preferredAreas", "PreferredAreas", "excluded_with", "")
		}
		if req.BudgetMin != nil {
			sl.ReportError(req.BudgetMin, "budgetMin", "BudgetMin", "excluded_with", "")
		}
		if req.BudgetMax != nil {
			sl.ReportError(req.BudgetMax, "budgetMax", "BudgetMax", "excluded_with", "")
		}
		if req.PropertyTypes != nil {
			sl.ReportError(req.PropertyTypes, "propertyTypes", "PropertyTypes", "excluded_with", "")
		}
	}

	if req.BudgetMin != nil && req.BudgetMax != nil && *req.BudgetMin > *req.BudgetMax {
		sl.ReportError(req.BudgetMin, "budgetMin", "BudgetMin", "lte", "budgetMax")
	}
}

// LoginRequest is the credential check payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest rotates the principal's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// UpdateProfileRequest mutates the principal's own user row.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=2,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,uri"`
}

// Coordinates is the geographic point payload.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// PropertyCreateRequest is the agent-only listing creation payload.
type PropertyCreateRequest struct {
	Title          string      `json:"title" validate:"required,min=5,max=200"`
	Description    string      `json:"description" validate:"required,min=20,max=2000"`
	Type           string      `json:"type" validate:"required,oneof=HOUSE APARTMENT CONDO TOWNHOUSE LAND COMMERCIAL"`
	Price          float64     `json:"price" validate:"required,gt=0"`
	Currency       string      `json:"currency" validate:"omitempty,oneof=USD EUR GBP CAD"`
	Bedrooms       *int        `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	Bathrooms      *int        `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	Area           float64     `json:"area" validate:"required,gt=0"`
	AreaUnit       string      `json:"areaUnit" validate:"omitempty,oneof=sqft sqm"`
	Address        string      `json:"address" validate:"required,min=10,max=200"`
	City           string      `json:"city" validate:"required,min=2,max=100"`
	State          string      `json:"state" validate:"required,min=2,max=100"`
	ZipCode        string      `json:"zipCode" validate:"required,min=3,max=20"`
	Country        string      `json:"country" validate:"omitempty,min=2,max=100"`
	Coordinates    Coordinates `json:"coordinates"`
	Images         []string    `json:"images" validate:"required,min=1,max=20,dive,uri"`
	VirtualTourURL *string     `json:"virtualTourUrl,omitempty" validate:"omitempty,uri"`
	Amenities      []string    `json:"amenities,omitempty" validate:"omitempty,max=50,dive,max=50"`
	YearBuilt      *int        `json:"yearBuilt,omitempty" validate:"omitempty,gte=1800,max_current_year"`
	LotSize        *float64    `json:"lotSize,omitempty" validate:"omitempty,gt=0"`
}

// ApplyDefaults fills the defaulted fields the original schema provided.
func (r *PropertyCreateRequest) ApplyDefaults() {
	if r.Currency == "" {
		r.Currency = "USD"
	}
	if r.AreaUnit == "" {
		r.AreaUnit = "sqft"
	}
	if r.Country == "" {
		r.Country = "US"
	}
}

// PropertyUpdateRequest is the owner-only partial listing update payload.
type PropertyUpdateRequest struct {
	Title          *string      `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description    *string      `json:"description,omitempty" validate:"omitempty,min=20,max=2000"`
	Type           *string      `json:"type,omitempty" validate:"omitempty,oneof=HOUSE APARTMENT CONDO TOWNHOUSE LAND COMMERCIAL"`
	Status         *string      `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE PENDING SOLD WITHDRAWN"`
	Price          *float64     `json:"price,omitempty" validate:"omitempty,gt=0"`
	Currency       *string      `json:"currency,omitempty" validate:"omitempty,oneof=USD EUR GBP CAD"`
	Bedrooms       *int         `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	Bathrooms      *int         `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	Area           *float64     `json:"area,omitempty" validate:"omitempty,gt=0"`
	AreaUnit       *string      `json:"areaUnit,omitempty" validate:"omitempty,oneof=sqft sqm"`
	Address        *string      `json:"address,omitempty" validate:"omitempty,min=10,max=200"`
	City           *string      `json:"city,omitempty" validate:"omitempty,min=2,max=100"`
	State          *string      `json:"state,omitempty" validate:"omitempty,min=2,max=100"`
	ZipCode        *string      `json:"zipCode,omitempty" validate:"omitempty,min=3,max=20"`
	Country        *string      `json:"country,omitempty" validate:"omitempty,min=2,max=100"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	Images         []string     `json:"images,omitempty" validate:"omitempty,min=1,max=20,dive,uri"`
	VirtualTourURL *string      `json:"virtualTourUrl,omitempty" validate:"omitempty,uri"`
	Amenities      []string     `json:"amenities,omitempty" validate:"omitempty,max=50,dive,max=50"`
	YearBuilt      *int         `json:"yearBuilt,omitempty" validate:"omitempty,gte=1800,max_current_year"`
	LotSize        *float64     `json:"lotSize,omitempty" validate:"omitempty,gt=0"`
}

// AgentProfileRequest creates or replaces an agent profile.
type AgentProfileRequest struct {
	LicenseNumber string   `json:"licenseNumber" validate:"required,min=5,max=50"`
	Agency        string   `json:"agency" validate:"required,min=2,max=100"`
	Experience    int      `json:"experience" validate:"gte=0,lte=50"`
	Bio           *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Specialties   []string `json:"specialties,omitempty" validate:"omitempty,max=10,dive,max=50"`
	ServiceAreas  []string `json:"serviceAreas" validate:"required,min=1,max=20,dive,max=100"`
}

// BuyerPreferencesRequest upserts the principal's buyer profile.
type BuyerPreferencesRequest struct {
	PreferredAreas []string `json:"preferredAreas,omitempty" validate:"omitempty,max=20,dive,max=100"`
	BudgetMin      *float64 `json:"budgetMin,omitempty" validate:"omitempty,gte=0"`
	BudgetMax      *float64 `json:"budgetMax,omitempty" validate:"omitempty,gte=0"`
	PropertyTypes  []string `json:"propertyTypes,omitempty" validate:"omitempty,max=6,dive,oneof=HOUSE APARTMENT CONDO TOWNHOUSE LAND COMMERCIAL"`
}

func validateBudgetRange(sl validator.StructLevel) {
	req := sl.Current().Interface().(BuyerPreferencesRequest)
	if req.BudgetMin != nil && req.BudgetMax != nil && *req.BudgetMin > *req.BudgetMax {
		sl.ReportError(req.BudgetMin, "budgetMin", "BudgetMin", "lte", "budgetMax")
	}
}

// ReviewRequest creates a review of an agent or a property.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,min=1,max=1000"`
}

// ChatRequest is a single free-text chat turn.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// CreateContractRequest starts a blockchain-flavored sale transaction.
type CreateContractRequest struct {
	PropertyID string `json:"propertyId" validate:"required,uuid"`
	BuyerID    string `json:"buyerId" validate:"required,uuid"`
	Terms      string `json:"terms" validate:"required,max=5000"`
}

// TransactionStatusRequest moves a sale transaction out of PENDING.
type TransactionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED CANCELLED"`
}

// RecommendationRequest is the keyword search path used by the
// AI-recommendation entry point.
type RecommendationRequest struct {
	Query    string `json:"query" validate:"omitempty,max=200"`
	Location string `json:"location" validate:"omitempty,max=100"`
}
