// Package auth provides JWT-based authentication for the PropertyConnect
// engine. Unlike deployments that verify tokens from an external issuer,
// this service signs its own tokens with a local HS256 secret.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for storing JWT claims.
const ClaimsKey contextKey = "claims"

// Claims is the principal descriptor carried in issued tokens.
// It embeds RegisteredClaims for standard JWT fields (sub, exp, iat).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetUserIDFromContext extracts the authenticated user ID from context.
// Returns uuid.Nil if not authenticated or the subject is malformed.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

// RequireUserIDFromContext extracts the authenticated user ID from context
// and returns an error if it is absent. Use when the operation requires a
// principal.
func RequireUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID := GetUserIDFromContext(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
