// Package testhelpers provides utilities for testing engine components.
package testhelpers

import (
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/auth"
)

// TestSecret signs tokens in tests. Handlers under test must build their
// middleware from the same value.
const TestSecret = "test-secret-key-for-unit-tests"

// NewTokenService returns a token service wired to TestSecret.
func NewTokenService() *auth.TokenService {
	svc, err := auth.NewTokenService(TestSecret, 24*time.Hour)
	if err != nil {
		panic(err)
	}
	return svc
}

// GenerateTestJWT mints a signed bearer token for the given principal.
func GenerateTestJWT(userID uuid.UUID, email, role string) string {
	token, err := NewTokenService().Issue(userID, email, role)
	if err != nil {
		panic(err)
	}
	return token
}

// GenerateTestJWTWithBearer returns the token with the "Bearer " prefix for
// the Authorization header.
func GenerateTestJWTWithBearer(userID uuid.UUID, email, role string) string {
	return "Bearer " + GenerateTestJWT(userID, email, role)
}
