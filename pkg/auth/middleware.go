package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/models"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates token verification to TokenService.
type Middleware struct {
	tokens *TokenService
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given TokenService.
func NewMiddleware(tokens *TokenService, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and attaches claims to the request
// context for downstream handlers. Missing, malformed or expired credentials
// short-circuit with a 401.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.validateRequest(r)
		if err != nil {
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAgent validates the bearer token and additionally requires the
// principal's role to be AGENT, else short-circuits with a 403.
func (m *Middleware) RequireAgent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.validateRequest(r)
		if err != nil {
			m.unauthorized(w, "Authentication required")
			return
		}

		if claims.Role != models.RoleAgent {
			m.logger.Warn("Non-agent attempted to access agent-only endpoint",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
				zap.String("path", r.URL.Path))
			m.forbidden(w, "Agent role required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// validateRequest extracts and verifies the bearer token from the
// Authorization header.
func (m *Middleware) validateRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, errMissingToken
	}
	return m.tokens.Verify(token)
}

var errMissingToken = errors.New("missing bearer token")

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// forbidden returns a 403 response with JSON error body.
func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
