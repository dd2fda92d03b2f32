package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/auth"
)

// jsonBody marshals a request payload for handler tests.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// makeRequest builds a plain request without a principal.
func makeRequest(method, path string, body *bytes.Reader) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	return httptest.NewRequest(method, path, body)
}

// withPrincipal attaches verified claims the way the auth middleware does.
func withPrincipal(req *http.Request, userID uuid.UUID, role string) *http.Request {
	claims := &auth.Claims{Role: role}
	claims.Subject = userID.String()
	ctx := context.WithValue(req.Context(), auth.ClaimsKey, claims)
	return req.WithContext(ctx)
}
