package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/config"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(_ context.Context) error {
	return p.err
}

func TestHealthHandler_DatabaseUp(t *testing.T) {
	handler := NewHealthHandler(&config.Config{}, &fakePinger{}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.Health(rr, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "up", data["database"])
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	handler := NewHealthHandler(&config.Config{}, &fakePinger{err: errors.New("connection refused")}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.Health(rr, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decodeEnvelope(t, rr)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "down", data["database"])
}

func TestHealthHandler_Ping(t *testing.T) {
	cfg := &config.Config{Version: "1.2.3", Env: "test"}
	handler := NewHealthHandler(cfg, &fakePinger{}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.Ping(rr, httptest.NewRequest("GET", "/ping", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, "propertyconnect-engine", data["service"])
	assert.Equal(t, "test", data["environment"])
}
