package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/validation"
)

// mockAgentService implements services.AgentService for handler testing.
type mockAgentService struct {
	agents []*models.Agent
	agent  *models.Agent
	report *models.AgentMetricsReport
	total  int
	err    error

	lastFilters   *models.AgentFilters
	deactivatedID uuid.UUID
}

func (m *mockAgentService) List(_ context.Context, filters *models.AgentFilters) ([]*models.Agent, int, error) {
	m.lastFilters = filters
	return m.agents, m.total, m.err
}

func (m *mockAgentService) GetByID(_ context.Context, _ uuid.UUID) (*models.Agent, error) {
	return m.agent, m.err
}

func (m *mockAgentService) CreateProfile(_ context.Context, _ uuid.UUID, _ *validation.AgentProfileRequest) (*models.Agent, error) {
	return m.agent, m.err
}

func (m *mockAgentService) UpdateProfile(_ context.Context, _, _ uuid.UUID, _ *validation.AgentProfileRequest) (*models.Agent, error) {
	return m.agent, m.err
}

func (m *mockAgentService) Metrics(_ context.Context, _, _ uuid.UUID) (*models.AgentMetricsReport, error) {
	return m.report, m.err
}

func (m *mockAgentService) Deactivate(_ context.Context, id, _ uuid.UUID) error {
	m.deactivatedID = id
	return m.err
}

func agentProfileBody() map[string]any {
	return map[string]any{
		"licenseNumber": "TX-884213",
		"agency":        "Sunrise Realty",
		"experience":    5,
		"serviceAreas":  []string{"Austin"},
	}
}

func TestAgentsHandler_List(t *testing.T) {
	svc := &mockAgentService{
		agents: []*models.Agent{{ID: uuid.New(), Agency: "Sunrise Realty"}},
		total:  1,
	}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	req := makeRequest("GET", "/api/agents?city=Austin&rating=4", nil)
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.Total)

	require.NotNil(t, svc.lastFilters)
	assert.Equal(t, "Austin", svc.lastFilters.ServiceArea)
	assert.Equal(t, 4.0, svc.lastFilters.MinRating)
}

func TestAgentsHandler_List_EmptyPageIsArray(t *testing.T) {
	svc := &mockAgentService{agents: []*models.Agent{}}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.List(rr, makeRequest("GET", "/api/agents", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	// An empty page serializes as [], never null.
	assert.Contains(t, rr.Body.String(), `"data":[]`)
}

func TestAgentsHandler_List_BadRating(t *testing.T) {
	handler := NewAgentsHandler(&mockAgentService{}, &mockReviewService{}, zap.NewNop())

	req := makeRequest("GET", "/api/agents?rating=9", nil)
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAgentsHandler_CreateProfile(t *testing.T) {
	svc := &mockAgentService{agent: &models.Agent{ID: uuid.New(), LicenseNumber: "TX-884213"}}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	req := withPrincipal(makeRequest("POST", "/api/agents", jsonBody(t, agentProfileBody())), uuid.New(), models.RoleAgent)
	rr := httptest.NewRecorder()
	handler.CreateProfile(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestAgentsHandler_CreateProfile_DuplicateLicense(t *testing.T) {
	svc := &mockAgentService{err: apperrors.ErrConflict}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	req := withPrincipal(makeRequest("POST", "/api/agents", jsonBody(t, agentProfileBody())), uuid.New(), models.RoleAgent)
	rr := httptest.NewRecorder()
	handler.CreateProfile(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAgentsHandler_Metrics_NotOwner(t *testing.T) {
	svc := &mockAgentService{err: apperrors.ErrForbidden}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	id := uuid.New()
	req := withPrincipal(makeRequest("GET", "/api/agents/"+id.String()+"/metrics", nil), uuid.New(), models.RoleBuyer)
	req.SetPathValue("id", id.String())
	rr := httptest.NewRecorder()
	handler.Metrics(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAgentsHandler_Metrics(t *testing.T) {
	svc := &mockAgentService{report: &models.AgentMetricsReport{
		StatusBreakdown: map[string]int{models.PropertyStatusActive: 3},
	}}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	id := uuid.New()
	req := withPrincipal(makeRequest("GET", "/api/agents/"+id.String()+"/metrics", nil), uuid.New(), models.RoleAgent)
	req.SetPathValue("id", id.String())
	rr := httptest.NewRecorder()
	handler.Metrics(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	breakdown := resp.Data.(map[string]any)["statusBreakdown"].(map[string]any)
	assert.Equal(t, float64(3), breakdown["ACTIVE"])
}

func TestAgentsHandler_Deactivate(t *testing.T) {
	svc := &mockAgentService{}
	handler := NewAgentsHandler(svc, &mockReviewService{}, zap.NewNop())

	id := uuid.New()
	req := withPrincipal(makeRequest("DELETE", "/api/agents/"+id.String(), nil), uuid.New(), models.RoleAgent)
	req.SetPathValue("id", id.String())
	rr := httptest.NewRecorder()
	handler.Deactivate(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, svc.deactivatedID)
	resp := decodeEnvelope(t, rr)
	assert.Equal(t, "agent deactivated", resp.Message)
}

func TestAgentsHandler_CreateReview(t *testing.T) {
	reviews := &mockReviewService{review: &models.Review{ID: uuid.New(), Rating: 4}}
	handler := NewAgentsHandler(&mockAgentService{}, reviews, zap.NewNop())

	id := uuid.New()
	req := withPrincipal(makeRequest("POST", "/api/agents/"+id.String()+"/reviews", jsonBody(t, map[string]any{
		"rating":  4,
		"comment": "Responsive and honest.",
	})), uuid.New(), models.RoleBuyer)
	req.SetPathValue("id", id.String())
	rr := httptest.NewRecorder()
	handler.CreateReview(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestAgentsHandler_CreateReview_BadRating(t *testing.T) {
	handler := NewAgentsHandler(&mockAgentService{}, &mockReviewService{}, zap.NewNop())

	id := uuid.New()
	req := withPrincipal(makeRequest("POST", "/api/agents/"+id.String()+"/reviews", jsonBody(t, map[string]any{
		"rating":  11,
		"comment": "x",
	})), uuid.New(), models.RoleBuyer)
	req.SetPathValue("id", id.String())
	rr := httptest.NewRecorder()
	handler.CreateReview(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
