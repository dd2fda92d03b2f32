package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/services"
	"github.com/propertyconnect/engine/pkg/validation"
)

// AgentsHandler handles the agent directory and profile routes.
type AgentsHandler struct {
	agentService  services.AgentService
	reviewService services.ReviewService
	logger        *zap.Logger
}

// NewAgentsHandler creates a new agents handler.
func NewAgentsHandler(agentService services.AgentService, reviewService services.ReviewService, logger *zap.Logger) *AgentsHandler {
	return &AgentsHandler{
		agentService:  agentService,
		reviewService: reviewService,
		logger:        logger.Named("agents-handler"),
	}
}

// RegisterRoutes registers the agents handler's routes on the given mux.
func (h *AgentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/agents", h.List)
	mux.HandleFunc("GET /api/agents/{id}", h.Get)
	mux.HandleFunc("POST /api/agents", authMiddleware.RequireAgent(h.CreateProfile))
	mux.HandleFunc("PUT /api/agents/{id}", authMiddleware.RequireAgent(h.UpdateProfile))
	mux.HandleFunc("DELETE /api/agents/{id}", authMiddleware.RequireAgent(h.Deactivate))
	mux.HandleFunc("GET /api/agents/{id}/metrics", authMiddleware.RequireAuth(h.Metrics))
	mux.HandleFunc("GET /api/agents/{id}/reviews", h.ListReviews)
	mux.HandleFunc("POST /api/agents/{id}/reviews", authMiddleware.RequireAuth(h.CreateReview))
}

// List handles GET /api/agents.
func (h *AgentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, errs := validation.ParseAgentSearch(r.URL.Query())
	if len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	agents, total, err := h.agentService.List(r.Context(), filters)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, agents, NewPagination(filters.Page, filters.Limit, total))
}

// Get handles GET /api/agents/{id}.
func (h *AgentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := h.agentService.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, agent)
}

// CreateProfile handles POST /api/agents.
func (h *AgentsHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validation.AgentProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	agent, err := h.agentService.CreateProfile(r.Context(), userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, agent)
}

// UpdateProfile handles PUT /api/agents/{id}.
func (h *AgentsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	var req validation.AgentProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	agent, err := h.agentService.UpdateProfile(r.Context(), id, userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, agent)
}

// Deactivate handles DELETE /api/agents/{id}. The profile is soft-disabled,
// not removed.
func (h *AgentsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	if err := h.agentService.Deactivate(r.Context(), id, userID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteMessage(w, http.StatusOK, "agent deactivated")
}

// Metrics handles GET /api/agents/{id}/metrics, visible only to the
// owning principal.
func (h *AgentsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	report, err := h.agentService.Metrics(r.Context(), id, userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// ListReviews handles GET /api/agents/{id}/reviews.
func (h *AgentsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	page, limit := validation.ParsePage(r.URL.Query())
	reviews, total, err := h.reviewService.ListByAgent(r.Context(), id, page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, reviews, NewPagination(page, limit, total))
}

// CreateReview handles POST /api/agents/{id}/reviews.
func (h *AgentsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	var req validation.ReviewRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	review, err := h.reviewService.CreateAgentReview(r.Context(), id, userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, review)
}
