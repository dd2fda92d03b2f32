package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/services"
	"github.com/propertyconnect/engine/pkg/validation"
)

// PropertiesHandler handles listing routes. Reads are public; writes
// require an agent principal.
type PropertiesHandler struct {
	propertyService services.PropertyService
	reviewService   services.ReviewService
	logger          *zap.Logger
}

// NewPropertiesHandler creates a new properties handler.
func NewPropertiesHandler(propertyService services.PropertyService, reviewService services.ReviewService, logger *zap.Logger) *PropertiesHandler {
	return &PropertiesHandler{
		propertyService: propertyService,
		reviewService:   reviewService,
		logger:          logger.Named("properties-handler"),
	}
}

// RegisterRoutes registers the properties handler's routes on the given mux.
// Literal segments go before the {id} wildcard so /featured and friends are
// not swallowed by it.
func (h *PropertiesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/properties", h.Search)
	mux.HandleFunc("GET /api/properties/search", h.Search)
	mux.HandleFunc("GET /api/properties/featured", h.Featured)
	mux.HandleFunc("GET /api/properties/recent", h.Recent)
	mux.HandleFunc("GET /api/properties/stats", h.Stats)
	mux.HandleFunc("GET /api/properties/{id}", h.Get)
	mux.HandleFunc("POST /api/properties", authMiddleware.RequireAgent(h.Create))
	mux.HandleFunc("PUT /api/properties/{id}", authMiddleware.RequireAgent(h.Update))
	mux.HandleFunc("DELETE /api/properties/{id}", authMiddleware.RequireAgent(h.Delete))
	mux.HandleFunc("GET /api/properties/{id}/reviews", h.ListReviews)
	mux.HandleFunc("POST /api/properties/{id}/reviews", authMiddleware.RequireAuth(h.CreateReview))
	mux.HandleFunc("POST /api/properties/recommendations", h.Recommend)
}

// Search handles GET /api/properties and GET /api/properties/search.
func (h *PropertiesHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters, errs := validation.ParsePropertySearch(r.URL.Query())
	if len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	properties, total, err := h.propertyService.Search(r.Context(), filters)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, properties, NewPagination(filters.Page, filters.PageSize(), total))
}

// Featured handles GET /api/properties/featured.
func (h *PropertiesHandler) Featured(w http.ResponseWriter, r *http.Request) {
	properties, err := h.propertyService.Featured(r.Context(), queryLimit(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, properties)
}

// Recent handles GET /api/properties/recent.
func (h *PropertiesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	properties, err := h.propertyService.Recent(r.Context(), queryLimit(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, properties)
}

// Stats handles GET /api/properties/stats.
func (h *PropertiesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.propertyService.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// Get handles GET /api/properties/{id}.
func (h *PropertiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := h.propertyService.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, property)
}

// Create handles POST /api/properties.
func (h *PropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validation.PropertyCreateRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	property, err := h.propertyService.Create(r.Context(), userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, property)
}

// Update handles PUT /api/properties/{id}.
func (h *PropertiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var req validation.PropertyUpdateRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	property, err := h.propertyService.Update(r.Context(), id, userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, property)
}

// Delete handles DELETE /api/properties/{id}.
func (h *PropertiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
		return
	}

	if err := h.propertyService.Delete(r.Context(), id, userID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteMessage(w, http.StatusOK, "property deleted")
}

// ListReviews handles GET /api/properties/{id}/reviews.
func (h *PropertiesHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
		return
	}

	page, limit := validation.ParsePage(r.URL.Query())
	reviews, total, err := h.reviewService.ListByProperty(r.Context(), id, page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, reviews, NewPagination(page, limit, total))
}

// CreateReview handles POST /api/properties/{id}/reviews.
func (h *PropertiesHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
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

	review, err := h.reviewService.CreatePropertyReview(r.Context(), id, userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, review)
}

// Recommend handles POST /api/properties/recommendations. It runs the same
// substring search as the public listing path.
func (h *PropertiesHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req validation.RecommendationRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	page, limit := validation.ParsePage(r.URL.Query())
	properties, total, err := h.propertyService.Recommend(r.Context(), req.Query, req.Location, page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, properties, NewPagination(page, limit, total))
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 10
	}
	return limit
}
