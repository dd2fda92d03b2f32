package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/services"
	"github.com/propertyconnect/engine/pkg/validation"
)

// UsersHandler handles profile, saved-listing and preference routes.
type UsersHandler struct {
	userService     services.UserService
	propertyService services.PropertyService
	logger          *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(userService services.UserService, propertyService services.PropertyService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		userService:     userService,
		propertyService: propertyService,
		logger:          logger.Named("users-handler"),
	}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/users/profile", authMiddleware.RequireAuth(h.Profile))
	mux.HandleFunc("PUT /api/users/profile", authMiddleware.RequireAuth(h.UpdateProfile))
	mux.HandleFunc("GET /api/users/properties", authMiddleware.RequireAuth(h.OwnProperties))
	mux.HandleFunc("GET /api/users/saved-properties", authMiddleware.RequireAuth(h.SavedProperties))
	mux.HandleFunc("POST /api/users/saved-properties/{propertyID}", authMiddleware.RequireAuth(h.ToggleSaved))
	mux.HandleFunc("DELETE /api/users/saved-properties/{propertyID}", authMiddleware.RequireAuth(h.ToggleSaved))
	mux.HandleFunc("PUT /api/users/buyer-preferences", authMiddleware.RequireAuth(h.UpdateBuyerPreferences))
	mux.HandleFunc("DELETE /api/users/account", authMiddleware.RequireAuth(h.DeleteAccount))
}

// Profile handles GET /api/users/profile.
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validation.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// OwnProperties handles GET /api/users/properties, the agent's own
// listings with an optional status filter.
func (h *UsersHandler) OwnProperties(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	page, limit := validation.ParsePage(r.URL.Query())
	status := r.URL.Query().Get("status")

	properties, total, err := h.propertyService.ListByAgent(r.Context(), userID, status, page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, properties, NewPagination(page, limit, total))
}

// SavedProperties handles GET /api/users/saved-properties.
func (h *UsersHandler) SavedProperties(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	properties, err := h.userService.SavedProperties(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, properties)
}

// toggleSavedResponse reports the post-toggle state of a saved listing.
type toggleSavedResponse struct {
	PropertyID uuid.UUID `json:"propertyId"`
	Saved      bool      `json:"saved"`
}

// ToggleSaved handles POST and DELETE on /api/users/saved-properties/{propertyID}.
// Both verbs toggle: saving an already-saved listing unsaves it.
func (h *UsersHandler) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	propertyID, err := uuid.Parse(r.PathValue("propertyID"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
		return
	}

	saved, err := h.userService.ToggleSavedProperty(r.Context(), userID, propertyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, toggleSavedResponse{PropertyID: propertyID, Saved: saved})
}

// UpdateBuyerPreferences handles PUT /api/users/buyer-preferences.
func (h *UsersHandler) UpdateBuyerPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validation.BuyerPreferencesRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	buyer, err := h.userService.UpdateBuyerPreferences(r.Context(), userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, buyer)
}

// DeleteAccount handles DELETE /api/users/account.
func (h *UsersHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteMessage(w, http.StatusOK, "account deleted")
}
