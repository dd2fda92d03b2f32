package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/middleware"
	"github.com/propertyconnect/engine/pkg/services"
	"github.com/propertyconnect/engine/pkg/validation"
)

// AuthHandler handles registration, login and current-principal routes.
type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService services.AuthService, userService services.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		logger:      logger.Named("auth-handler"),
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
// Register and login sit behind the rate limiter.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, limiter *middleware.RateLimiter) {
	mux.HandleFunc("POST /api/auth/register", limiter.Limit(h.Register))
	mux.HandleFunc("POST /api/auth/login", limiter.Limit(h.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
	mux.HandleFunc("PUT /api/auth/me", authMiddleware.RequireAuth(h.UpdateMe))
	mux.HandleFunc("POST /api/auth/change-password", authMiddleware.RequireAuth(h.ChangePassword))
}

// authPayload is the registration/login response shape.
type authPayload struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req validation.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	user, token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, authPayload{User: user, Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	user, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, authPayload{User: user, Token: token})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so there is
// nothing to invalidate server-side; clients discard the token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	WriteMessage(w, http.StatusOK, "logged out")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
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

// UpdateMe handles PUT /api/auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
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

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validation.ChangePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteMessage(w, http.StatusOK, "password changed")
}
