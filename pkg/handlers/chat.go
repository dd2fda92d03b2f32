package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/services"
	"github.com/propertyconnect/engine/pkg/validation"
)

// ChatHandler handles the assistant conversation route.
type ChatHandler struct {
	chatService services.ChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger.Named("chat-handler"),
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/chat/message", authMiddleware.RequireAuth(h.Send))
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Send handles POST /api/chat/message.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req validation.ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	reply, err := h.chatService.Send(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrChatUnavailable) {
			ErrorResponse(w, http.StatusServiceUnavailable, "chat is not available")
			return
		}
		h.logger.Error("chat completion failed", zap.Error(err))
		ErrorResponse(w, http.StatusInternalServerError, "failed to generate reply")
		return
	}
	WriteJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
