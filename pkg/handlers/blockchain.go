package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/middleware"
	"github.com/propertyconnect/engine/pkg/services"
	"github.com/propertyconnect/engine/pkg/validation"
)

// BlockchainHandler handles title verification and sale contract routes.
type BlockchainHandler struct {
	notaryService services.NotaryService
	logger        *zap.Logger
}

// NewBlockchainHandler creates a new blockchain handler.
func NewBlockchainHandler(notaryService services.NotaryService, logger *zap.Logger) *BlockchainHandler {
	return &BlockchainHandler{
		notaryService: notaryService,
		logger:        logger.Named("blockchain-handler"),
	}
}

// RegisterRoutes registers the blockchain handler's routes on the given mux.
// The write paths sit behind the rate limiter.
func (h *BlockchainHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, limiter *middleware.RateLimiter) {
	mux.HandleFunc("POST /api/blockchain/verify-property/{propertyID}",
		limiter.Limit(authMiddleware.RequireAuth(h.VerifyProperty)))
	mux.HandleFunc("GET /api/blockchain/verify-property/{propertyID}", h.Status)
	mux.HandleFunc("GET /api/blockchain/verified-properties", h.ListVerified)
	mux.HandleFunc("POST /api/blockchain/create-contract",
		limiter.Limit(authMiddleware.RequireAuth(h.CreateContract)))
	mux.HandleFunc("GET /api/blockchain/transactions", authMiddleware.RequireAuth(h.ListTransactions))
	mux.HandleFunc("GET /api/blockchain/transaction/{transactionID}", authMiddleware.RequireAuth(h.GetTransaction))
	mux.HandleFunc("PUT /api/blockchain/transaction/{transactionID}/status",
		limiter.Limit(authMiddleware.RequireAuth(h.UpdateTransactionStatus)))
	mux.HandleFunc("GET /api/blockchain/network-info", h.NetworkInfo)
}

// VerifyProperty handles POST /api/blockchain/verify-property/{propertyID}.
func (h *BlockchainHandler) VerifyProperty(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.notaryService.VerifyProperty(r.Context(), propertyID, userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Status handles GET /api/blockchain/verify-property/{propertyID}.
func (h *BlockchainHandler) Status(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(r.PathValue("propertyID"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid property id")
		return
	}

	status, err := h.notaryService.Status(r.Context(), propertyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// ListVerified handles GET /api/blockchain/verified-properties.
func (h *BlockchainHandler) ListVerified(w http.ResponseWriter, r *http.Request) {
	page, limit := validation.ParsePage(r.URL.Query())

	properties, total, err := h.notaryService.ListVerified(r.Context(), page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WritePage(w, properties, NewPagination(page, limit, total))
}

// CreateContract handles POST /api/blockchain/create-contract.
func (h *BlockchainHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validation.CreateContractRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	result, err := h.notaryService.CreateContract(r.Context(), userID, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// GetTransaction handles GET /api/blockchain/transaction/{transactionID}.
func (h *BlockchainHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.notaryService.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

// ListTransactions handles GET /api/blockchain/transactions.
func (h *BlockchainHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	transactions, err := h.notaryService.ListTransactions(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, transactions)
}

// UpdateTransactionStatus handles PUT /api/blockchain/transaction/{transactionID}/status.
func (h *BlockchainHandler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req validation.TransactionStatusRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.Check(req); len(errs) > 0 {
		ValidationErrorResponse(w, errs)
		return
	}

	tx, err := h.notaryService.UpdateTransactionStatus(r.Context(), transactionID, userID, req.Status)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

// NetworkInfo handles GET /api/blockchain/network-info.
func (h *BlockchainHandler) NetworkInfo(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.notaryService.NetworkInfo(r.Context()))
}
