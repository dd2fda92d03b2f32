package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/validation"
)

// Pagination describes the page window attached to list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page window for a total row count.
func NewPagination(page, limit, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// ApiResponse wraps every payload in the envelope the frontend expects.
type ApiResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Errors     validation.Errors `json:"errors,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

// WriteJSON writes a success envelope and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	return writeEnvelope(w, statusCode, &ApiResponse{Success: true, Data: data})
}

// WritePage writes a success envelope with pagination metadata.
func WritePage(w http.ResponseWriter, data any, pagination *Pagination) error {
	return writeEnvelope(w, http.StatusOK, &ApiResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}

// WriteMessage writes a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) error {
	return writeEnvelope(w, statusCode, &ApiResponse{Success: true, Message: message})
}

// ErrorResponse writes an error envelope and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) error {
	return writeEnvelope(w, statusCode, &ApiResponse{Success: false, Error: message})
}

// ValidationErrorResponse writes the field-level error list as a 400.
func ValidationErrorResponse(w http.ResponseWriter, errs validation.Errors) error {
	return writeEnvelope(w, http.StatusBadRequest, &ApiResponse{
		Success: false,
		Error:   "validation failed",
		Errors:  errs,
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, resp *ApiResponse) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(resp)
}

// HandleServiceError maps a service error to its HTTP status. Unexpected
// errors are logged with detail and reported generically.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		ValidationErrorResponse(w, validationErrs)
	case errors.Is(err, apperrors.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		ErrorResponse(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, apperrors.ErrForbidden):
		ErrorResponse(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, apperrors.ErrAlreadyVerified):
		ErrorResponse(w, http.StatusBadRequest, "property is already verified")
	default:
		logger.Error("request failed", zap.Error(err))
		ErrorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeJSON parses the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
