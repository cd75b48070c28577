package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, nothing left to do but log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgInvalidState       = "Authorization state is invalid or expired. Start the flow again."
	ErrMsgNotAuthorized      = "No stored credentials. Complete the authorization flow first."
	ErrMsgVaultUnreadable    = "Stored credentials could not be decrypted. Check the vault passphrase or reset."
	ErrMsgCycleBusy          = "A cycle is already running"
	ErrMsgConfirmRequired    = "Destructive operation requires confirm=true"
	ErrMsgInvalidRequest     = "Invalid request. Please check your inputs."
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages an operator can act on. Internal detail stays in the logs.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	switch {
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest, ErrMsgInvalidState
	case errors.Is(err, domain.ErrCredentialNotFound):
		return http.StatusNotFound, ErrMsgNotAuthorized
	case errors.Is(err, domain.ErrDecryptionFailed):
		return http.StatusConflict, ErrMsgVaultUnreadable
	case errors.Is(err, domain.ErrRunnerBusy):
		return http.StatusConflict, ErrMsgCycleBusy
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequest
	case errors.Is(err, domain.ErrAuthenticationExpired), errors.Is(err, domain.ErrRefreshFailed):
		return http.StatusUnauthorized, ErrMsgNotAuthorized
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
