// Package response writes JSON bodies for the plain net/http endpoints that
// sit outside the huma API (middleware rejections, the event stream).
// Error bodies have the same {code, message, details} shape huma produces.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
)

// ErrorBody is the JSON error shape shared with the huma API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Error writes a coded error body with the code's HTTP status.
func Error(w http.ResponseWriter, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, code.HTTPStatus(), ErrorBody{Code: string(code), Message: message}, logger)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeUnauthorized, message, logger)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeRateLimited, message, logger)
}

// InternalError writes a 500 response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeInternal, message, logger)
}

// HandleError writes err as a coded body. Errors without a domain code
// become 500 and are logged.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var derr *domainerrors.Error
	if errors.As(err, &derr) {
		JSON(w, derr.HTTPStatus(), ErrorBody{
			Code:    string(derr.Code),
			Message: derr.Message,
			Details: derr.Details,
		}, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
