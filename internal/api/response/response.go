// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dom/videotube-identity/internal/service"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func JSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, nil, message)
}

// ServiceError renders err with the status of its kind. Only the fixed
// message of a service error reaches the client; anything else is a 500.
func ServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUpstream):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, service.ErrAuthentication):
			status = http.StatusUnauthorized
		case errors.Is(err, service.ErrNotFound):
			status = http.StatusNotFound
		}
	}

	if status == http.StatusInternalServerError || errors.Is(err, service.ErrUpstream) {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	Error(w, status, message)
}
