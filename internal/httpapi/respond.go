// Package httpapi exposes the domain managers over HTTP for the storefront
// UI. Handlers translate the domain error taxonomy to status codes; domain
// types are serialized as-is.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/luyao-shop/storefront/internal/domain"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}

// writeDomainError maps the domain error taxonomy onto status codes.
// Anything unrecognized is a 500 with the detail kept out of the response.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		transition *domain.InvalidTransitionError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, logger, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccountDisabled):
		writeError(w, logger, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, logger, http.StatusConflict, err.Error())
	case errors.As(err, &validation):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		writeError(w, logger, http.StatusNotFound, err.Error())
	case errors.As(err, &conflict), errors.As(err, &transition):
		writeError(w, logger, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled error", "error", err)
		writeError(w, logger, http.StatusInternalServerError, "internal server error")
	}
}
