// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrHasID        = errors.New("entity already has an ID, use the update request")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrHasID):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		Reject(w)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// Reject writes the single rejection response used by every security gate.
// It carries no detail so callers cannot tell which check failed.
func Reject(w http.ResponseWriter) {
	Problem(w, http.StatusForbidden, "Forbidden", "")
}

// IsClientError reports whether err maps to a 4xx response.
func IsClientError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrDuplicate, ErrHasID, ErrValidation, ErrForbidden, ErrUnauthorized} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RespondFailure logs err at a level matching its status and writes the
// mapped response.
func RespondFailure(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case logger == nil:
	case IsClientError(err):
		logger.Warn(op+" rejected", slog.Any("error", err))
	default:
		logger.Error(op+" failed", slog.Any("error", err))
	}
	RespondError(w, err)
}
