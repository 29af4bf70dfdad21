package api

import (
	"errors"
	"net/http"

	"shareit/internal/service"

	"github.com/rs/zerolog"
)

// StatusFor maps a service error kind onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrCreatingComment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteError(w, status, "internal server error")
		return
	}
	zerolog.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("Request rejected")
	WriteError(w, status, err.Error())
}
