package api

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "smartscheduler/internal/errors"
	"smartscheduler/internal/service"
)

// writeServiceError maps service errors to HTTP statuses. Anything unknown is
// logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := ""
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrMeetingTypeNotFound),
		errors.Is(err, service.ErrHostNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNoHosts):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrNoGoogleCredential):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrCalendarFailure):
		status, message = http.StatusBadGateway, service.ErrCalendarFailure.Error()
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		apperrors.WriteError(w, err)
		return
	}
	apperrors.WriteError(w, apperrors.Wrap(status, message, err))
}
