package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"smartscheduler/internal/auth"
	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
	apperrors "smartscheduler/internal/errors"
	"smartscheduler/internal/service"
)

type HostBookingService interface {
	List(ctx context.Context, hostID, status string) (*entities.BookingRequestsList, error)
	Approve(ctx context.Context, hostID, id string) (*db.BookingRequest, error)
	Reject(ctx context.Context, hostID, id string) (*db.BookingRequest, error)
}

type SettingsService interface {
	GetSchedule(ctx context.Context, hostID string, scope availability.Scope) (*entities.ScheduleSettingsResponse, error)
	PutSchedule(ctx context.Context, hostID string, scope availability.Scope, req entities.ScheduleSettingsRequest) error
	PutCredentials(ctx context.Context, hostID string, req entities.CredentialsRequest) error
}

// HostHandler serves the authenticated host endpoints. Every handler reads
// the host from the request context set by auth.HostAuthMiddleware.
type HostHandler struct {
	Bookings HostBookingService
	Settings SettingsService
	Rules    RuleService
	Calendar CalendarService
	logger   *slog.Logger
}

func NewHostHandler(bookings HostBookingService, settings SettingsService, rules RuleService, calendar CalendarService, logger *slog.Logger) *HostHandler {
	return &HostHandler{Bookings: bookings, Settings: settings, Rules: rules, Calendar: calendar, logger: logger}
}

func (h *HostHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.Bookings.List(r.Context(), auth.HostID(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, list)
}

func (h *HostHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Approve(r.Context(), auth.HostID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, service.ToBookingResponse(*b))
}

func (h *HostHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Reject(r.Context(), auth.HostID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, service.ToBookingResponse(*b))
}

func (h *HostHandler) scope(r *http.Request) (availability.Scope, error) {
	q := r.URL.Query()
	return service.ParseScope(auth.HostID(r.Context()), q.Get("scope"), q.Get("id"))
}

func (h *HostHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scope(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	resp, err := h.Settings.GetSchedule(r.Context(), auth.HostID(r.Context()), scope)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, resp)
}

func (h *HostHandler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scope(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	var req entities.ScheduleSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.ErrBadRequest("invalid request body"))
		return
	}
	if err := h.Settings.PutSchedule(r.Context(), auth.HostID(r.Context()), scope, req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HostHandler) PutCredentials(w http.ResponseWriter, r *http.Request) {
	var req entities.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.ErrBadRequest("invalid request body"))
		return
	}
	if err := h.Settings.PutCredentials(r.Context(), auth.HostID(r.Context()), req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
