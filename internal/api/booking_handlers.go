package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
	apperrors "smartscheduler/internal/errors"
	"smartscheduler/internal/service"
)

type SlotService interface {
	Slots(ctx context.Context, q entities.SlotsQuery) (*entities.SlotsResponse, error)
	Menu(ctx context.Context, slug string) (*entities.MenuResponse, error)
}

type BookingRequester interface {
	Request(ctx context.Context, in entities.BookingRequestInput) (*db.BookingRequest, error)
}

// BookingHandler serves the public guest booking page.
type BookingHandler struct {
	Slots    SlotService
	Bookings BookingRequester
	logger   *slog.Logger
}

func NewBookingHandler(slots SlotService, bookings BookingRequester, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{Slots: slots, Bookings: bookings, logger: logger}
}

func (h *BookingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := entities.SlotsQuery{
		HostID:        q.Get("hostId"),
		OrgID:         q.Get("orgId"),
		MenuSlug:      q.Get("menu"),
		MeetingTypeID: q.Get("meetingTypeId"),
		Date:          q.Get("date"),
		Method:        q.Get("method"),
	}
	if raw := q.Get("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d <= 0 {
			apperrors.WriteError(w, apperrors.ErrBadRequest("duration must be a positive number of minutes"))
			return
		}
		query.DurationMinutes = d
	}

	resp, err := h.Slots.Slots(r.Context(), query)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Slots.Menu(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, menu)
}

func (h *BookingHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in entities.BookingRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperrors.WriteError(w, apperrors.ErrBadRequest("invalid request body"))
		return
	}
	b, err := h.Bookings.Request(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, service.ToBookingResponse(*b))
}
