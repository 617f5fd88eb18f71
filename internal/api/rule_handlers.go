package api

import (
	"context"
	"encoding/json"
	"net/http"

	"smartscheduler/internal/auth"
	"smartscheduler/internal/entities"
	apperrors "smartscheduler/internal/errors"
)

type RuleService interface {
	List(ctx context.Context, hostID string) (*entities.MeetingRulesList, error)
	Create(ctx context.Context, hostID string, req entities.MeetingRuleRequest) (*entities.MeetingRuleResponse, error)
}

type CalendarService interface {
	Events(ctx context.Context, hostID, timeMin, timeMax string) (*entities.CalendarEventsResponse, error)
}

func (h *HostHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rules.List(r.Context(), auth.HostID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, list)
}

func (h *HostHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req entities.MeetingRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.ErrBadRequest("invalid request body"))
		return
	}
	rule, err := h.Rules.Create(r.Context(), auth.HostID(r.Context()), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, rule)
}

// ListCalendarEvents serves the host's Google Calendar events between the
// timeMin and timeMax query parameters.
func (h *HostHandler) ListCalendarEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.Calendar.Events(r.Context(), auth.HostID(r.Context()), q.Get("timeMin"), q.Get("timeMax"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, resp)
}
