package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/entities"
	"smartscheduler/internal/google"
)

type EventLister interface {
	ListEvents(ctx context.Context, cred availability.Credential, from, to time.Time) ([]google.CalendarEvent, error)
}

// CalendarService lists the events on a host's connected Google Calendar.
type CalendarService struct {
	credentials availability.CredentialStore
	events      EventLister
	logger      *slog.Logger
}

func NewCalendarService(credentials availability.CredentialStore, events EventLister, logger *slog.Logger) *CalendarService {
	return &CalendarService{credentials: credentials, events: events, logger: logger}
}

// Events returns the host's events between timeMin and timeMax, both RFC 3339.
func (s *CalendarService) Events(ctx context.Context, hostID, timeMin, timeMax string) (*entities.CalendarEventsResponse, error) {
	if timeMin == "" || timeMax == "" {
		return nil, invalid("timeMin and timeMax are required")
	}
	from, err := time.Parse(time.RFC3339, timeMin)
	if err != nil {
		return nil, invalid("timeMin must be an RFC 3339 timestamp")
	}
	to, err := time.Parse(time.RFC3339, timeMax)
	if err != nil {
		return nil, invalid("timeMax must be an RFC 3339 timestamp")
	}
	if !to.After(from) {
		return nil, invalid("timeMax must be after timeMin")
	}

	cred, err := s.credentials.Credential(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil || cred.Provider != availability.ProviderGoogle {
		return nil, ErrNoGoogleCredential
	}

	events, err := s.events.ListEvents(ctx, *cred, from, to)
	if err != nil {
		s.logger.Error("listing calendar events failed", "host", hostID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCalendarFailure, err)
	}
	return &entities.CalendarEventsResponse{Events: events}, nil
}
