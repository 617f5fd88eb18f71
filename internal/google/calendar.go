package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"smartscheduler/internal/availability"
)

const primaryCalendar = "primary"

var ErrNoToken = errors.New("credential has no google token")

// Provider reads free/busy information from and writes events to a host's
// primary Google Calendar, authenticating with the host's stored tokens.
type Provider struct {
	oauth  *oauth2.Config
	logger *slog.Logger
	opts   []option.ClientOption
}

// NewProvider builds a provider for the given OAuth client. Extra options are
// appended when creating the calendar service (tests point it at a fake
// endpoint with option.WithEndpoint).
func NewProvider(clientID, clientSecret string, logger *slog.Logger, opts ...option.ClientOption) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{calendar.CalendarScope},
			Endpoint:     googleoauth.Endpoint,
		},
		logger: logger,
		opts:   opts,
	}
}

func (p *Provider) service(ctx context.Context, cred availability.Credential) (*calendar.Service, error) {
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, ErrNoToken
	}
	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
		TokenType:    "Bearer",
	}
	client := p.oauth.Client(ctx, token)
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, p.opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// BusyIntervals implements availability.CalendarProvider with a FreeBusy
// query on the primary calendar. Errors reported for the calendar inside an
// otherwise successful response fail the whole lookup.
func (p *Provider) BusyIntervals(ctx context.Context, cred availability.Credential, start, end time.Time) ([]availability.BusyInterval, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: primaryCalendar}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[primaryCalendar]
	if !ok {
		return nil, fmt.Errorf("freebusy response has no %s calendar", primaryCalendar)
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freebusy query for %s returned %q", primaryCalendar, cal.Errors[0].Reason)
	}

	intervals := make([]availability.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		s, errS := time.Parse(time.RFC3339, period.Start)
		e, errE := time.Parse(time.RFC3339, period.End)
		if errS != nil || errE != nil {
			p.logger.Debug("skipping unparsable busy period", "participant", cred.ParticipantID, "start", period.Start, "end", period.End)
			continue
		}
		intervals = append(intervals, availability.BusyInterval{Start: s, End: e})
	}
	p.logger.Debug("fetched busy periods", "participant", cred.ParticipantID, "count", len(intervals))
	return intervals, nil
}

type EventRequest struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	AttendeeEmail string
	AttendeeName  string
}

type CreatedEvent struct {
	ID       string
	MeetLink string
	HTMLLink string
}

// CreateEvent inserts the event on the primary calendar with a Google Meet
// conference and lets Google send the invitation to the attendee.
func (p *Provider) CreateEvent(ctx context.Context, cred availability.Credential, req EventRequest) (*CreatedEvent, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339)},
		Attendees: []*calendar.EventAttendee{
			{Email: req.AttendeeEmail, DisplayName: req.AttendeeName},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := svc.Events.Insert(primaryCalendar, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	p.logger.Info("created calendar event", "participant", cred.ParticipantID, "event", created.Id)
	return &CreatedEvent{ID: created.Id, MeetLink: meetLink(created), HTMLLink: created.HtmlLink}, nil
}

// CalendarEvent is an event on the host's own calendar. Start and End hold a
// date for all-day events and an RFC 3339 date-time otherwise.
type CalendarEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Start  string `json:"start"`
	End    string `json:"end"`
	AllDay bool   `json:"allDay"`
}

// ListEvents returns the primary calendar's events in [from, to] with
// recurring events expanded into single instances, ordered by start.
func (p *Provider) ListEvents(ctx context.Context, cred availability.Credential, from, to time.Time) ([]CalendarEvent, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	events := []CalendarEvent{}
	err = svc.Events.List(primaryCalendar).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				if item.Start == nil || item.End == nil {
					continue
				}
				events = append(events, toCalendarEvent(item))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func toCalendarEvent(e *calendar.Event) CalendarEvent {
	ev := CalendarEvent{ID: e.Id, Title: e.Summary}
	if ev.Title == "" {
		ev.Title = "(No Title)"
	}
	if e.Start.DateTime == "" {
		ev.AllDay = true
		ev.Start, ev.End = e.Start.Date, e.End.Date
		return ev
	}
	ev.Start, ev.End = e.Start.DateTime, e.End.DateTime
	return ev
}

func meetLink(e *calendar.Event) string {
	if e.HangoutLink != "" {
		return e.HangoutLink
	}
	if e.ConferenceData == nil {
		return ""
	}
	for _, ep := range e.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" {
			return ep.Uri
		}
	}
	return ""
}
