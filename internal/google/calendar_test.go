package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"smartscheduler/internal/availability"
)

var cred = availability.Credential{
	ParticipantID: "u1",
	Provider:      availability.ProviderGoogle,
	AccessToken:   "token",
	Expiry:        time.Now().Add(time.Hour),
}

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewProvider("id", "secret", nil, option.WithEndpoint(srv.URL+"/"))
}

func TestBusyIntervals(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/freeBusy", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calendars":{"primary":{"busy":[
			{"start":"2025-06-02T01:00:00Z","end":"2025-06-02T02:00:00Z"},
			{"start":"garbage","end":"2025-06-02T04:00:00Z"}
		]}}}`))
	})

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, availability.FixedOffset(540))
	busy, err := p.BusyIntervals(context.Background(), cred, start, start.Add(24*time.Hour-time.Second))
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-02T00:00:00+09:00", got["timeMin"])
}

func TestBusyIntervals_CalendarError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calendars":{"primary":{"errors":[{"domain":"global","reason":"notFound"}]}}}`))
	})

	_, err := p.BusyIntervals(context.Background(), cred, time.Now(), time.Now().Add(time.Hour))
	assert.ErrorContains(t, err, "notFound")
}

func TestBusyIntervals_MissingCalendarIsAnError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calendars":{}}`))
	})

	busy, err := p.BusyIntervals(context.Background(), cred, time.Now(), time.Now().Add(time.Hour))
	assert.ErrorContains(t, err, "no primary calendar")
	assert.Nil(t, busy)
}

func TestBusyIntervals_HTTPError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backend"}}`, http.StatusInternalServerError)
	})

	_, err := p.BusyIntervals(context.Background(), cred, time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestBusyIntervals_NoToken(t *testing.T) {
	p := NewProvider("id", "secret", nil)
	_, err := p.BusyIntervals(context.Background(), availability.Credential{ParticipantID: "u1"}, time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestCreateEvent(t *testing.T) {
	var body map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"evt1","htmlLink":"https://calendar.google.com/evt1",
			"conferenceData":{"entryPoints":[{"entryPointType":"video","uri":"https://meet.google.com/abc-defg-hij"}]}}`))
	})

	start := time.Date(2025, 6, 2, 10, 0, 0, 0, availability.FixedOffset(540))
	ev, err := p.CreateEvent(context.Background(), cred, EventRequest{
		Summary:       "Intro call",
		Start:         start,
		End:           start.Add(time.Hour),
		AttendeeEmail: "guest@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt1", ev.ID)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", ev.MeetLink)

	attendees := body["attendees"].([]any)
	assert.Equal(t, "guest@example.com", attendees[0].(map[string]any)["email"])
	conf := body["conferenceData"].(map[string]any)["createRequest"].(map[string]any)
	assert.Equal(t, "hangoutsMeet", conf["conferenceSolutionKey"].(map[string]any)["type"])
	assert.NotEmpty(t, conf["requestId"])
}

func TestListEvents(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "2025-06-01T00:00:00+09:00", q.Get("timeMin"))
		w.Header().Set("Content-Type", "application/json")
		if q.Get("pageToken") == "" {
			w.Write([]byte(`{"nextPageToken":"p2","items":[
				{"id":"e1","summary":"Standup","start":{"dateTime":"2025-06-02T10:00:00+09:00"},"end":{"dateTime":"2025-06-02T10:15:00+09:00"}},
				{"id":"e2","start":{"date":"2025-06-03"},"end":{"date":"2025-06-04"}}
			]}`))
			return
		}
		w.Write([]byte(`{"items":[{"id":"e3","summary":"Review","start":{"dateTime":"2025-06-05T15:00:00+09:00"},"end":{"dateTime":"2025-06-05T16:00:00+09:00"}}]}`))
	})

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, availability.FixedOffset(540))
	events, err := p.ListEvents(context.Background(), cred, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, []CalendarEvent{
		{ID: "e1", Title: "Standup", Start: "2025-06-02T10:00:00+09:00", End: "2025-06-02T10:15:00+09:00"},
		{ID: "e2", Title: "(No Title)", Start: "2025-06-03", End: "2025-06-04", AllDay: true},
		{ID: "e3", Title: "Review", Start: "2025-06-05T15:00:00+09:00", End: "2025-06-05T16:00:00+09:00"},
	}, events)
}
