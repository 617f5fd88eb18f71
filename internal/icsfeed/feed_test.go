package icsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartscheduler/internal/availability"
)

func calendarOf(events ...string) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}
	for _, e := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, strings.Split(e, "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

var (
	jst      = availability.FixedOffset(540)
	dayStart = time.Date(2025, 6, 2, 0, 0, 0, 0, jst)
	dayEnd   = time.Date(2025, 6, 2, 23, 59, 59, 0, jst)
)

func TestParse(t *testing.T) {
	feed := calendarOf(
		"UID:a\nSUMMARY:Standup\nDTSTART:20250602T010000Z\nDTEND:20250602T020000Z",
		"UID:b\nSUMMARY:Other day\nDTSTART:20250605T010000Z\nDTEND:20250605T020000Z",
		"UID:c\nSTATUS:CANCELLED\nDTSTART:20250602T030000Z\nDTEND:20250602T040000Z",
		"UID:d\nTRANSP:TRANSPARENT\nDTSTART:20250602T050000Z\nDTEND:20250602T060000Z",
		"UID:e\nSUMMARY:Broken\nDTSTART:not-a-date\nDTEND:20250602T060000Z",
		"UID:f\nSUMMARY:Focus\nDTSTART:20250602T060000Z\nDURATION:PT30M",
	)

	busy, err := Parse(strings.NewReader(feed), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, busy, 2)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, jst)))
	assert.True(t, busy[1].End.Equal(time.Date(2025, 6, 2, 15, 30, 0, 0, jst)))
}

func TestParse_ExpandsRecurrence(t *testing.T) {
	feed := calendarOf(
		"UID:weekly\nSUMMARY:Weekly 1:1\nDTSTART:20250519T040000Z\nDTEND:20250519T043000Z\nRRULE:FREQ=WEEKLY;BYDAY=MO",
	)

	busy, err := Parse(strings.NewReader(feed), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, 6, 2, 13, 0, 0, 0, jst)))
	assert.Equal(t, 30*time.Minute, busy[0].End.Sub(busy[0].Start))
}

func TestBusyIntervals_FetchesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(calendarOf("UID:a\nDTSTART:20250602T010000Z\nDTEND:20250602T020000Z")))
	}))
	defer srv.Close()

	p := NewProvider(srv.Client(), nil)
	busy, err := p.BusyIntervals(context.Background(),
		availability.Credential{ParticipantID: "u1", Provider: availability.ProviderICS, FeedURL: srv.URL},
		dayStart, dayEnd)
	require.NoError(t, err)
	assert.Len(t, busy, 1)
}

func TestBusyIntervals_Errors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	p := NewProvider(srv.Client(), nil)

	_, err := p.BusyIntervals(context.Background(), availability.Credential{FeedURL: srv.URL}, dayStart, dayEnd)
	assert.ErrorContains(t, err, "404")

	_, err = p.BusyIntervals(context.Background(), availability.Credential{}, dayStart, dayEnd)
	assert.ErrorIs(t, err, ErrNoFeedURL)
}

func TestBusyIntervals_RejectsOversizedFeed(t *testing.T) {
	body := calendarOf("UID:a\nDTSTART:20250602T010000Z\nDTEND:20250602T020000Z")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewProvider(srv.Client(), nil)
	p.maxBytes = int64(len(body) - 1)
	_, err := p.BusyIntervals(context.Background(), availability.Credential{FeedURL: srv.URL}, dayStart, dayEnd)
	assert.ErrorIs(t, err, ErrFeedTooLarge)

	p.maxBytes = int64(len(body))
	_, err = p.BusyIntervals(context.Background(), availability.Credential{FeedURL: srv.URL}, dayStart, dayEnd)
	assert.NoError(t, err)
}

func TestPublicClient_RefusesLoopback(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	p := NewProvider(NewPublicClient(time.Second), nil)
	_, err := p.BusyIntervals(context.Background(), availability.Credential{FeedURL: srv.URL}, dayStart, dayEnd)
	assert.ErrorContains(t, err, "not public")
	assert.Zero(t, hits)
}

func TestRefusePrivate(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:80", "10.0.0.8:443", "192.168.1.1:80", "169.254.169.254:80", "[::1]:443", "0.0.0.0:80"} {
		assert.ErrorIs(t, refusePrivate("tcp", addr, nil), ErrPrivateAddress, addr)
	}
	for _, addr := range []string{"8.8.8.8:443", "[2001:4860:4860::8888]:443"} {
		assert.NoError(t, refusePrivate("tcp", addr, nil), addr)
	}
}
