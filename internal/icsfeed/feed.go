package icsfeed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"smartscheduler/internal/availability"
)

// MaxFeedBytes caps the size of a downloaded feed.
const MaxFeedBytes = 10 << 20

var (
	ErrNoFeedURL      = errors.New("credential has no feed url")
	ErrFeedTooLarge   = errors.New("calendar feed too large")
	ErrPrivateAddress = errors.New("feed address is not public")
)

// Provider reads busy intervals from a published iCalendar feed.
type Provider struct {
	client   *http.Client
	logger   *slog.Logger
	maxBytes int64
}

// NewPublicClient returns a client for fetching host-supplied feed URLs. It
// refuses to connect to loopback, private, link-local and unspecified
// addresses, checked on the resolved address at dial time.
func NewPublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, Control: refusePrivate}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

func refusePrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}

func NewProvider(client *http.Client, logger *slog.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{client: client, logger: logger, maxBytes: MaxFeedBytes}
}

// BusyIntervals implements availability.CalendarProvider.
func (p *Provider) BusyIntervals(ctx context.Context, cred availability.Credential, start, end time.Time) ([]availability.BusyInterval, error) {
	if cred.FeedURL == "" {
		return nil, ErrNoFeedURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cred.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, p.maxBytes)
	}

	busy, err := Parse(bytes.NewReader(data), start, end)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("fetched feed busy intervals", "participant", cred.ParticipantID, "count", len(busy))
	return busy, nil
}

// Parse returns the busy intervals of the events in r that overlap
// [start, end]. Recurring events are expanded. Cancelled, transparent and
// malformed events are skipped. Floating times are read in start's location.
func Parse(r io.Reader, start, end time.Time) ([]availability.BusyInterval, error) {
	loc := start.Location()
	dec := ical.NewDecoder(r)
	var busy []availability.BusyInterval

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}
			if skipped(event) {
				continue
			}

			evStart, err := event.DateTimeStart(loc)
			if err != nil || evStart.IsZero() {
				continue // skip malformed events
			}
			evEnd, err := event.DateTimeEnd(loc)
			if err != nil || !evEnd.After(evStart) {
				continue
			}
			length := evEnd.Sub(evStart)

			set, err := event.RecurrenceSet(loc)
			if err != nil {
				continue
			}
			for _, s := range occurrences(set, evStart, start.Add(-length), end) {
				e := s.Add(length)
				if s.Before(end) && e.After(start) {
					busy = append(busy, availability.BusyInterval{Start: s, End: e})
				}
			}
		}
	}
	return busy, nil
}

// occurrences lists the starts of a possibly recurring event falling in
// [from, to]. A nil set means the event happens once.
func occurrences(set *rrule.Set, first, from, to time.Time) []time.Time {
	if set == nil {
		return []time.Time{first}
	}
	return set.Between(from, to, true)
}

func skipped(event ical.Event) bool {
	if status, _ := event.Props.Text(ical.PropStatus); strings.EqualFold(status, "CANCELLED") {
		return true
	}
	if transp, _ := event.Props.Text(ical.PropTransparency); strings.EqualFold(transp, "TRANSPARENT") {
		return true
	}
	return false
}
