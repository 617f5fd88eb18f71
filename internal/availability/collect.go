package availability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultProviderTimeout bounds one participant's credential lookup and
// provider call.
const DefaultProviderTimeout = 5 * time.Second

// Collector gathers busy intervals for a set of participants. Failures are
// per participant: they are logged and the participant contributes no busy
// intervals.
type Collector struct {
	Credentials CredentialStore
	Provider    CalendarProvider
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewCollector returns a Collector. A nil logger discards output.
func NewCollector(creds CredentialStore, provider CalendarProvider, timeout time.Duration, logger *slog.Logger) *Collector {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{Credentials: creds, Provider: provider, Timeout: timeout, Logger: logger}
}

// maxConcurrentLookups caps the provider calls in flight for one request.
const maxConcurrentLookups = 16

type collectResult struct {
	busy []BusyInterval
	err  error
}

// Collect queries every participant concurrently for busy intervals within
// [start, end] and returns once all lookups have settled. Every participant
// has an entry in the result, possibly empty.
func (c *Collector) Collect(ctx context.Context, participantIDs []string, start, end time.Time) map[string][]BusyInterval {
	out := make(map[string][]BusyInterval, len(participantIDs))
	ids := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		if _, seen := out[id]; !seen {
			out[id] = nil
			ids = append(ids, id)
		}
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(maxConcurrentLookups)
	for _, id := range ids {
		g.Go(func() error {
			busy, err := c.collectOne(ctx, id, start, end)
			if err != nil {
				c.Logger.Warn("busy interval lookup failed, treating participant as free",
					"participant", id, "error", err)
				busy = nil
			}
			mu.Lock()
			out[id] = busy
			mu.Unlock()
			return nil
		})
	}
	// Lookup failures are absorbed above, so Wait never reports one.
	_ = g.Wait()
	return out
}

// collectOne runs the lookup in its own goroutine so that the timeout holds
// even when a provider ignores its context.
func (c *Collector) collectOne(ctx context.Context, id string, start, end time.Time) ([]BusyInterval, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	done := make(chan collectResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- collectResult{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		busy, err := c.lookup(callCtx, id, start, end)
		done <- collectResult{busy: busy, err: err}
	}()

	select {
	case r := <-done:
		return r.busy, r.err
	case <-callCtx.Done():
		return nil, fmt.Errorf("lookup for %s: %w", id, callCtx.Err())
	}
}

func (c *Collector) lookup(ctx context.Context, id string, start, end time.Time) ([]BusyInterval, error) {
	cred, err := c.Credentials.Credential(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	if cred == nil {
		c.Logger.Debug("no calendar credentials, participant contributes no busy intervals", "participant", id)
		return nil, nil
	}
	if c.Provider == nil {
		return nil, errors.New("no calendar provider configured")
	}
	raw, err := c.Provider.BusyIntervals(ctx, *cred, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying %s calendar: %w", cred.Provider, err)
	}
	busy := make([]BusyInterval, 0, len(raw))
	for _, b := range raw {
		if !b.Valid() {
			c.Logger.Debug("skipping malformed busy interval", "participant", id, "start", b.Start, "end", b.End)
			continue
		}
		busy = append(busy, b)
	}
	return busy, nil
}
