package availability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPolicy   = errors.New("invalid booking method")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNoParticipants  = errors.New("no participants")
	ErrInvalidDuration = errors.New("invalid slot duration")
)

// Request is one availability computation.
type Request struct {
	Date            Date
	Scope           Scope
	Participants    []string
	DurationMinutes int
	Policy          Policy
}

// AvailableSlot is a bookable slot together with the participants free in it.
type AvailableSlot struct {
	Slot
	Free []string
}

// Result holds the resolved window and the available slots in generation order.
type Result struct {
	Window Window
	Slots  []AvailableSlot
}

// Labels returns the HH:MM start labels of the available slots at the
// window's offset.
func (r *Result) Labels() []string {
	labels := make([]string, 0, len(r.Slots))
	for _, s := range r.Slots {
		labels = append(labels, s.Label(r.Window.Location))
	}
	return labels
}

// Find returns the available slot starting at the given HH:MM label.
func (r *Result) Find(label string) (AvailableSlot, bool) {
	for _, s := range r.Slots {
		if s.Label(r.Window.Location) == label {
			return s, true
		}
	}
	return AvailableSlot{}, false
}

// Engine computes available slots. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	schedules     ScheduleStore
	collector     *Collector
	defaultOffset int
}

// NewEngine wires an engine. defaultOffset, in minutes east of UTC, applies to
// scopes without a stored offset.
func NewEngine(schedules ScheduleStore, collector *Collector, defaultOffset int) *Engine {
	return &Engine{schedules: schedules, collector: collector, defaultOffset: defaultOffset}
}

// DefaultLocation is the zone used when a scope has no offset of its own.
func (e *Engine) DefaultLocation() *time.Location { return FixedOffset(e.defaultOffset) }

// Compute runs the four phases for req. Missing configuration and per
// participant provider failures are absorbed; only an invalid request or a
// failing schedule store is returned as an error.
func (e *Engine) Compute(ctx context.Context, req Request) (*Result, error) {
	if req.Policy != PolicyAll && req.Policy != PolicyAny {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, req.Policy)
	}
	if len(req.Participants) == 0 {
		return nil, ErrNoParticipants
	}
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, req.DurationMinutes)
	}

	cfg, err := e.schedules.ScheduleConfig(ctx, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("loading schedule for %s: %w", req.Scope, err)
	}
	offset := e.defaultOffset
	var days WeeklySchedule
	if cfg != nil {
		days = cfg.Days
		if cfg.OffsetMinutes != nil {
			offset = *cfg.OffsetMinutes
		}
	}
	loc := FixedOffset(offset)

	window := ResolveWindow(days, req.Date, loc)
	result := &Result{Window: window}
	if window.Empty() {
		return result, nil
	}

	dayStart, dayEnd := req.Date.Bounds(loc)
	busy := e.collector.Collect(ctx, req.Participants, dayStart, dayEnd)

	participants := make([]ParticipantAvailability, 0, len(busy))
	seen := make(map[string]bool, len(req.Participants))
	for _, id := range req.Participants {
		if seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, ParticipantAvailability{ParticipantID: id, Busy: busy[id]})
	}

	for slot := range GenerateSlots(window, req.DurationMinutes) {
		if Decide(slot, participants, req.Policy) {
			result.Slots = append(result.Slots, AvailableSlot{Slot: slot, Free: FreeParticipants(slot, participants)})
		}
	}
	return result, nil
}
