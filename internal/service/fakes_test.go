package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/google"
	"smartscheduler/internal/repository"
)

var jst = availability.FixedOffset(540)

// 2025-06-02 is a Monday.
func at(hh, mm int) time.Time { return time.Date(2025, 6, 2, hh, mm, 0, 0, jst) }

type fakeMenus struct {
	bySlug map[string]*db.MeetingType
	err    error
}

func (f *fakeMenus) GetBySlug(_ context.Context, slug string) (*db.MeetingType, error) {
	return f.bySlug[slug], f.err
}

func (f *fakeMenus) GetByID(_ context.Context, id string) (*db.MeetingType, error) {
	for _, mt := range f.bySlug {
		if mt.ID == id {
			return mt, f.err
		}
	}
	return nil, f.err
}

type fakeSchedules struct {
	configs map[availability.Scope]*availability.ScheduleConfig
	saved   map[availability.Scope]availability.WeeklySchedule
	offsets map[availability.Scope]*int
}

func (f *fakeSchedules) ScheduleConfig(_ context.Context, scope availability.Scope) (*availability.ScheduleConfig, error) {
	return f.configs[scope], nil
}

func (f *fakeSchedules) GetSetting(_ context.Context, scope availability.Scope) (*db.ScheduleSetting, error) {
	return nil, nil
}

func (f *fakeSchedules) SaveSchedule(_ context.Context, scope availability.Scope, days availability.WeeklySchedule, offset *int) error {
	if f.saved == nil {
		f.saved = map[availability.Scope]availability.WeeklySchedule{}
		f.offsets = map[availability.Scope]*int{}
	}
	f.saved[scope] = days
	f.offsets[scope] = offset
	return nil
}

type fakeCreds struct {
	creds map[string]*availability.Credential
	saved []availability.Credential
}

func (f *fakeCreds) Credential(_ context.Context, id string) (*availability.Credential, error) {
	return f.creds[id], nil
}

func (f *fakeCreds) SaveCredential(_ context.Context, c availability.Credential) error {
	f.saved = append(f.saved, c)
	return nil
}

type fakeProvider struct {
	busy map[string][]availability.BusyInterval
}

func (f *fakeProvider) BusyIntervals(_ context.Context, cred availability.Credential, _, _ time.Time) ([]availability.BusyInterval, error) {
	return f.busy[cred.ParticipantID], nil
}

type fakeBookings struct {
	mu       sync.Mutex
	byID     map[string]*db.BookingRequest
	approved map[string]string
	err      error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byID: map[string]*db.BookingRequest{}, approved: map[string]string{}}
}

func (f *fakeBookings) Create(_ context.Context, b *db.BookingRequest) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (*db.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListByHost(_ context.Context, hostID, status string) ([]db.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.BookingRequest
	for _, b := range f.byID {
		if b.HostUserID == hostID && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookings) MarkApproved(_ context.Context, id, eventID, meetLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.byID[id]
	if b == nil || b.Status != db.StatusPending {
		return repository.ErrNotPending
	}
	b.Status = db.StatusApproved
	b.CalendarEventID = eventID
	b.MeetLink = meetLink
	return nil
}

func (f *fakeBookings) MarkRejected(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.byID[id]
	if b == nil || b.Status != db.StatusPending {
		return repository.ErrNotPending
	}
	b.Status = db.StatusRejected
	return nil
}

func (f *fakeBookings) HasOverlap(_ context.Context, hostID string, start, end time.Time, statuses ...string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if b.HostUserID != hostID || !b.StartTime.Before(end) || !b.EndTime.After(start) {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeHosts map[string]*db.Host

func (f fakeHosts) GetByID(_ context.Context, id string) (*db.Host, error) { return f[id], nil }

type fakeEvents struct {
	requests []google.EventRequest
	err      error
}

func (f *fakeEvents) CreateEvent(_ context.Context, _ availability.Credential, req google.EventRequest) (*google.CreatedEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &google.CreatedEvent{ID: "evt-1", MeetLink: "https://meet.google.com/abc-defg-hij"}, nil
}

type notification struct {
	kind  string
	guest string
	title string
}

type fakeNotifier struct{ sent []notification }

func (f *fakeNotifier) BookingReceived(b db.BookingRequest, _ *db.Host, title string) {
	f.sent = append(f.sent, notification{"received", b.GuestEmail, title})
}

func (f *fakeNotifier) BookingApproved(b db.BookingRequest, _ *db.Host, title string) {
	f.sent = append(f.sent, notification{"approved", b.GuestEmail, title})
}

func (f *fakeNotifier) BookingRejected(b db.BookingRequest, _ *db.Host, title string) {
	f.sent = append(f.sent, notification{"rejected", b.GuestEmail, title})
}

var errCalendar = errors.New("calendar unavailable")
