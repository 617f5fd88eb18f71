package availability

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeSchedules struct {
	configs map[Scope]*ScheduleConfig
	err     error
}

func (f *fakeSchedules) ScheduleConfig(_ context.Context, scope Scope) (*ScheduleConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.configs[scope], nil
}

type fakeCredentials struct {
	creds map[string]*Credential
	err   map[string]error
}

func (f *fakeCredentials) Credential(_ context.Context, id string) (*Credential, error) {
	if err := f.err[id]; err != nil {
		return nil, err
	}
	return f.creds[id], nil
}

type fakeProvider struct {
	mu    sync.Mutex
	busy  map[string][]BusyInterval
	err   map[string]error
	block map[string]bool
	calls []string
	from  time.Time
	to    time.Time
}

func (f *fakeProvider) BusyIntervals(ctx context.Context, cred Credential, start, end time.Time) ([]BusyInterval, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cred.ParticipantID)
	f.from, f.to = start, end
	f.mu.Unlock()
	if f.block[cred.ParticipantID] {
		// ignores ctx on purpose
		time.Sleep(time.Hour)
	}
	if err := f.err[cred.ParticipantID]; err != nil {
		return nil, err
	}
	return f.busy[cred.ParticipantID], nil
}

func credsFor(ids ...string) *fakeCredentials {
	f := &fakeCredentials{creds: map[string]*Credential{}}
	for _, id := range ids {
		f.creds[id] = &Credential{ParticipantID: id, Provider: ProviderGoogle, AccessToken: "tok-" + id}
	}
	return f
}

var errProvider = errors.New("provider unavailable")

var jst = FixedOffset(9 * 60)

// at returns an instant on 2025-06-02 (a Monday) at hh:mm JST.
func at(hh, mm int) time.Time {
	return time.Date(2025, 6, 2, hh, mm, 0, 0, jst)
}

func boolPtr(b bool) *bool { return &b }
