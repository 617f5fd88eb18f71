package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartscheduler/internal/availability"
)

var ErrUnknownProvider = errors.New("unknown calendar provider")

// Router sends each busy interval lookup to the provider registered for the
// credential's kind.
type Router struct {
	providers map[availability.ProviderKind]availability.CalendarProvider
}

func NewRouter() *Router {
	return &Router{providers: make(map[availability.ProviderKind]availability.CalendarProvider)}
}

// Register must be called before the router is shared.
func (r *Router) Register(kind availability.ProviderKind, p availability.CalendarProvider) *Router {
	r.providers[kind] = p
	return r
}

func (r *Router) BusyIntervals(ctx context.Context, cred availability.Credential, start, end time.Time) ([]availability.BusyInterval, error) {
	p, ok := r.providers[cred.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cred.Provider)
	}
	return p.BusyIntervals(ctx, cred, start, end)
}
