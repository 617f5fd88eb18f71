package service

import (
	"context"
	"errors"
	"fmt"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrMeetingTypeNotFound = errors.New("meeting type not found")
	ErrHostNotFound        = errors.New("host not found")
	ErrNoHosts             = errors.New("meeting type has no hosts")
)

type MeetingTypeStore interface {
	GetBySlug(ctx context.Context, slug string) (*db.MeetingType, error)
	GetByID(ctx context.Context, id string) (*db.MeetingType, error)
}

type AvailabilityService struct {
	engine          *availability.Engine
	menus           MeetingTypeStore
	hosts           HostLookup
	defaultDuration int
}

func NewAvailabilityService(engine *availability.Engine, menus MeetingTypeStore, hosts HostLookup, defaultDuration int) *AvailabilityService {
	return &AvailabilityService{engine: engine, menus: menus, hosts: hosts, defaultDuration: defaultDuration}
}

// Computation is a resolved slot query together with its result.
type Computation struct {
	Request     availability.Request
	MeetingType *db.MeetingType
	Result      *availability.Result
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// resolve turns a query into an engine request. Exactly one of the individual
// scope (host) or the group scope (meeting type) must be named.
func (s *AvailabilityService) resolve(ctx context.Context, q entities.SlotsQuery) (availability.Request, *db.MeetingType, error) {
	var req availability.Request

	date, err := availability.ParseDate(q.Date)
	if err != nil {
		return req, nil, invalid("date must be YYYY-MM-DD")
	}
	req.Date = date

	if q.DurationMinutes < 0 {
		return req, nil, invalid("duration must be positive")
	}

	individual := q.HostID != ""
	group := q.MenuSlug != "" || q.MeetingTypeID != ""
	if individual == group {
		return req, nil, invalid("exactly one of hostId or menu/meetingTypeId is required")
	}

	if individual {
		host, err := s.hosts.GetByID(ctx, q.HostID)
		if err != nil {
			return req, nil, fmt.Errorf("loading host: %w", err)
		}
		if host == nil {
			return req, nil, ErrHostNotFound
		}
		req.Participants = []string{q.HostID}
		req.Scope = availability.Scope{Kind: availability.ScopeUser, ID: q.HostID}
		if q.OrgID != "" {
			req.Scope = availability.Scope{Kind: availability.ScopeWorkspace, ID: q.OrgID}
		}
		req.DurationMinutes = s.defaultDuration
		req.Policy = availability.PolicyAll
		if q.Method != "" {
			if req.Policy, err = availability.ParsePolicy(q.Method); err != nil {
				return req, nil, invalid("method must be and or or")
			}
		}
		if q.DurationMinutes > 0 {
			req.DurationMinutes = q.DurationMinutes
		}
		return req, nil, nil
	}

	var mt *db.MeetingType
	if q.MenuSlug != "" {
		mt, err = s.menus.GetBySlug(ctx, q.MenuSlug)
	} else {
		mt, err = s.menus.GetByID(ctx, q.MeetingTypeID)
	}
	if err != nil {
		return req, nil, fmt.Errorf("loading meeting type: %w", err)
	}
	if mt == nil {
		return req, nil, ErrMeetingTypeNotFound
	}
	if len(mt.HostIDs) == 0 {
		return req, mt, ErrNoHosts
	}

	method := mt.BookingMethod
	if q.Method != "" {
		method = q.Method
	}
	if req.Policy, err = availability.ParsePolicy(method); err != nil {
		return req, mt, invalid("method must be and or or")
	}
	req.DurationMinutes = mt.DurationMinutes
	if q.DurationMinutes > 0 {
		req.DurationMinutes = q.DurationMinutes
	}
	req.Participants = mt.HostIDs
	req.Scope = availability.Scope{Kind: availability.ScopeWorkspace, ID: mt.WorkspaceID}
	return req, mt, nil
}

func (s *AvailabilityService) Compute(ctx context.Context, q entities.SlotsQuery) (*Computation, error) {
	req, mt, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Compute(ctx, req)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidDuration) ||
			errors.Is(err, availability.ErrInvalidPolicy) ||
			errors.Is(err, availability.ErrNoParticipants) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, err
	}
	return &Computation{Request: req, MeetingType: mt, Result: res}, nil
}

// Slots returns the HH:MM labels of the available slots for the query.
func (s *AvailabilityService) Slots(ctx context.Context, q entities.SlotsQuery) (*entities.SlotsResponse, error) {
	c, err := s.Compute(ctx, q)
	if err != nil {
		return nil, err
	}
	_, offsetSeconds := c.Request.Date.Midnight(c.Result.Window.Location).Zone()
	return &entities.SlotsResponse{
		Date:            c.Request.Date.String(),
		UTCOffset:       availability.FormatOffset(offsetSeconds / 60),
		DurationMinutes: c.Request.DurationMinutes,
		Method:          string(c.Request.Policy),
		Slots:           c.Result.Labels(),
	}, nil
}

func (s *AvailabilityService) Menu(ctx context.Context, slug string) (*entities.MenuResponse, error) {
	mt, err := s.menus.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("loading meeting type: %w", err)
	}
	if mt == nil {
		return nil, ErrMeetingTypeNotFound
	}
	return &entities.MenuResponse{
		ID:              mt.ID,
		Title:           mt.Title,
		Slug:            mt.Slug,
		DurationMinutes: mt.DurationMinutes,
		Method:          mt.BookingMethod,
		HostCount:       len(mt.HostIDs),
	}, nil
}
