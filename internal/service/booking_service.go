package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
	"smartscheduler/internal/google"
	"smartscheduler/internal/repository"
)

var (
	ErrSlotUnavailable    = errors.New("requested time is not available")
	ErrBookingNotFound    = errors.New("booking request not found")
	ErrNotPending         = errors.New("booking request is not pending")
	ErrNoGoogleCredential = errors.New("host has no google calendar connected")
	ErrCalendarFailure    = errors.New("google calendar request failed")
)

type BookingStore interface {
	Create(ctx context.Context, b *db.BookingRequest) error
	GetByID(ctx context.Context, id string) (*db.BookingRequest, error)
	ListByHost(ctx context.Context, hostID, status string) ([]db.BookingRequest, error)
	MarkApproved(ctx context.Context, id, eventID, meetLink string) error
	MarkRejected(ctx context.Context, id string) error
	HasOverlap(ctx context.Context, hostID string, start, end time.Time, statuses ...string) (bool, error)
}

type HostLookup interface {
	GetByID(ctx context.Context, id string) (*db.Host, error)
}

type EventCreator interface {
	CreateEvent(ctx context.Context, cred availability.Credential, req google.EventRequest) (*google.CreatedEvent, error)
}

type BookingNotifier interface {
	BookingReceived(b db.BookingRequest, host *db.Host, title string)
	BookingApproved(b db.BookingRequest, host *db.Host, title string)
	BookingRejected(b db.BookingRequest, host *db.Host, title string)
}

type BookingService struct {
	availability *AvailabilityService
	menus        MeetingTypeStore
	bookings     BookingStore
	hosts        HostLookup
	credentials  availability.CredentialStore
	events       EventCreator
	notifier     BookingNotifier
	logger       *slog.Logger
}

type BookingDeps struct {
	Availability *AvailabilityService
	Menus        MeetingTypeStore
	Bookings     BookingStore
	Hosts        HostLookup
	Credentials  availability.CredentialStore
	Events       EventCreator
	Notifier     BookingNotifier
	Logger       *slog.Logger
}

func NewBookingService(d BookingDeps) *BookingService {
	return &BookingService{
		availability: d.Availability,
		menus:        d.Menus,
		bookings:     d.Bookings,
		hosts:        d.Hosts,
		credentials:  d.Credentials,
		events:       d.Events,
		notifier:     d.Notifier,
		logger:       d.Logger,
	}
}

// Request records a guest's booking request for an available slot. The slot
// is recomputed so a stale page cannot book a taken time.
func (s *BookingService) Request(ctx context.Context, in entities.BookingRequestInput) (*db.BookingRequest, error) {
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.GuestEmail = strings.TrimSpace(in.GuestEmail)
	if in.GuestName == "" {
		return nil, invalid("guest_name is required")
	}
	if _, err := mail.ParseAddress(in.GuestEmail); err != nil {
		return nil, invalid("guest_email is not a valid address")
	}
	if _, err := availability.ParseClock(in.Time); err != nil {
		return nil, invalid("time must be HH:MM")
	}

	c, err := s.availability.Compute(ctx, entities.SlotsQuery{HostID: in.HostID, MenuSlug: in.Slug, Date: in.Date})
	if err != nil {
		return nil, err
	}
	slot, ok := c.Result.Find(in.Time)
	if !ok {
		return nil, ErrSlotUnavailable
	}
	hostID, err := s.assignHost(ctx, c.Request, slot)
	if err != nil {
		return nil, err
	}

	b := &db.BookingRequest{
		ID:         uuid.NewString(),
		HostUserID: hostID,
		GuestName:  in.GuestName,
		GuestEmail: in.GuestEmail,
		Note:       strings.TrimSpace(in.Note),
		StartTime:  slot.Start,
		EndTime:    slot.End,
		Status:     db.StatusPending,
	}
	if mt := c.MeetingType; mt != nil {
		mtID, wsID := mt.ID, mt.WorkspaceID
		b.MeetingTypeID = &mtID
		b.WorkspaceID = &wsID
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	s.logger.Info("booking request created", "booking", b.ID, "host", b.HostUserID, "start", b.StartTime)

	host := s.host(ctx, b.HostUserID)
	s.notifier.BookingReceived(*b, host, title(c.MeetingType, host))
	return b, nil
}

// assignHost picks the host for a slot, skipping participants that already
// hold a pending or approved request overlapping it. Under ANY the first clear
// free participant hosts; under ALL every participant must be clear and the
// first listed one hosts.
func (s *BookingService) assignHost(ctx context.Context, req availability.Request, slot availability.AvailableSlot) (string, error) {
	candidates := req.Participants
	if req.Policy == availability.PolicyAny {
		candidates = slot.Free
	}
	for _, id := range candidates {
		taken, err := s.bookings.HasOverlap(ctx, id, slot.Start, slot.End, db.StatusPending, db.StatusApproved)
		if err != nil {
			return "", err
		}
		switch {
		case req.Policy == availability.PolicyAny && !taken:
			return id, nil
		case req.Policy == availability.PolicyAll && taken:
			return "", ErrSlotUnavailable
		}
	}
	if req.Policy == availability.PolicyAll && len(req.Participants) > 0 {
		return req.Participants[0], nil
	}
	return "", ErrSlotUnavailable
}

func (s *BookingService) host(ctx context.Context, id string) *db.Host {
	h, err := s.hosts.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("could not load host", "host", id, "error", err)
		return nil
	}
	return h
}

func (s *BookingService) meetingType(ctx context.Context, b *db.BookingRequest) *db.MeetingType {
	if b.MeetingTypeID == nil {
		return nil
	}
	mt, err := s.menus.GetByID(ctx, *b.MeetingTypeID)
	if err != nil {
		s.logger.Warn("could not load meeting type", "meeting_type", *b.MeetingTypeID, "error", err)
		return nil
	}
	return mt
}

func title(mt *db.MeetingType, host *db.Host) string {
	switch {
	case mt != nil && mt.Title != "":
		return mt.Title
	case host != nil && host.Name != "":
		return "Meeting with " + host.Name
	default:
		return "Meeting"
	}
}

// pendingOf loads a request owned by hostID that is still pending.
func (s *BookingService) pendingOf(ctx context.Context, hostID, id string) (*db.BookingRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.HostUserID != hostID {
		return nil, ErrBookingNotFound
	}
	if b.Status != db.StatusPending {
		return nil, ErrNotPending
	}
	return b, nil
}

// Approve creates the Google Calendar event with a Meet link for a pending
// request and confirms it to the guest. If the event cannot be created the
// request stays pending.
func (s *BookingService) Approve(ctx context.Context, hostID, id string) (*db.BookingRequest, error) {
	b, err := s.pendingOf(ctx, hostID, id)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentials.Credential(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil || cred.Provider != availability.ProviderGoogle {
		return nil, ErrNoGoogleCredential
	}
	taken, err := s.bookings.HasOverlap(ctx, hostID, b.StartTime, b.EndTime, db.StatusApproved)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotUnavailable
	}

	host := s.host(ctx, hostID)
	t := title(s.meetingType(ctx, b), host)
	desc := fmt.Sprintf("Booked by %s <%s>", b.GuestName, b.GuestEmail)
	if b.Note != "" {
		desc += "\n\n" + b.Note
	}

	ev, err := s.events.CreateEvent(ctx, *cred, google.EventRequest{
		Summary:       t,
		Description:   desc,
		Start:         b.StartTime,
		End:           b.EndTime,
		AttendeeEmail: b.GuestEmail,
		AttendeeName:  b.GuestName,
	})
	if err != nil {
		s.logger.Error("calendar event creation failed", "booking", b.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCalendarFailure, err)
	}

	if err := s.bookings.MarkApproved(ctx, b.ID, ev.ID, ev.MeetLink); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrNotPending
		}
		return nil, err
	}
	b.Status = db.StatusApproved
	b.CalendarEventID = ev.ID
	b.MeetLink = ev.MeetLink
	s.logger.Info("booking request approved", "booking", b.ID, "event", ev.ID)

	s.notifier.BookingApproved(*b, host, t)
	return b, nil
}

func (s *BookingService) Reject(ctx context.Context, hostID, id string) (*db.BookingRequest, error) {
	b, err := s.pendingOf(ctx, hostID, id)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.MarkRejected(ctx, b.ID); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrNotPending
		}
		return nil, err
	}
	b.Status = db.StatusRejected
	s.logger.Info("booking request rejected", "booking", b.ID)

	host := s.host(ctx, hostID)
	s.notifier.BookingRejected(*b, host, title(s.meetingType(ctx, b), host))
	return b, nil
}

var listableStatuses = map[string]bool{
	"":                true,
	db.StatusPending:  true,
	db.StatusApproved: true,
	db.StatusRejected: true,
	db.StatusExpired:  true,
	db.StatusFinished: true,
}

func (s *BookingService) List(ctx context.Context, hostID, status string) (*entities.BookingRequestsList, error) {
	if !listableStatuses[status] {
		return nil, invalid("unknown status %q", status)
	}
	rows, err := s.bookings.ListByHost(ctx, hostID, status)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingRequestsList{Total: len(rows), Requests: make([]entities.BookingRequestResponse, 0, len(rows))}
	for _, b := range rows {
		list.Requests = append(list.Requests, ToBookingResponse(b))
	}
	return list, nil
}

func ToBookingResponse(b db.BookingRequest) entities.BookingRequestResponse {
	return entities.BookingRequestResponse{
		ID:            b.ID,
		MeetingTypeID: b.MeetingTypeID,
		HostUserID:    b.HostUserID,
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		Note:          b.Note,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		MeetLink:      b.MeetLink,
		CreatedAt:     b.CreatedAt,
	}
}
