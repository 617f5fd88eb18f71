package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"smartscheduler/internal/db"
)

var (
	// ErrNotPending is returned when a status transition finds the request
	// already decided.
	ErrNotPending = errors.New("booking request is not pending")
	// ErrSlotTaken is returned when the host already holds a live request
	// starting at the same instant.
	ErrSlotTaken = errors.New("host already has a request for this slot")
)

const uniqueViolation = "23505"

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

const bookingColumns = `id, meeting_type_id, workspace_id, host_user_id, guest_name, guest_email, note,
	start_time, end_time, status, calendar_event_id, meet_link, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*db.BookingRequest, error) {
	var (
		b                        db.BookingRequest
		meetingType, workspaceID sql.NullString
	)
	err := row.Scan(&b.ID, &meetingType, &workspaceID, &b.HostUserID, &b.GuestName, &b.GuestEmail, &b.Note,
		&b.StartTime, &b.EndTime, &b.Status, &b.CalendarEventID, &b.MeetLink, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if meetingType.Valid {
		b.MeetingTypeID = &meetingType.String
	}
	if workspaceID.Valid {
		b.WorkspaceID = &workspaceID.String
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *db.BookingRequest) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO booking_requests (id, meeting_type_id, workspace_id, host_user_id, guest_name, guest_email,
		                               note, start_time, end_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		b.ID, b.MeetingTypeID, b.WorkspaceID, b.HostUserID, b.GuestName, b.GuestEmail,
		b.Note, b.StartTime, b.EndTime, b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("error inserting booking request: %w", err)
	}
	return nil
}

// HasOverlap reports whether the host has a request in one of the given
// statuses overlapping [start, end).
func (r *BookingRepository) HasOverlap(ctx context.Context, hostID string, start, end time.Time, statuses ...string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM booking_requests
			WHERE host_user_id = $1
			  AND start_time < $3
			  AND end_time > $2
			  AND status = ANY($4)
		)`,
		hostID, start, end, pq.Array(statuses),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking overlapping requests: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*db.BookingRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	b, err := scanBooking(r.DB.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM booking_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking request %s: %w", id, err)
	}
	return b, nil
}

// ListByHost returns the host's requests, newest start first. An empty
// status lists every request.
func (r *BookingRepository) ListByHost(ctx context.Context, hostID, status string) ([]db.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE host_user_id = $1`
	args := []any{hostID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY start_time DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying booking requests: %w", err)
	}
	defer rows.Close()

	var list []db.BookingRequest
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking request: %w", err)
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return list, nil
}

// MarkApproved moves a pending request to approved and records the calendar
// event created for it.
func (r *BookingRepository) MarkApproved(ctx context.Context, id, eventID, meetLink string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE booking_requests
		 SET status = $2, calendar_event_id = $3, meet_link = $4, updated_at = NOW()
		 WHERE id = $1 AND status = $5`,
		id, db.StatusApproved, eventID, meetLink, db.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("error approving booking request %s: %w", id, err)
	}
	return expectOneRow(res)
}

func (r *BookingRepository) MarkRejected(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE booking_requests SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, db.StatusRejected, db.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("error rejecting booking request %s: %w", id, err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}
