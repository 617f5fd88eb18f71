package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"smartscheduler/internal/db"
)

type MeetingTypeRepository struct {
	DB *sql.DB
}

func NewMeetingTypeRepository(db *sql.DB) *MeetingTypeRepository {
	return &MeetingTypeRepository{DB: db}
}

const meetingTypeSelect = `
	SELECT mt.id, mt.workspace_id, mt.title, mt.slug, mt.duration_minutes, mt.booking_method, mt.created_at,
	       COALESCE(array_agg(mh.user_id ORDER BY mh.position, mh.user_id) FILTER (WHERE mh.user_id IS NOT NULL), '{}')
	FROM meeting_types mt
	LEFT JOIN meeting_hosts mh ON mh.meeting_type_id = mt.id`

func (r *MeetingTypeRepository) GetBySlug(ctx context.Context, slug string) (*db.MeetingType, error) {
	return r.getOne(ctx, meetingTypeSelect+` WHERE mt.slug = $1 GROUP BY mt.id`, slug)
}

// GetByID returns nil for ids that are not UUIDs, which cannot exist.
func (r *MeetingTypeRepository) GetByID(ctx context.Context, id string) (*db.MeetingType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return r.getOne(ctx, meetingTypeSelect+` WHERE mt.id = $1 GROUP BY mt.id`, id)
}

func (r *MeetingTypeRepository) getOne(ctx context.Context, query string, arg string) (*db.MeetingType, error) {
	var mt db.MeetingType
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&mt.ID, &mt.WorkspaceID, &mt.Title, &mt.Slug, &mt.DurationMinutes, &mt.BookingMethod, &mt.CreatedAt,
		pq.Array(&mt.HostIDs),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying meeting type %q: %w", arg, err)
	}
	return &mt, nil
}

// IsWorkspaceHost reports whether the host is listed on any meeting type of
// the workspace.
func (r *MeetingTypeRepository) IsWorkspaceHost(ctx context.Context, workspaceID, hostID string) (bool, error) {
	var member bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM meeting_types mt
			JOIN meeting_hosts mh ON mh.meeting_type_id = mt.id
			WHERE mt.workspace_id = $1 AND mh.user_id = $2
		)`,
		workspaceID, hostID,
	).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("error checking workspace membership: %w", err)
	}
	return member, nil
}

// Create stores the meeting type and its hosts in the given order.
func (r *MeetingTypeRepository) Create(ctx context.Context, mt *db.MeetingType) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meeting_types (id, workspace_id, title, slug, duration_minutes, booking_method)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		mt.ID, mt.WorkspaceID, mt.Title, mt.Slug, mt.DurationMinutes, mt.BookingMethod,
	)
	if err != nil {
		return fmt.Errorf("error inserting meeting type: %w", err)
	}
	for i, hostID := range mt.HostIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meeting_hosts (meeting_type_id, user_id, position) VALUES ($1, $2, $3)`,
			mt.ID, hostID, i,
		); err != nil {
			return fmt.Errorf("error inserting meeting host %s: %w", hostID, err)
		}
	}
	return tx.Commit()
}
