package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"smartscheduler/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// PendingIDsToExpire returns pending requests whose start has passed or that
// were created before the given cutoff.
func (r *JobRepository) PendingIDsToExpire(ctx context.Context, createdBefore time.Time) ([]string, error) {
	return r.queryIDs(ctx,
		`SELECT id FROM booking_requests
		 WHERE status = $1 AND (start_time < NOW() OR created_at < $2)`,
		db.StatusPending, createdBefore,
	)
}

// ApprovedIDsPastEndTime returns approved requests whose meeting is over.
func (r *JobRepository) ApprovedIDsPastEndTime(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx,
		`SELECT id FROM booking_requests WHERE status = $1 AND end_time < NOW()`,
		db.StatusApproved,
	)
}

func (r *JobRepository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying booking requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking request ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateStatuses moves the given requests from one status to another and
// returns how many rows changed. Rows no longer in the from status are left alone.
func (r *JobRepository) UpdateStatuses(ctx context.Context, ids []string, from, to string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE booking_requests SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`,
		to, pq.Array(ids), from,
	)
	if err != nil {
		return 0, fmt.Errorf("error updating booking request statuses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}
	return n, nil
}
