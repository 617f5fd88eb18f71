package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"smartscheduler/internal/db"
)

type JobStore interface {
	PendingIDsToExpire(ctx context.Context, createdBefore time.Time) ([]string, error)
	ApprovedIDsPastEndTime(ctx context.Context) ([]string, error)
	UpdateStatuses(ctx context.Context, ids []string, from, to string) (int64, error)
}

type JobService struct {
	Repo       JobStore
	pendingTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewJobService(repo JobStore, pendingTTL time.Duration, logger *slog.Logger) *JobService {
	return &JobService{Repo: repo, pendingTTL: pendingTTL, logger: logger, now: time.Now}
}

// ExpireStalePending marks pending requests as expired once their start time
// has passed or they have waited longer than the pending TTL.
func (s *JobService) ExpireStalePending(ctx context.Context) error {
	ids, err := s.Repo.PendingIDsToExpire(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending requests: %w", err)
	}
	return s.transition(ctx, ids, db.StatusPending, db.StatusExpired)
}

// FinishPastApproved marks approved requests whose meeting ended as finished.
func (s *JobService) FinishPastApproved(ctx context.Context) error {
	ids, err := s.Repo.ApprovedIDsPastEndTime(ctx)
	if err != nil {
		return fmt.Errorf("cron job: failed to get approved requests past end time: %w", err)
	}
	return s.transition(ctx, ids, db.StatusApproved, db.StatusFinished)
}

func (s *JobService) transition(ctx context.Context, ids []string, from, to string) error {
	if len(ids) == 0 {
		s.logger.Debug("cron job: nothing to update", "status", to)
		return nil
	}
	n, err := s.Repo.UpdateStatuses(ctx, ids, from, to)
	if err != nil {
		return fmt.Errorf("cron job: failed to update booking request statuses: %w", err)
	}
	s.logger.Info("cron job: updated booking requests", "from", from, "to", to, "count", n)
	return nil
}

// Register adds both jobs to c with the given specs.
func (s *JobService) Register(c *cron.Cron, expireSpec, finishSpec string) error {
	run := func(name string, job func(context.Context) error) func() {
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := job(ctx); err != nil {
				s.logger.Error("cron job failed", "job", name, "error", err)
			}
		}
	}
	if _, err := c.AddFunc(expireSpec, run("expire-pending", s.ExpireStalePending)); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expireSpec, err)
	}
	if _, err := c.AddFunc(finishSpec, run("finish-approved", s.FinishPastApproved)); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", finishSpec, err)
	}
	return nil
}
