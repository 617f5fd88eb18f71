package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
)

type ScheduleRepository struct {
	DB     *sql.DB
	logger *slog.Logger
}

func NewScheduleRepository(db *sql.DB, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{DB: db, logger: logger}
}

func (r *ScheduleRepository) GetSetting(ctx context.Context, scope availability.Scope) (*db.ScheduleSetting, error) {
	s := db.ScheduleSetting{ScopeType: string(scope.Kind), ScopeID: scope.ID}
	var offset sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		`SELECT business_hours, utc_offset_minutes, updated_at FROM schedule_settings
		 WHERE scope_type = $1 AND scope_id = $2`,
		s.ScopeType, s.ScopeID,
	).Scan(&s.BusinessHours, &offset, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying schedule settings for %s: %w", scope, err)
	}
	if offset.Valid {
		m := int(offset.Int64)
		s.UTCOffsetMinutes = &m
	}
	return &s, nil
}

// ScheduleConfig implements availability.ScheduleStore. A business_hours
// document that cannot be read as an object is logged and treated as absent,
// which makes every day fall back to the default window.
func (r *ScheduleRepository) ScheduleConfig(ctx context.Context, scope availability.Scope) (*availability.ScheduleConfig, error) {
	s, err := r.GetSetting(ctx, scope)
	if err != nil || s == nil {
		return nil, err
	}

	cfg := &availability.ScheduleConfig{OffsetMinutes: s.UTCOffsetMinutes}
	if len(s.BusinessHours) > 0 {
		days, err := availability.ParseWeeklySchedule(s.BusinessHours)
		if err != nil {
			r.logger.Warn("ignoring malformed business hours", "scope", scope.String(), "error", err)
		} else {
			cfg.Days = days
		}
	}
	if cfg.OffsetMinutes != nil {
		if err := availability.ValidateOffset(*cfg.OffsetMinutes); err != nil {
			r.logger.Warn("ignoring out of range utc offset", "scope", scope.String(), "error", err)
			cfg.OffsetMinutes = nil
		}
	}
	return cfg, nil
}

func (r *ScheduleRepository) SaveSchedule(ctx context.Context, scope availability.Scope, days availability.WeeklySchedule, offsetMinutes *int) error {
	hours, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("error encoding business hours: %w", err)
	}
	var offset sql.NullInt64
	if offsetMinutes != nil {
		offset = sql.NullInt64{Int64: int64(*offsetMinutes), Valid: true}
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO schedule_settings (scope_type, scope_id, business_hours, utc_offset_minutes, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (scope_type, scope_id)
		 DO UPDATE SET business_hours = EXCLUDED.business_hours,
		               utc_offset_minutes = EXCLUDED.utc_offset_minutes,
		               updated_at = NOW()`,
		string(scope.Kind), scope.ID, hours, offset,
	)
	if err != nil {
		return fmt.Errorf("error saving schedule for %s: %w", scope, err)
	}
	return nil
}
