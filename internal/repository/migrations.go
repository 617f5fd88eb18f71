package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS hosts (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_secrets (
		user_id TEXT PRIMARY KEY,
		provider TEXT NOT NULL CHECK (provider IN ('google', 'ics')),
		access_token TEXT,
		refresh_token TEXT,
		token_expiry TIMESTAMPTZ,
		feed_url TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_settings (
		scope_type TEXT NOT NULL CHECK (scope_type IN ('user', 'workspace')),
		scope_id TEXT NOT NULL,
		business_hours JSONB,
		utc_offset_minutes INTEGER,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (scope_type, scope_id)
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_types (
		id UUID PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		booking_method TEXT NOT NULL DEFAULT 'and' CHECK (booking_method IN ('and', 'or')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_hosts (
		meeting_type_id UUID NOT NULL REFERENCES meeting_types(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (meeting_type_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS booking_requests (
		id UUID PRIMARY KEY,
		meeting_type_id UUID REFERENCES meeting_types(id) ON DELETE SET NULL,
		workspace_id TEXT,
		host_user_id TEXT NOT NULL,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		calendar_event_id TEXT NOT NULL DEFAULT '',
		meet_link TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS booking_requests_host_status_idx ON booking_requests (host_user_id, status)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS booking_requests_live_slot_idx
		ON booking_requests (host_user_id, start_time)
		WHERE status IN ('pending', 'approved')`,
	`CREATE TABLE IF NOT EXISTS meeting_rules (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		target_day INTEGER NOT NULL CHECK (target_day BETWEEN 1 AND 31),
		prompt_custom TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS meeting_rules_user_idx ON meeting_rules (user_id, created_at DESC)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
