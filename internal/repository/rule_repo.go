package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartscheduler/internal/db"
)

type RuleRepository struct {
	DB *sql.DB
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{DB: db}
}

// ListByUser returns the user's rules, newest first.
func (r *RuleRepository) ListByUser(ctx context.Context, userID string) ([]db.MeetingRule, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, title, target_day, prompt_custom, duration_minutes, created_at
		 FROM meeting_rules WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying meeting rules: %w", err)
	}
	defer rows.Close()

	rules := []db.MeetingRule{}
	for rows.Next() {
		var rule db.MeetingRule
		if err := rows.Scan(&rule.ID, &rule.UserID, &rule.Title, &rule.TargetDay,
			&rule.PromptCustom, &rule.DurationMinutes, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning meeting rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return rules, nil
}

func (r *RuleRepository) Create(ctx context.Context, rule *db.MeetingRule) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO meeting_rules (id, user_id, title, target_day, prompt_custom, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		rule.ID, rule.UserID, rule.Title, rule.TargetDay, rule.PromptCustom, rule.DurationMinutes,
	).Scan(&rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting meeting rule: %w", err)
	}
	return nil
}
