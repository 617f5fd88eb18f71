package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
)

const defaultRuleDuration = 60

type RuleStore interface {
	ListByUser(ctx context.Context, userID string) ([]db.MeetingRule, error)
	Create(ctx context.Context, rule *db.MeetingRule) error
}

// RuleService manages a host's recurring meeting rules: a meeting to hold
// around a given day of every month.
type RuleService struct {
	rules RuleStore
}

func NewRuleService(rules RuleStore) *RuleService {
	return &RuleService{rules: rules}
}

func (s *RuleService) List(ctx context.Context, hostID string) (*entities.MeetingRulesList, error) {
	rows, err := s.rules.ListByUser(ctx, hostID)
	if err != nil {
		return nil, err
	}
	list := &entities.MeetingRulesList{Rules: make([]entities.MeetingRuleResponse, 0, len(rows))}
	for _, r := range rows {
		list.Rules = append(list.Rules, toRuleResponse(r))
	}
	return list, nil
}

func (s *RuleService) Create(ctx context.Context, hostID string, req entities.MeetingRuleRequest) (*entities.MeetingRuleResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if req.TargetDay < 1 || req.TargetDay > 31 {
		return nil, invalid("target_day must be between 1 and 31")
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = defaultRuleDuration
	}
	if duration < 0 {
		return nil, invalid("duration_minutes must be positive")
	}

	rule := &db.MeetingRule{
		ID:              uuid.NewString(),
		UserID:          hostID,
		Title:           title,
		TargetDay:       req.TargetDay,
		PromptCustom:    strings.TrimSpace(req.PromptCustom),
		DurationMinutes: duration,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	resp := toRuleResponse(*rule)
	return &resp, nil
}

func toRuleResponse(r db.MeetingRule) entities.MeetingRuleResponse {
	return entities.MeetingRuleResponse{
		ID:              r.ID,
		Title:           r.Title,
		TargetDay:       r.TargetDay,
		PromptCustom:    r.PromptCustom,
		DurationMinutes: r.DurationMinutes,
		CreatedAt:       r.CreatedAt,
	}
}
