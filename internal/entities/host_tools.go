package entities

import (
	"time"

	"smartscheduler/internal/google"
)

type MeetingRuleRequest struct {
	Title           string `json:"title"`
	TargetDay       int    `json:"target_day"`
	PromptCustom    string `json:"prompt_custom"`
	DurationMinutes int    `json:"duration_minutes"`
}

type MeetingRuleResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	TargetDay       int       `json:"target_day"`
	PromptCustom    string    `json:"prompt_custom"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

type MeetingRulesList struct {
	Rules []MeetingRuleResponse `json:"rules"`
}

type CalendarEventsResponse struct {
	Events []google.CalendarEvent `json:"events"`
}
