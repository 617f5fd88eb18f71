package entities

import (
	"time"

	"smartscheduler/internal/availability"
)

type ScheduleSettingsRequest struct {
	BusinessHours availability.WeeklySchedule `json:"business_hours"`
	UTCOffset     *string                     `json:"utc_offset,omitempty"`
}

type ScheduleSettingsResponse struct {
	Scope         string                      `json:"scope"`
	ID            string                      `json:"id"`
	BusinessHours availability.WeeklySchedule `json:"business_hours"`
	UTCOffset     string                      `json:"utc_offset"`
}

type CredentialsRequest struct {
	Provider     string     `json:"provider"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	FeedURL      string     `json:"feed_url,omitempty"`
}
