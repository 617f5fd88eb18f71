package db

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
	StatusFinished = "finished"
)

type Host struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserSecret struct {
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time
	FeedURL      string
	UpdatedAt    time.Time
}

type ScheduleSetting struct {
	ScopeType        string
	ScopeID          string
	BusinessHours    []byte
	UTCOffsetMinutes *int
	UpdatedAt        time.Time
}

type MeetingType struct {
	ID              string
	WorkspaceID     string
	Title           string
	Slug            string
	DurationMinutes int
	BookingMethod   string
	HostIDs         []string
	CreatedAt       time.Time
}

type BookingRequest struct {
	ID              string
	MeetingTypeID   *string
	WorkspaceID     *string
	HostUserID      string
	GuestName       string
	GuestEmail      string
	Note            string
	StartTime       time.Time
	EndTime         time.Time
	Status          string
	CalendarEventID string
	MeetLink        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MeetingRule is a host's recurring monthly meeting wish: a meeting of the
// given length to be arranged around TargetDay of each month.
type MeetingRule struct {
	ID              string
	UserID          string
	Title           string
	TargetDay       int
	PromptCustom    string
	DurationMinutes int
	CreatedAt       time.Time
}
