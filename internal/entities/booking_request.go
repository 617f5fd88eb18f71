package entities

import "time"

type BookingRequestInput struct {
	Slug       string `json:"slug"`
	HostID     string `json:"hostId"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	Note       string `json:"note"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

type BookingRequestResponse struct {
	ID            string    `json:"id"`
	MeetingTypeID *string   `json:"meeting_type_id,omitempty"`
	HostUserID    string    `json:"host_user_id"`
	GuestName     string    `json:"guest_name"`
	GuestEmail    string    `json:"guest_email"`
	Note          string    `json:"note,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	MeetLink      string    `json:"meet_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingRequestsList struct {
	Total    int                      `json:"total"`
	Requests []BookingRequestResponse `json:"requests"`
}
