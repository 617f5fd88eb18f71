package entities

// SlotsResponse is returned by the public slots endpoint. Slots are HH:MM
// labels at UTCOffset.
type SlotsResponse struct {
	Date            string   `json:"date"`
	UTCOffset       string   `json:"utcOffset"`
	DurationMinutes int      `json:"durationMinutes"`
	Method          string   `json:"method"`
	Slots           []string `json:"slots"`
}

type SlotsQuery struct {
	HostID          string
	OrgID           string
	MenuSlug        string
	MeetingTypeID   string
	Date            string
	DurationMinutes int
	Method          string
}
