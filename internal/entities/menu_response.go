package entities

type MenuResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	DurationMinutes int    `json:"durationMinutes"`
	Method          string `json:"method"`
	HostCount       int    `json:"hostCount"`
}
