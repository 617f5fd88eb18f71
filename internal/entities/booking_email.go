package entities

type BookingEmailData struct {
	GuestName          string
	HostName           string
	Title              string
	StartTimeFormatted string
	EndTimeFormatted   string
	MeetLink           string
	Note               string
	Status             string
	CurrentYear        int
}
