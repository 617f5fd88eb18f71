package service

import (
	"bytes"
	"fmt"
	"time"

	ical "github.com/emersion/go-ical"

	"smartscheduler/internal/db"
)

const inviteProductID = "-//smartscheduler//booking//EN"

// BuildInvite encodes an iCalendar REQUEST for an approved booking so mail
// clients can add it to the guest's calendar.
func BuildInvite(b db.BookingRequest, title, organizerEmail string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, inviteProductID)
	cal.Props.SetText(ical.PropMethod, "REQUEST")

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, b.ID+"@smartscheduler")
	ve.Props.SetText(ical.PropSummary, title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, b.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, b.EndTime.UTC())
	ve.Props.SetText(ical.PropStatus, "CONFIRMED")
	if b.MeetLink != "" {
		ve.Props.SetText(ical.PropLocation, b.MeetLink)
		ve.Props.SetText(ical.PropDescription, "Join with Google Meet: "+b.MeetLink)
	}
	if organizerEmail != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.Value = "mailto:" + organizerEmail
		ve.Props.Add(p)
	}
	attendee := ical.NewProp(ical.PropAttendee)
	attendee.Params.Set(ical.ParamCommonName, b.GuestName)
	attendee.Value = "mailto:" + b.GuestEmail
	ve.Props.Add(attendee)
	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode invite: %w", err)
	}
	return buf.Bytes(), nil
}
