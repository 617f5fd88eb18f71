package availability

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a zone. It becomes an instant only once a
// scope offset is known.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Midnight returns 00:00 of the date at loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Bounds returns [00:00, 23:59:59] of the date at loc, the range queried from
// calendar providers.
func (d Date) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := d.Midnight(loc)
	return start, start.Add(24*time.Hour - time.Second)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FixedOffset returns a zone for an offset in minutes east of UTC.
func FixedOffset(minutes int) *time.Location {
	return time.FixedZone("UTC"+FormatOffset(minutes), minutes*60)
}

// ParseOffset parses "+09:00", "-05:30" or "Z" into minutes east of UTC.
func ParseOffset(s string) (int, error) {
	if s == "Z" || s == "UTC" {
		return 0, nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	h, okH := twoDigits(s[1:3])
	m, okM := twoDigits(s[4:])
	if !okH || !okM || m > 59 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	minutes := h*60 + m
	if s[0] == '-' {
		minutes = -minutes
	}
	if err := ValidateOffset(minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

// twoDigits parses exactly two ASCII digits. Signs and spaces are rejected.
func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// ValidateOffset bounds an offset to the range used by real zones.
func ValidateOffset(minutes int) error {
	if minutes < -12*60 || minutes > 14*60 {
		return fmt.Errorf("UTC offset %d minutes out of range", minutes)
	}
	return nil
}

// FormatOffset renders minutes east of UTC as "+09:00".
func FormatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}
