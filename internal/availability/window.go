package availability

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultStart = "10:00"
	DefaultEnd   = "18:00"
)

var weekdayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// WeekdayName returns the lowercase English name used as a schedule key.
func WeekdayName(d time.Weekday) string { return weekdayNames[d] }

// DayConfig is one weekday entry of a weekly schedule. Active is a pointer so
// that a missing flag can be told apart from an explicit false.
type DayConfig struct {
	Active *bool  `json:"active"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// WeeklySchedule maps weekday names (sunday..saturday) to day entries.
type WeeklySchedule map[string]DayConfig

// ParseWeeklySchedule decodes stored business hours. Entries that do not
// decode, or whose key is not a weekday name, are dropped so that the default
// window applies to that day. Only a document that is not a JSON object is an
// error.
func ParseWeeklySchedule(data []byte) (WeeklySchedule, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding weekly schedule: %w", err)
	}
	days := make(WeeklySchedule, len(raw))
	for key, msg := range raw {
		name := strings.ToLower(strings.TrimSpace(key))
		if !isWeekdayName(name) {
			continue
		}
		var dc DayConfig
		if err := json.Unmarshal(msg, &dc); err != nil {
			continue
		}
		days[name] = dc
	}
	return days, nil
}

// Validate is used on writes; reads never fail and fall back instead.
func (w WeeklySchedule) Validate() error {
	for name, dc := range w {
		if !isWeekdayName(name) {
			return fmt.Errorf("unknown weekday %q", name)
		}
		if dc.Active == nil {
			return fmt.Errorf("%s: active flag is required", name)
		}
		if !*dc.Active {
			continue
		}
		start, err := ParseClock(dc.Start)
		if err != nil {
			return fmt.Errorf("%s: start: %w", name, err)
		}
		end, err := ParseClock(dc.End)
		if err != nil {
			return fmt.Errorf("%s: end: %w", name, err)
		}
		if start >= end {
			return fmt.Errorf("%s: start %s is not before end %s", name, dc.Start, dc.End)
		}
	}
	return nil
}

func isWeekdayName(s string) bool {
	for _, n := range weekdayNames {
		if n == s {
			return true
		}
	}
	return false
}

// ParseClock parses "HH:MM" into minutes after midnight. "24:00" is accepted
// as the end of the day.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, okH := twoDigits(s[:2])
	m, okM := twoDigits(s[3:])
	if !okH || !okM {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if h == 24 && m == 0 {
		return 24 * 60, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return h*60 + m, nil
}

// Window is the bookable range of one day for one scope.
type Window struct {
	Date     Date
	Active   bool
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// Empty reports whether no slot can fit in the window.
func (w Window) Empty() bool {
	return !w.Active || !w.Start.Before(w.End)
}

// ResolveWindow derives the working-hours window of date from a weekly
// schedule. A nil schedule, a missing weekday entry or a malformed one yields
// the default 10:00-18:00 active window. An active entry whose start is not
// before its end yields an empty window. The weekday is taken at loc.
func ResolveWindow(days WeeklySchedule, date Date, loc *time.Location) Window {
	midnight := date.Midnight(loc)
	w := Window{Date: date, Location: loc}

	dc, ok := days[WeekdayName(midnight.Weekday())]
	if ok && dc.Active != nil && !*dc.Active {
		w.Start, w.End = midnight, midnight
		return w
	}

	start, errStart := ParseClock(dc.Start)
	end, errEnd := ParseClock(dc.End)
	if !ok || dc.Active == nil || errStart != nil || errEnd != nil {
		start, _ = ParseClock(DefaultStart)
		end, _ = ParseClock(DefaultEnd)
	}

	w.Active = true
	w.Start = midnight.Add(time.Duration(start) * time.Minute)
	w.End = midnight.Add(time.Duration(end) * time.Minute)
	return w
}
