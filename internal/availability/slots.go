package availability

import (
	"iter"
	"time"
)

// GenerateSlots tiles the window into contiguous slots of durationMinutes,
// starting at the window start. A slot that would end after the window end is
// never produced. The sequence is empty for an inactive or empty window and
// for a non-positive duration, and can be ranged over any number of times.
func GenerateSlots(w Window, durationMinutes int) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if w.Empty() || durationMinutes <= 0 {
			return
		}
		step := time.Duration(durationMinutes) * time.Minute
		for start := w.Start; ; start = start.Add(step) {
			end := start.Add(step)
			if end.After(w.End) {
				return
			}
			if !yield(Slot{Start: start, End: end}) {
				return
			}
		}
	}
}

// Label formats the slot start as HH:MM at loc.
func (s Slot) Label(loc *time.Location) string {
	return s.Start.In(loc).Format("15:04")
}
