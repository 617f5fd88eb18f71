package availability

// Overlaps reports whether the slot and the interval share any instant.
// Abutting ranges do not overlap, and invalid intervals never do.
func (s Slot) Overlaps(b BusyInterval) bool {
	if !b.Valid() {
		return false
	}
	return s.Start.Before(b.End) && s.End.After(b.Start)
}

// BusyDuring reports whether any of the participant's intervals overlaps s.
func (p ParticipantAvailability) BusyDuring(s Slot) bool {
	for _, b := range p.Busy {
		if s.Overlaps(b) {
			return true
		}
	}
	return false
}

// FreeParticipants returns the IDs of participants free during s, in input order.
func FreeParticipants(s Slot, participants []ParticipantAvailability) []string {
	var free []string
	for _, p := range participants {
		if !p.BusyDuring(s) {
			free = append(free, p.ParticipantID)
		}
	}
	return free
}

// Decide reports whether s is bookable. Under PolicyAll no participant may be
// busy; under PolicyAny at least one must be free. With one participant both
// policies reduce to that participant being free.
func Decide(s Slot, participants []ParticipantAvailability, policy Policy) bool {
	switch policy {
	case PolicyAny:
		for _, p := range participants {
			if !p.BusyDuring(s) {
				return true
			}
		}
		return false
	default:
		for _, p := range participants {
			if p.BusyDuring(s) {
				return false
			}
		}
		return true
	}
}
