package domain

// Eligible reports whether an event is worth notifying under the current
// policy: its currency must be on the allow-list, and when requireActual is
// set the release must already have an actual value. Pure function of its
// inputs; the poll loop re-evaluates it for every record on every cycle, so
// a record filtered out now can still qualify later.
func Eligible(e Event, allowed map[string]struct{}, requireActual bool) bool {
	if _, ok := allowed[e.Currency]; !ok {
		return false
	}
	if requireActual && !e.Released() {
		return false
	}
	return true
}
