package message

import (
	"fmt"
	"strings"

	"macro-canary/internal/domain"
)

// Render produces the notification text for an event at its current state.
// The output is fully deterministic for a given record: the embedded date is
// the event's own snapshot day, never the wall clock at render time, so an
// unchanged pending record renders to the same bytes across midnight.
func Render(e domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n📅 %s\n❗ %d\n💱 %s\n⌚ %s %s",
		e.Name, e.Importance, e.Currency, e.Date.Format("2006-01-02"), e.Time)

	if e.Actual == "" && e.Forecast == "" && e.Previous == "" {
		return b.String()
	}

	fmt.Fprintf(&b, "\n\n✅ Actual ----> %s\n✅ Forecast ----> %s\n✅ Previous ----> %s",
		e.Actual, e.Forecast, e.Previous)

	if ok, diff := Surprise(e.Actual, e.Forecast); ok {
		fmt.Fprintf(&b, "\n🎉 Surprise ----> %s", formatDelta(diff))
	}
	if ok, diff := Surprise(e.Actual, e.Previous); ok {
		fmt.Fprintf(&b, "\n🎉 Surprise from previous ----> %s", formatDelta(diff))
	}
	return b.String()
}
