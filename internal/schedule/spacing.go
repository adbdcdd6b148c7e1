package schedule

import (
	"strings"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

// DefaultInterval is the canonical slot width.
const DefaultInterval = time.Hour

// ValidateSpacing checks that slots are valid times, strictly ascending and exactly one
// interval apart.
func ValidateSpacing(doctorID string, slots []calendar.TimeOfDay, interval time.Duration) error {
	step := calendar.TimeOfDay(interval / time.Minute)
	for i, t := range slots {
		if !t.Valid() {
			return apperr.InvalidInput(doctorID, "slot %d is not a valid time of day", int(t))
		}
		if i == 0 {
			continue
		}
		prev := slots[i-1]
		if t <= prev {
			return apperr.Spacing(doctorID, "slots for doctor %s must be sorted ascending without duplicates: %s then %s (offered %s)",
				doctorID, prev, t, join(slots))
		}
		if t-prev != step {
			return apperr.Spacing(doctorID, "slots for doctor %s must be %s apart: %s then %s (offered %s)",
				doctorID, interval, prev, t, join(slots))
		}
	}
	return nil
}

// onGrid reports whether t sits a whole number of intervals away from ref.
func onGrid(t, ref calendar.TimeOfDay, interval time.Duration) bool {
	step := int(interval / time.Minute)
	if step <= 0 {
		return true
	}
	diff := int(t - ref)
	if diff < 0 {
		diff = -diff
	}
	return diff%step == 0
}

func join(slots []calendar.TimeOfDay) string {
	parts := make([]string, len(slots))
	for i, t := range slots {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
