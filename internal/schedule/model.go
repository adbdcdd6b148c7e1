package schedule

import (
	"context"
	"sort"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

// Schedule is the set of still-offered slots a doctor has on one date.
type Schedule struct {
	DoctorID string
	Date     calendar.Date
	Slots    []calendar.TimeOfDay // sorted, unique
}

func (s Schedule) Has(t calendar.TimeOfDay) bool {
	i := sort.Search(len(s.Slots), func(i int) bool { return s.Slots[i] >= t })
	return i < len(s.Slots) && s.Slots[i] == t
}

func (s Schedule) clone() Schedule {
	out := s
	out.Slots = append([]calendar.TimeOfDay(nil), s.Slots...)
	return out
}

// Repository is the persistence collaborator for schedules: full-collection load and replace.
type Repository interface {
	LoadAll(ctx context.Context) ([]Schedule, error)
	SaveAll(ctx context.Context, schedules []Schedule) error
}
