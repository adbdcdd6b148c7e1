package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

type key struct {
	doctorID string
	date     string
}

func keyOf(doctorID string, date calendar.Date) key {
	return key{doctorID: doctorID, date: date.String()}
}

// Store owns every doctor's offered slots. A slot present in the store is bookable.
type Store struct {
	mu       sync.RWMutex
	interval time.Duration
	entries  map[key]*Schedule
}

func NewStore(interval time.Duration) *Store {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Store{
		interval: interval,
		entries:  make(map[key]*Schedule),
	}
}

func (s *Store) Interval() time.Duration {
	return s.interval
}

// Replace swaps the whole collection, normalising each entry's slots.
func (s *Store) Replace(all []Schedule) {
	entries := make(map[key]*Schedule, len(all))
	for _, sc := range all {
		k := keyOf(sc.DoctorID, sc.Date)
		existing, ok := entries[k]
		if !ok {
			existing = &Schedule{DoctorID: sc.DoctorID, Date: sc.Date}
			entries[k] = existing
		}
		existing.Slots = normalize(append(existing.Slots, sc.Slots...))
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// All returns a copy of every entry ordered by doctor then date.
func (s *Store) All() []Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Schedule, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.clone())
	}
	sortSchedules(out)
	return out
}

func (s *Store) Get(doctorID string, date calendar.Date) (Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[keyOf(doctorID, date)]
	if !ok {
		return Schedule{}, false
	}
	return e.clone(), true
}

func (s *Store) ForDoctor(doctorID string) []Schedule {
	return s.filter(func(e *Schedule) bool { return e.DoctorID == doctorID })
}

func (s *Store) OnDate(date calendar.Date) []Schedule {
	return s.filter(func(e *Schedule) bool { return e.Date.Equal(date) })
}

func (s *Store) filter(keep func(*Schedule) bool) []Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Schedule
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e.clone())
		}
	}
	sortSchedules(out)
	return out
}

// IsAvailable reports whether (doctor, date, t) is currently offered.
func (s *Store) IsAvailable(doctorID string, date calendar.Date, t calendar.TimeOfDay) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[keyOf(doctorID, date)]
	return ok && e.Has(t)
}

// Reserve removes t from the offered set. It fails with SlotUnavailable when t is not offered.
func (s *Store) Reserve(doctorID string, date calendar.Date, t calendar.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[keyOf(doctorID, date)]
	if !ok || !e.Has(t) {
		return apperr.SlotUnavailable(doctorID, "slot %s on %s is not offered by doctor %s", t, date, doctorID)
	}
	e.Slots = remove(e.Slots, t)
	return nil
}

// Release puts t back into the offered set, creating the date entry if needed.
// Releasing an already offered slot is a no-op.
func (s *Store) Release(doctorID string, date calendar.Date, t calendar.TimeOfDay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(doctorID, date)
	e, ok := s.entries[k]
	if !ok {
		e = &Schedule{DoctorID: doctorID, Date: date}
		s.entries[k] = e
	}
	if !e.Has(t) {
		e.Slots = normalize(append(e.Slots, t))
	}
}

// Set replaces the offered slots of one date after validating the spacing of the full
// template. Slots for which held reports true are left out of the offered set.
// An empty result removes the entry.
func (s *Store) Set(doctorID string, date calendar.Date, slots []calendar.TimeOfDay, held func(calendar.TimeOfDay) bool) (Schedule, error) {
	if err := ValidateSpacing(doctorID, slots, s.interval); err != nil {
		return Schedule{}, err
	}

	offered := make([]calendar.TimeOfDay, 0, len(slots))
	for _, t := range slots {
		if held != nil && held(t) {
			continue
		}
		offered = append(offered, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(doctorID, date)
	if len(offered) == 0 {
		delete(s.entries, k)
		return Schedule{DoctorID: doctorID, Date: date}, nil
	}
	e := &Schedule{DoctorID: doctorID, Date: date, Slots: offered}
	s.entries[k] = e
	return e.clone(), nil
}

// Add merges slots into an existing date. The batch must be validly spaced on its own,
// sit on the same interval grid as the slots already offered, and not repeat any of them.
func (s *Store) Add(doctorID string, date calendar.Date, slots []calendar.TimeOfDay) (Schedule, error) {
	if len(slots) == 0 {
		return Schedule{}, apperr.InvalidInput(doctorID, "no slots given for doctor %s on %s", doctorID, date)
	}
	if err := ValidateSpacing(doctorID, slots, s.interval); err != nil {
		return Schedule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(doctorID, date)
	e, ok := s.entries[k]
	if !ok {
		e = &Schedule{DoctorID: doctorID, Date: date}
	}
	for _, t := range slots {
		if e.Has(t) {
			return Schedule{}, apperr.Spacing(doctorID, "slot %s on %s is already offered by doctor %s", t, date, doctorID)
		}
		if len(e.Slots) > 0 && !onGrid(t, e.Slots[0], s.interval) {
			return Schedule{}, apperr.Spacing(doctorID, "slot %s on %s is off the %s grid of doctor %s (offered %s)",
				t, date, s.interval, doctorID, join(e.Slots))
		}
	}

	e.Slots = normalize(append(e.Slots, slots...))
	s.entries[k] = e
	return e.clone(), nil
}

// Remove withdraws a single offered slot.
func (s *Store) Remove(doctorID string, date calendar.Date, t calendar.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[keyOf(doctorID, date)]
	if !ok || !e.Has(t) {
		return apperr.NotFound(doctorID, "slot %s on %s is not offered by doctor %s", t, date, doctorID)
	}
	e.Slots = remove(e.Slots, t)
	return nil
}

// PurgeDate drops the whole entry for (doctor, date) and returns the slots it held.
func (s *Store) PurgeDate(doctorID string, date calendar.Date) []calendar.TimeOfDay {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(doctorID, date)
	e, ok := s.entries[k]
	if !ok {
		return nil
	}
	delete(s.entries, k)
	return e.Slots
}

// PurgeExpired removes every entry whose date, and every slot on it, lies before now.
func (s *Store) PurgeExpired(now time.Time) []Schedule {
	today := calendar.DateOf(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []Schedule
	for k, e := range s.entries {
		if e.Date.After(today) {
			continue
		}
		if e.Date.Equal(today) && !allPast(e, now) {
			continue
		}
		purged = append(purged, *e)
		delete(s.entries, k)
	}
	sortSchedules(purged)
	return purged
}

func allPast(e *Schedule, now time.Time) bool {
	for _, t := range e.Slots {
		if !calendar.IsPast(e.Date, t, now) {
			return false
		}
	}
	return true
}

func normalize(slots []calendar.TimeOfDay) []calendar.TimeOfDay {
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	out := slots[:0]
	for _, t := range slots {
		if len(out) > 0 && t == out[len(out)-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func remove(slots []calendar.TimeOfDay, t calendar.TimeOfDay) []calendar.TimeOfDay {
	out := make([]calendar.TimeOfDay, 0, len(slots))
	for _, s := range slots {
		if s != t {
			out = append(out, s)
		}
	}
	return out
}

func sortSchedules(out []Schedule) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].DoctorID != out[j].DoctorID {
			return out[i].DoctorID < out[j].DoctorID
		}
		return out[i].Date.Before(out[j].Date)
	})
}
