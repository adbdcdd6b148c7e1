package appointment

import (
	"sort"
	"sync"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/ident"
)

// Store owns the appointment collection and enforces the status machine.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Appointment
}

func NewStore() *Store {
	return &Store{items: make(map[string]*Appointment)}
}

func (s *Store) Replace(all []Appointment) {
	items := make(map[string]*Appointment, len(all))
	for i := range all {
		a := all[i]
		items[a.ID] = &a
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// All returns a copy of the collection ordered by id.
func (s *Store) All() []Appointment {
	return s.Find(Filter{})
}

func (s *Store) Find(f Filter) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Appointment, 0, len(s.items))
	for _, a := range s.items {
		if f.Match(*a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Get(id string) (Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.items[id]
	if !ok {
		return Appointment{}, apperr.NotFound(id, "appointment %s not found", id)
	}
	return *a, nil
}

// ActiveAt returns the appointment holding (doctor, date, time), if any.
func (s *Store) ActiveAt(doctorID string, date calendar.Date, t calendar.TimeOfDay) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.items {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == t && a.Status.IsActive() {
			return *a, true
		}
	}
	return Appointment{}, false
}

// ActiveOn returns active appointments on date, restricted to doctorID unless it is empty.
func (s *Store) ActiveOn(doctorID string, date calendar.Date) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Appointment
	for _, a := range s.items {
		if doctorID != "" && a.DoctorID != doctorID {
			continue
		}
		if a.Date.Equal(date) && a.Status.IsActive() {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create takes a NOT_SCHEDULED request (zero status) to PENDING and assigns the next AP id.
func (s *Store) Create(a Appointment) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := a.Status
	if from == "" {
		from = StatusNotScheduled
	}
	if !CanTransition(from, StatusPending) {
		return Appointment{}, apperr.InvalidTransition(a.ID, "a new appointment cannot start from %s", from)
	}

	for _, other := range s.items {
		if other.DoctorID == a.DoctorID && other.Date.Equal(a.Date) && other.Time == a.Time && other.Status.IsActive() {
			return Appointment{}, apperr.SlotUnavailable(other.ID, "doctor %s already has appointment %s at %s",
				a.DoctorID, other.ID, other.Slot())
		}
	}

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	a.ID = ident.Next(ids, IDPrefix, IDWidth)
	a.Status = StatusPending
	a.Outcome = Outcome{}

	stored := a
	s.items[a.ID] = &stored
	return a, nil
}

// Transition moves an appointment along a legal edge; the status is unchanged on failure.
func (s *Store) Transition(id string, to Status) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return Appointment{}, apperr.NotFound(id, "appointment %s not found", id)
	}
	if !CanTransition(a.Status, to) {
		return Appointment{}, apperr.InvalidTransition(id, "appointment %s cannot move from %s to %s", id, a.Status, to)
	}
	a.Status = to
	return *a, nil
}

// Complete records the outcome and moves an accepted appointment to COMPLETED.
func (s *Store) Complete(id string, outcome Outcome) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return Appointment{}, apperr.NotFound(id, "appointment %s not found", id)
	}
	if !a.Status.IsAccepted() {
		return Appointment{}, apperr.InvalidTransition(id, "appointment %s cannot be completed from %s", id, a.Status)
	}
	a.Status = StatusCompleted
	a.Outcome = outcome
	return *a, nil
}

// Delete removes the record entirely.
func (s *Store) Delete(id string) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return Appointment{}, apperr.NotFound(id, "appointment %s not found", id)
	}
	delete(s.items, id)
	return *a, nil
}
