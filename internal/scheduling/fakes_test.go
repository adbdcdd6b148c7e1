package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

var errDiskFull = errors.New("disk full")

// fakeRepo is an in-memory repository whose saves can be made to fail.
type fakeRepo[T any] struct {
	mu       sync.Mutex
	items    []T
	saves    int
	failSave bool
}

func (r *fakeRepo[T]) LoadAll(context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...), nil
}

func (r *fakeRepo[T]) SaveAll(_ context.Context, items []T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errDiskFull
	}
	r.saves++
	r.items = append([]T(nil), items...)
	return nil
}

func (r *fakeRepo[T]) stored() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...)
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

type harness struct {
	svc          *Service
	schedules    *fakeRepo[schedule.Schedule]
	appointments *fakeRepo[appointment.Appointment]
	leaves       *fakeRepo[leave.Leave]
	events       *recordingSink
}

var (
	day     = calendar.MustParseDate("2025-03-01")
	nextDay = calendar.MustParseDate("2025-03-02")
	t09     = calendar.MustParseTimeOfDay("09:00")
	t10     = calendar.MustParseTimeOfDay("10:00")
	t11     = calendar.MustParseTimeOfDay("11:00")
	t12     = calendar.MustParseTimeOfDay("12:00")

	clock = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
)

func testDirectory() *directory.Memory {
	return directory.NewMemory(
		directory.User{ID: "D001", Name: "Dr. Tan", Role: directory.RoleDoctor, Staff: &directory.StaffProfile{Age: 45}},
		directory.User{ID: "D002", Name: "Dr. Lim", Role: directory.RoleDoctor, Staff: &directory.StaffProfile{Age: 38}},
		directory.User{ID: "PH01", Name: "Ms. Goh", Role: directory.RolePharmacist, Staff: &directory.StaffProfile{Age: 29}},
		directory.User{ID: "P001", Name: "Alice", Role: directory.RolePatient, Patient: &directory.PatientProfile{BloodType: "A+"}},
		directory.User{ID: "P002", Name: "Bob", Role: directory.RolePatient, Patient: &directory.PatientProfile{BloodType: "O-"}},
	)
}

func newHarness(cfg Config) *harness {
	h := &harness{
		schedules:    &fakeRepo[schedule.Schedule]{},
		appointments: &fakeRepo[appointment.Appointment]{},
		leaves:       &fakeRepo[leave.Leave]{},
		events:       &recordingSink{},
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return clock }
	}
	if cfg.SlotInterval == 0 {
		cfg.SlotInterval = time.Hour
	}
	h.svc = NewService(Deps{
		Repos: Repositories{
			Schedules:    h.schedules,
			Appointments: h.appointments,
			Leaves:       h.leaves,
		},
		Directory: testDirectory(),
		Events:    h.events,
		Logger:    zerolog.Nop(),
	}, cfg)
	return h
}

func times(ts ...string) []calendar.TimeOfDay {
	out := make([]calendar.TimeOfDay, len(ts))
	for i, s := range ts {
		out[i] = calendar.MustParseTimeOfDay(s)
	}
	return out
}
