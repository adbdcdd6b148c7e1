package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/lock"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// lockKey scopes every operation. The three stores are checked together, so a single
// scope keeps each operation indivisible.
const lockKey = "scheduling"

// CascadeScope selects which appointments an approved leave cancels.
type CascadeScope string

const (
	CascadeStaff    CascadeScope = "staff"    // only the leave owner's appointments
	CascadeFacility CascadeScope = "facility" // every appointment on the leave date
)

func ParseCascadeScope(s string) (CascadeScope, error) {
	switch CascadeScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", CascadeStaff:
		return CascadeStaff, nil
	case CascadeFacility:
		return CascadeFacility, nil
	}
	return "", fmt.Errorf("unknown leave cascade scope %q", s)
}

type Config struct {
	SlotInterval time.Duration
	CascadeScope CascadeScope
	// RefreshBeforeWrite reloads every collection inside the lock before validating.
	// Needed when several processes share one store.
	RefreshBeforeWrite bool
	Now                func() time.Time
}

type Repositories struct {
	Schedules    schedule.Repository
	Appointments appointment.Repository
	Leaves       leave.Repository
}

type Deps struct {
	Repos     Repositories
	Directory directory.Directory
	Locker    lock.Locker
	Events    EventSink        // optional
	Metrics   *metrics.Metrics // optional
	Logger    zerolog.Logger
}

// Service coordinates the schedule, appointment and leave stores. Every mutating
// operation validates fully before changing anything, then saves each collection it
// touched. A failed save is reported as PersistenceFailure together with the applied
// result; Persist retries the save.
type Service struct {
	schedules    *schedule.Store
	appointments *appointment.Store
	leaves       *leave.Store

	repos   Repositories
	dir     directory.Directory
	locker  lock.Locker
	events  EventSink
	metrics *metrics.Metrics
	log     zerolog.Logger
	cfg     Config

	// unsynced is set when a save failed and memory holds changes the repositories
	// lack. Reloads are skipped and every save writes all collections until one
	// full save succeeds. Guarded by the service lock.
	unsynced bool
}

func NewService(deps Deps, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CascadeScope == "" {
		cfg.CascadeScope = CascadeStaff
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	if deps.Events == nil {
		deps.Events = LogSink{Log: deps.Logger}
	}
	return &Service{
		schedules:    schedule.NewStore(cfg.SlotInterval),
		appointments: appointment.NewStore(),
		leaves:       leave.NewStore(),
		repos:        deps.Repos,
		dir:          deps.Directory,
		locker:       deps.Locker,
		events:       deps.Events,
		metrics:      deps.Metrics,
		log:          deps.Logger,
		cfg:          cfg,
	}
}

type collection uint8

const (
	colSchedules collection = 1 << iota
	colAppointments
	colLeaves

	colAll = colSchedules | colAppointments | colLeaves
)

// unit collects what one operation changed.
type unit struct {
	dirty  collection
	events []Event
	now    time.Time
}

func (u *unit) touch(c collection) {
	u.dirty |= c
}

func (u *unit) emit(typ, entityID string, payload map[string]any) {
	u.events = append(u.events, newEvent(typ, entityID, payload, u.now))
}

// run executes fn as one unit of work under the service lock. Changes fn reports
// are saved before the lock is released.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context, u *unit) error) error {
	start := time.Now()
	u := &unit{now: s.cfg.Now()}

	err := s.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		if s.cfg.RefreshBeforeWrite && !s.unsynced {
			if err := s.load(ctx); err != nil {
				return err
			}
		}
		if err := fn(ctx, u); err != nil {
			return err
		}
		if s.unsynced {
			u.touch(colAll)
		}
		if err := s.save(ctx, u.dirty); err != nil {
			s.unsynced = true
			return err
		}
		s.unsynced = false
		return nil
	})

	if err == nil || apperr.KindOf(err) == apperr.KindPersistenceFailure {
		for _, ev := range u.events {
			if recErr := s.events.Record(ctx, ev); recErr != nil {
				s.log.Warn().Err(recErr).Str("event", ev.Type).Str("entity_id", ev.EntityID).Msg("failed to record event")
			}
		}
		if u.dirty&colSchedules != 0 {
			s.metrics.SetOfferedSlots(s.offeredSlots())
		}
	}

	s.metrics.ObserveOperation(op, resultOf(err), time.Since(start))
	if err != nil {
		ev := s.log.Debug()
		if apperr.KindOf(err) == apperr.KindPersistenceFailure {
			ev = s.log.Error()
		}
		ev.Err(err).Str("op", op).Msg("operation failed")
	}
	return err
}

// view runs a read. With RefreshBeforeWrite it reloads under the lock first so reads
// observe writes from other processes.
func (s *Service) view(ctx context.Context, fn func()) error {
	if !s.cfg.RefreshBeforeWrite {
		fn()
		return nil
	}
	return s.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		if !s.unsynced {
			if err := s.load(ctx); err != nil {
				return err
			}
		}
		fn()
		return nil
	})
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lock.ErrNotAcquired):
		return "busy"
	default:
		return apperr.KindOf(err).String()
	}
}

// Load replaces the in-memory stores with the repositories' contents.
func (s *Service) Load(ctx context.Context) error {
	return s.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		if err := s.load(ctx); err != nil {
			return err
		}
		s.metrics.SetOfferedSlots(s.offeredSlots())
		s.log.Info().
			Int("schedules", len(s.schedules.All())).
			Int("appointments", len(s.appointments.All())).
			Int("leaves", len(s.leaves.All())).
			Msg("stores loaded")
		return nil
	})
}

func (s *Service) load(ctx context.Context) error {
	schedules, err := s.repos.Schedules.LoadAll(ctx)
	if err != nil {
		return apperr.Persistence("schedules", err)
	}
	appointments, err := s.repos.Appointments.LoadAll(ctx)
	if err != nil {
		return apperr.Persistence("appointments", err)
	}
	leaves, err := s.repos.Leaves.LoadAll(ctx)
	if err != nil {
		return apperr.Persistence("leaves", err)
	}

	s.schedules.Replace(schedules)
	s.appointments.Replace(appointments)
	s.leaves.Replace(leaves)
	return nil
}

// Persist saves every collection. Use it to retry after a PersistenceFailure.
func (s *Service) Persist(ctx context.Context) error {
	return s.run(ctx, "persist", func(_ context.Context, u *unit) error {
		u.touch(colAll)
		return nil
	})
}

// save writes every dirty collection in full. All collections are attempted even if
// one fails.
func (s *Service) save(ctx context.Context, dirty collection) error {
	var errs []error
	if dirty&colSchedules != 0 {
		if err := s.repos.Schedules.SaveAll(ctx, s.schedules.All()); err != nil {
			errs = append(errs, apperr.Persistence("schedules", err))
		}
	}
	if dirty&colAppointments != 0 {
		if err := s.repos.Appointments.SaveAll(ctx, s.appointments.All()); err != nil {
			errs = append(errs, apperr.Persistence("appointments", err))
		}
	}
	if dirty&colLeaves != 0 {
		if err := s.repos.Leaves.SaveAll(ctx, s.leaves.All()); err != nil {
			errs = append(errs, apperr.Persistence("leaves", err))
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

func (s *Service) offeredSlots() int {
	n := 0
	for _, sc := range s.schedules.All() {
		n += len(sc.Slots)
	}
	return n
}

func (s *Service) checkNotPast(id string, date calendar.Date, t calendar.TimeOfDay) error {
	if calendar.IsPast(date, t, s.cfg.Now()) {
		return apperr.InvalidInput(id, "%s %s is in the past", date, t)
	}
	return nil
}

func (s *Service) checkDateNotPast(id string, date calendar.Date) error {
	if date.IsZero() {
		return apperr.InvalidInput(id, "date is required")
	}
	if date.Before(calendar.DateOf(s.cfg.Now())) {
		return apperr.InvalidInput(id, "date %s is in the past", date)
	}
	return nil
}
