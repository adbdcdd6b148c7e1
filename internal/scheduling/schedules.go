package scheduling

import (
	"context"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// SetAvailability replaces the slots a doctor offers on date. Slots already held by an
// active appointment stay held and are not offered again.
func (s *Service) SetAvailability(ctx context.Context, doctorID string, date calendar.Date, slots []calendar.TimeOfDay) (schedule.Schedule, error) {
	var result schedule.Schedule

	err := s.run(ctx, "set_availability", func(ctx context.Context, u *unit) error {
		if err := s.checkOpenDay(ctx, doctorID, date, slots); err != nil {
			return err
		}

		held := func(t calendar.TimeOfDay) bool {
			_, ok := s.appointments.ActiveAt(doctorID, date, t)
			return ok
		}
		sc, err := s.schedules.Set(doctorID, date, slots, held)
		if err != nil {
			return err
		}

		result = sc
		u.touch(colSchedules)
		u.emit(EventScheduleSet, doctorID, map[string]any{
			"date":  date.String(),
			"slots": timesOf(sc.Slots),
		})
		s.log.Info().Str("doctor_id", doctorID).Stringer("date", date).Int("slots", len(sc.Slots)).Msg("availability set")
		return nil
	})
	return result, err
}

// AddSlots offers extra slots on date without touching the existing ones.
func (s *Service) AddSlots(ctx context.Context, doctorID string, date calendar.Date, slots []calendar.TimeOfDay) (schedule.Schedule, error) {
	var result schedule.Schedule

	err := s.run(ctx, "add_slots", func(ctx context.Context, u *unit) error {
		if err := s.checkOpenDay(ctx, doctorID, date, slots); err != nil {
			return err
		}
		for _, t := range slots {
			if a, ok := s.appointments.ActiveAt(doctorID, date, t); ok {
				return apperr.SlotUnavailable(a.ID, "slot %s %s of doctor %s is held by appointment %s", date, t, doctorID, a.ID)
			}
		}

		sc, err := s.schedules.Add(doctorID, date, slots)
		if err != nil {
			return err
		}

		result = sc
		u.touch(colSchedules)
		u.emit(EventScheduleSet, doctorID, map[string]any{
			"date":  date.String(),
			"added": timesOf(slots),
		})
		return nil
	})
	return result, err
}

// RemoveSlot withdraws one offered slot.
func (s *Service) RemoveSlot(ctx context.Context, doctorID string, date calendar.Date, t calendar.TimeOfDay) error {
	return s.run(ctx, "remove_slot", func(_ context.Context, u *unit) error {
		if err := s.schedules.Remove(doctorID, date, t); err != nil {
			return err
		}
		u.touch(colSchedules)
		u.emit(EventScheduleSet, doctorID, map[string]any{
			"date":    date.String(),
			"removed": t.String(),
		})
		return nil
	})
}

// checkOpenDay is shared by SetAvailability and AddSlots.
func (s *Service) checkOpenDay(ctx context.Context, doctorID string, date calendar.Date, slots []calendar.TimeOfDay) error {
	if _, err := s.dir.FindDoctorByID(ctx, doctorID); err != nil {
		return err
	}
	if err := s.checkDateNotPast(doctorID, date); err != nil {
		return err
	}
	for _, t := range slots {
		if !t.Valid() {
			return apperr.InvalidInput(doctorID, "invalid slot time %d", int(t))
		}
		if err := s.checkNotPast(doctorID, date, t); err != nil {
			return err
		}
	}
	if s.leaves.OnLeave(doctorID, date) {
		return apperr.SlotUnavailable(doctorID, "doctor %s is on approved leave on %s", doctorID, date)
	}
	return nil
}

// Schedule returns the offered slots of doctorID on date.
func (s *Service) Schedule(ctx context.Context, doctorID string, date calendar.Date) (schedule.Schedule, error) {
	var (
		sc schedule.Schedule
		ok bool
	)
	if err := s.view(ctx, func() { sc, ok = s.schedules.Get(doctorID, date) }); err != nil {
		return schedule.Schedule{}, err
	}
	if !ok {
		return schedule.Schedule{}, apperr.NotFound(doctorID, "no schedule for doctor %s on %s", doctorID, date)
	}
	return sc, nil
}

// ListSchedules returns every date doctorID has slots on, ordered by date.
func (s *Service) ListSchedules(ctx context.Context, doctorID string) ([]schedule.Schedule, error) {
	var out []schedule.Schedule
	err := s.view(ctx, func() {
		if doctorID == "" {
			out = s.schedules.All()
			return
		}
		out = s.schedules.ForDoctor(doctorID)
	})
	return out, err
}

// AvailableSlots returns, per doctor, the slots still bookable on date. Past slots are
// left out.
func (s *Service) AvailableSlots(ctx context.Context, date calendar.Date) ([]schedule.Schedule, error) {
	var all []schedule.Schedule
	if err := s.view(ctx, func() { all = s.schedules.OnDate(date) }); err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	out := make([]schedule.Schedule, 0, len(all))
	for _, sc := range all {
		open := make([]calendar.TimeOfDay, 0, len(sc.Slots))
		for _, t := range sc.Slots {
			if !calendar.IsPast(sc.Date, t, now) {
				open = append(open, t)
			}
		}
		if len(open) == 0 {
			continue
		}
		sc.Slots = open
		out = append(out, sc)
	}
	return out, nil
}

// PurgeExpiredSchedules removes entries whose date and slots have all passed and
// returns how many were removed.
func (s *Service) PurgeExpiredSchedules(ctx context.Context) (int, error) {
	var purged []schedule.Schedule

	err := s.run(ctx, "purge_expired_schedules", func(_ context.Context, u *unit) error {
		purged = s.schedules.PurgeExpired(u.now)
		if len(purged) == 0 {
			return nil
		}
		u.touch(colSchedules)
		for _, sc := range purged {
			u.emit(EventSchedulePurged, sc.DoctorID, map[string]any{
				"date":   sc.Date.String(),
				"reason": "expired",
			})
		}
		return nil
	})

	if len(purged) > 0 {
		s.metrics.AddSchedulesPurged(len(purged))
		s.log.Info().Int("purged", len(purged)).Msg("expired schedules purged")
	}
	return len(purged), err
}

func timesOf(slots []calendar.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, t := range slots {
		out[i] = t.String()
	}
	return out
}
