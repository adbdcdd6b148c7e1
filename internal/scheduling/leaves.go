package scheduling

import (
	"context"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/leave"
)

// FileLeave records a PENDING leave request for a staff member.
func (s *Service) FileLeave(ctx context.Context, staffID string, date calendar.Date, reason string) (leave.Leave, error) {
	var created leave.Leave
	err := s.run(ctx, "file_leave", func(ctx context.Context, u *unit) error {
		if _, err := s.dir.FindStaffByID(ctx, staffID); err != nil {
			return err
		}
		if err := s.checkDateNotPast(staffID, date); err != nil {
			return err
		}

		created = s.leaves.Create(staffID, date, reason)
		u.touch(colLeaves)
		u.emit(EventLeaveFiled, created.ID, map[string]any{
			"staff_id": staffID,
			"date":     date.String(),
		})
		s.log.Info().Str("leave_id", created.ID).Str("staff_id", staffID).Stringer("date", date).Msg("leave filed")
		return nil
	})
	return created, err
}

// UpdateLeave changes the date and reason of a pending leave. Only its owner may do so.
func (s *Service) UpdateLeave(ctx context.Context, id, staffID string, date calendar.Date, reason string) (leave.Leave, error) {
	var updated leave.Leave
	err := s.run(ctx, "update_leave", func(_ context.Context, u *unit) error {
		if err := s.checkDateNotPast(id, date); err != nil {
			return err
		}
		l, err := s.leaves.Update(id, staffID, date, reason)
		if err != nil {
			return err
		}

		updated = l
		u.touch(colLeaves)
		u.emit(EventLeaveUpdated, id, map[string]any{"date": date.String()})
		return nil
	})
	return updated, err
}

// WithdrawLeave deletes a pending leave. Only its owner may do so.
func (s *Service) WithdrawLeave(ctx context.Context, id, staffID string) (leave.Leave, error) {
	var removed leave.Leave
	err := s.run(ctx, "withdraw_leave", func(_ context.Context, u *unit) error {
		l, err := s.leaves.Withdraw(id, staffID)
		if err != nil {
			return err
		}

		removed = l
		u.touch(colLeaves)
		u.emit(EventLeaveWithdrawn, id, map[string]any{"staff_id": staffID})
		return nil
	})
	return removed, err
}

// ApproveLeave approves a pending leave and clears the day: the staff member's schedule
// entry for the date is purged, then every active appointment in cascade scope is
// cancelled. Appointments of other doctors get their slot back; the leave owner's slots
// are gone with the purged entry.
func (s *Service) ApproveLeave(ctx context.Context, id string) (leave.Leave, []appointment.Appointment, error) {
	var (
		approved  leave.Leave
		cancelled []appointment.Appointment
	)

	err := s.run(ctx, "approve_leave", func(_ context.Context, u *unit) error {
		l, err := s.leaves.CheckPending(id)
		if err != nil {
			return err
		}

		scope := l.StaffID
		if s.cfg.CascadeScope == CascadeFacility {
			scope = ""
		}
		affected := s.appointments.ActiveOn(scope, l.Date)

		purged := s.schedules.PurgeDate(l.StaffID, l.Date)
		for _, a := range affected {
			c, err := s.appointments.Transition(a.ID, appointment.StatusCancelled)
			if err != nil {
				return err
			}
			if c.DoctorID != l.StaffID {
				s.schedules.Release(c.DoctorID, c.Date, c.Time)
			}
			cancelled = append(cancelled, c)
		}

		approved, err = s.leaves.Resolve(id, leave.StatusApproved)
		if err != nil {
			return err
		}

		u.touch(colAll)
		ids := make([]string, len(cancelled))
		for i, c := range cancelled {
			ids[i] = c.ID
		}
		u.emit(EventLeaveApproved, id, map[string]any{
			"staff_id":     l.StaffID,
			"date":         l.Date.String(),
			"scope":        string(s.cfg.CascadeScope),
			"cancelled":    ids,
			"purged_slots": timesOf(purged),
		})
		s.log.Info().Str("leave_id", id).Str("staff_id", l.StaffID).Stringer("date", l.Date).
			Int("cancelled", len(cancelled)).Int("purged_slots", len(purged)).Msg("leave approved")
		return nil
	})

	if approved.ID != "" {
		s.metrics.AddCascadeCancelled(len(cancelled))
	}
	return approved, cancelled, err
}

// RejectLeave resolves a pending leave as REJECTED without touching schedules or
// appointments.
func (s *Service) RejectLeave(ctx context.Context, id string) (leave.Leave, error) {
	var rejected leave.Leave
	err := s.run(ctx, "reject_leave", func(_ context.Context, u *unit) error {
		l, err := s.leaves.Resolve(id, leave.StatusRejected)
		if err != nil {
			return err
		}

		rejected = l
		u.touch(colLeaves)
		u.emit(EventLeaveRejected, id, map[string]any{"staff_id": l.StaffID})
		return nil
	})
	return rejected, err
}

func (s *Service) Leave(ctx context.Context, id string) (leave.Leave, error) {
	var (
		l   leave.Leave
		err error
	)
	if vErr := s.view(ctx, func() { l, err = s.leaves.Get(id) }); vErr != nil {
		return leave.Leave{}, vErr
	}
	return l, err
}

func (s *Service) ListLeaves(ctx context.Context, f leave.Filter) ([]leave.Leave, error) {
	var out []leave.Leave
	err := s.view(ctx, func() { out = s.leaves.Find(f) })
	return out, err
}
