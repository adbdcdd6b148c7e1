package scheduling

import (
	"context"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

// RequestAppointment books an offered slot for a patient. The slot leaves the doctor's
// schedule and a PENDING appointment holds it until it is declined, cancelled or
// completed.
func (s *Service) RequestAppointment(ctx context.Context, patientID, doctorID string, date calendar.Date, t calendar.TimeOfDay) (appointment.Appointment, error) {
	var created appointment.Appointment

	err := s.run(ctx, "request_appointment", func(ctx context.Context, u *unit) error {
		if _, err := s.dir.FindPatientByID(ctx, patientID); err != nil {
			return err
		}
		if _, err := s.dir.FindDoctorByID(ctx, doctorID); err != nil {
			return err
		}
		if err := s.checkNotPast(patientID, date, t); err != nil {
			return err
		}
		if other, ok := s.appointments.ActiveAt(doctorID, date, t); ok {
			return apperr.SlotUnavailable(other.ID, "doctor %s already has appointment %s at %s %s", doctorID, other.ID, date, t)
		}

		if err := s.schedules.Reserve(doctorID, date, t); err != nil {
			return err
		}
		a, err := s.appointments.Create(appointment.Appointment{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      date,
			Time:      t,
		})
		if err != nil {
			s.schedules.Release(doctorID, date, t)
			return err
		}

		created = a
		u.touch(colSchedules | colAppointments)
		u.emit(EventAppointmentRequested, a.ID, map[string]any{
			"patient_id": patientID,
			"doctor_id":  doctorID,
			"slot":       a.Slot(),
		})
		s.log.Info().Str("appointment_id", a.ID).Str("patient_id", patientID).Str("doctor_id", doctorID).
			Str("slot", a.Slot()).Msg("appointment requested")
		return nil
	})
	return created, err
}

// AcceptAppointment moves a PENDING appointment to status, which must be SCHEDULED or
// CONFIRMED. An empty status means SCHEDULED.
func (s *Service) AcceptAppointment(ctx context.Context, id, doctorID string, status appointment.Status) (appointment.Appointment, error) {
	if status == "" {
		status = appointment.StatusScheduled
	}
	if !status.IsAccepted() {
		return appointment.Appointment{}, apperr.InvalidInput(id, "appointment %s cannot be accepted as %s", id, status)
	}

	var updated appointment.Appointment
	err := s.run(ctx, "accept_appointment", func(_ context.Context, u *unit) error {
		if _, err := s.ownedByDoctor(id, doctorID); err != nil {
			return err
		}
		a, err := s.appointments.Transition(id, status)
		if err != nil {
			return err
		}

		updated = a
		u.touch(colAppointments)
		u.emit(EventAppointmentAccepted, id, map[string]any{"status": string(status)})
		return nil
	})
	return updated, err
}

// DeclineAppointment is the doctor refusing a request; the slot is offered again.
func (s *Service) DeclineAppointment(ctx context.Context, id, doctorID string) (appointment.Appointment, error) {
	var updated appointment.Appointment
	err := s.run(ctx, "decline_appointment", func(_ context.Context, u *unit) error {
		if _, err := s.ownedByDoctor(id, doctorID); err != nil {
			return err
		}
		a, err := s.cancel(id)
		if err != nil {
			return err
		}

		updated = a
		u.touch(colSchedules | colAppointments)
		u.emit(EventAppointmentDeclined, id, map[string]any{"slot": a.Slot()})
		return nil
	})
	return updated, err
}

// CancelAppointment is the patient withdrawing; the slot is offered again.
func (s *Service) CancelAppointment(ctx context.Context, id, patientID string) (appointment.Appointment, error) {
	var updated appointment.Appointment
	err := s.run(ctx, "cancel_appointment", func(_ context.Context, u *unit) error {
		if _, err := s.ownedByPatient(id, patientID); err != nil {
			return err
		}
		a, err := s.cancel(id)
		if err != nil {
			return err
		}

		updated = a
		u.touch(colSchedules | colAppointments)
		u.emit(EventAppointmentCancelled, id, map[string]any{"slot": a.Slot()})
		return nil
	})
	return updated, err
}

// RescheduleAppointment moves an active appointment to another slot of the same doctor.
// The old record is kept as CANCELLED and a new PENDING appointment is returned.
func (s *Service) RescheduleAppointment(ctx context.Context, id, patientID string, date calendar.Date, t calendar.TimeOfDay) (appointment.Appointment, error) {
	var created appointment.Appointment

	err := s.run(ctx, "reschedule_appointment", func(_ context.Context, u *unit) error {
		old, err := s.ownedByPatient(id, patientID)
		if err != nil {
			return err
		}
		if !old.Status.IsActive() {
			return apperr.InvalidTransition(id, "appointment %s is %s and cannot be rescheduled", id, old.Status)
		}
		if old.Date.Equal(date) && old.Time == t {
			return apperr.InvalidInput(id, "appointment %s is already at %s", id, old.Slot())
		}
		if err := s.checkNotPast(id, date, t); err != nil {
			return err
		}
		if other, ok := s.appointments.ActiveAt(old.DoctorID, date, t); ok {
			return apperr.SlotUnavailable(other.ID, "doctor %s already has appointment %s at %s %s", old.DoctorID, other.ID, date, t)
		}

		if err := s.schedules.Reserve(old.DoctorID, date, t); err != nil {
			return err
		}
		if _, err := s.cancel(id); err != nil {
			s.schedules.Release(old.DoctorID, date, t)
			return err
		}
		a, err := s.appointments.Create(appointment.Appointment{
			PatientID: old.PatientID,
			DoctorID:  old.DoctorID,
			Date:      date,
			Time:      t,
		})
		if err != nil {
			return err
		}

		created = a
		u.touch(colSchedules | colAppointments)
		u.emit(EventAppointmentRescheduled, a.ID, map[string]any{
			"previous_id":   old.ID,
			"previous_slot": old.Slot(),
			"slot":          a.Slot(),
		})
		s.log.Info().Str("appointment_id", a.ID).Str("previous_id", old.ID).Str("slot", a.Slot()).Msg("appointment rescheduled")
		return nil
	})
	return created, err
}

// RecordOutcome completes an accepted appointment with the consultation details.
func (s *Service) RecordOutcome(ctx context.Context, id, doctorID string, outcome appointment.Outcome) (appointment.Appointment, error) {
	var updated appointment.Appointment
	err := s.run(ctx, "record_outcome", func(_ context.Context, u *unit) error {
		if _, err := s.ownedByDoctor(id, doctorID); err != nil {
			return err
		}
		a, err := s.appointments.Complete(id, outcome)
		if err != nil {
			return err
		}

		updated = a
		u.touch(colAppointments)
		u.emit(EventAppointmentCompleted, id, map[string]any{"service_type": outcome.ServiceType})
		return nil
	})
	return updated, err
}

// PurgeAppointment deletes a record outright. An active appointment gives its slot back.
func (s *Service) PurgeAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	var removed appointment.Appointment
	err := s.run(ctx, "purge_appointment", func(_ context.Context, u *unit) error {
		a, err := s.appointments.Delete(id)
		if err != nil {
			return err
		}
		u.touch(colAppointments)
		if a.Status.IsActive() {
			s.schedules.Release(a.DoctorID, a.Date, a.Time)
			u.touch(colSchedules)
		}

		removed = a
		u.emit(EventAppointmentPurged, id, map[string]any{"status": string(a.Status)})
		return nil
	})
	return removed, err
}

func (s *Service) Appointment(ctx context.Context, id string) (appointment.Appointment, error) {
	var (
		a   appointment.Appointment
		err error
	)
	if vErr := s.view(ctx, func() { a, err = s.appointments.Get(id) }); vErr != nil {
		return appointment.Appointment{}, vErr
	}
	return a, err
}

func (s *Service) ListAppointments(ctx context.Context, f appointment.Filter) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	err := s.view(ctx, func() { out = s.appointments.Find(f) })
	return out, err
}

// cancel moves id to CANCELLED and offers its slot again.
func (s *Service) cancel(id string) (appointment.Appointment, error) {
	a, err := s.appointments.Transition(id, appointment.StatusCancelled)
	if err != nil {
		return appointment.Appointment{}, err
	}
	s.schedules.Release(a.DoctorID, a.Date, a.Time)
	return a, nil
}

func (s *Service) ownedByDoctor(id, doctorID string) (appointment.Appointment, error) {
	a, err := s.appointments.Get(id)
	if err != nil {
		return appointment.Appointment{}, err
	}
	if a.DoctorID != doctorID {
		return appointment.Appointment{}, apperr.Ownership(id, "appointment %s belongs to doctor %s, not %s", id, a.DoctorID, doctorID)
	}
	return a, nil
}

func (s *Service) ownedByPatient(id, patientID string) (appointment.Appointment, error) {
	a, err := s.appointments.Get(id)
	if err != nil {
		return appointment.Appointment{}, err
	}
	if a.PatientID != patientID {
		return appointment.Appointment{}, apperr.Ownership(id, "appointment %s belongs to patient %s, not %s", id, a.PatientID, patientID)
	}
	return a, nil
}
