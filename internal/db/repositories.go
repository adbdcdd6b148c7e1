package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// Each SaveAll replaces the whole table inside one transaction, so readers see either
// the previous or the new collection.

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) LoadAll(ctx context.Context) ([]schedule.Schedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, date, slots
		FROM doctor_schedules
		ORDER BY doctor_id, date
	`)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var result []schedule.Schedule
	for rows.Next() {
		var (
			sc    schedule.Schedule
			date  time.Time
			slots []string
		)
		if err := rows.Scan(&sc.DoctorID, &date, &slots); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		sc.Date = calendar.DateOf(date)
		for _, s := range slots {
			t, err := calendar.ParseTimeOfDay(s)
			if err != nil {
				return nil, fmt.Errorf("schedule %s %s: %w", sc.DoctorID, sc.Date, err)
			}
			sc.Slots = append(sc.Slots, t)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ScheduleRepository) SaveAll(ctx context.Context, all []schedule.Schedule) error {
	rows := make([][]any, 0, len(all))
	for _, sc := range all {
		slots := make([]string, len(sc.Slots))
		for i, t := range sc.Slots {
			slots[i] = t.String()
		}
		rows = append(rows, []any{sc.DoctorID, dateValue(sc.Date), slots})
	}
	return replaceTable(ctx, r.pool, "doctor_schedules", []string{"doctor_id", "date", "slots"}, rows)
}

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (appointment.Appointment, error) {
	var (
		a      appointment.Appointment
		date   time.Time
		at     string
		status string
	)
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&date,
		&at,
		&status,
		&a.Outcome.ConsultationNotes,
		&a.Outcome.PrescribedMedications,
		&a.Outcome.ServiceType,
	)
	if err != nil {
		return appointment.Appointment{}, err
	}

	a.Date = calendar.DateOf(date)
	if a.Time, err = calendar.ParseTimeOfDay(at); err != nil {
		return appointment.Appointment{}, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if a.Status, err = appointment.ParseStatus(status); err != nil {
		return appointment.Appointment{}, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	return a, nil
}

func (r *AppointmentRepository) LoadAll(ctx context.Context) ([]appointment.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, doctor_id, date, time, status,
		       consultation_notes, prescribed_medications, service_type
		FROM appointments
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var result []appointment.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *AppointmentRepository) SaveAll(ctx context.Context, all []appointment.Appointment) error {
	rows := make([][]any, 0, len(all))
	for _, a := range all {
		rows = append(rows, []any{
			a.ID,
			a.PatientID,
			a.DoctorID,
			dateValue(a.Date),
			a.Time.String(),
			string(a.Status),
			a.Outcome.ConsultationNotes,
			a.Outcome.PrescribedMedications,
			a.Outcome.ServiceType,
		})
	}
	return replaceTable(ctx, r.pool, "appointments", []string{
		"id", "patient_id", "doctor_id", "date", "time", "status",
		"consultation_notes", "prescribed_medications", "service_type",
	}, rows)
}

type LeaveRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

func (r *LeaveRepository) LoadAll(ctx context.Context) ([]leave.Leave, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, staff_id, date, status, reason
		FROM leaves
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query leaves: %w", err)
	}
	defer rows.Close()

	var result []leave.Leave
	for rows.Next() {
		var (
			l      leave.Leave
			date   time.Time
			status string
		)
		if err := rows.Scan(&l.ID, &l.StaffID, &date, &status, &l.Reason); err != nil {
			return nil, fmt.Errorf("scan leave: %w", err)
		}
		l.Date = calendar.DateOf(date)
		if l.Status, err = leave.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("leave %s: %w", l.ID, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *LeaveRepository) SaveAll(ctx context.Context, all []leave.Leave) error {
	rows := make([][]any, 0, len(all))
	for _, l := range all {
		rows = append(rows, []any{l.ID, l.StaffID, dateValue(l.Date), string(l.Status), l.Reason})
	}
	return replaceTable(ctx, r.pool, "leaves", []string{"id", "staff_id", "date", "status", "reason"}, rows)
}

func replaceTable(ctx context.Context, pool *pgxpool.Pool, table string, columns []string, rows [][]any) error {
	return withTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{table}.Sanitize()); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy %s: %w", table, err)
		}
		return nil
	})
}

func dateValue(d calendar.Date) time.Time {
	return calendar.At(d, 0)
}
