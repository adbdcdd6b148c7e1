package csvstore

import (
	"context"
	"strings"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

const slotSeparator = ";"

// Store groups the CSV repositories kept in one data directory.
type Store struct {
	Dir          string
	Schedules    *ScheduleRepository
	Appointments *AppointmentRepository
	Leaves       *LeaveRepository
	Users        *UserRepository
}

func Open(dir string) *Store {
	return &Store{
		Dir:          dir,
		Schedules:    NewScheduleRepository(dir),
		Appointments: NewAppointmentRepository(dir),
		Leaves:       NewLeaveRepository(dir),
		Users:        NewUserRepository(dir),
	}
}

type ScheduleRepository struct {
	t *table
}

func NewScheduleRepository(dir string) *ScheduleRepository {
	t := newTable(dir, SchedulesFile, "DoctorID", "Date", "TimeSlots")
	t.alwaysQuote = map[int]bool{2: true}
	return &ScheduleRepository{t: t}
}

func (r *ScheduleRepository) LoadAll(_ context.Context) ([]schedule.Schedule, error) {
	rows, err := r.t.read()
	if err != nil {
		return nil, err
	}

	out := make([]schedule.Schedule, 0, len(rows))
	for i, row := range rows {
		date, err := calendar.ParseDate(row[1])
		if err != nil {
			return nil, rowError(r.t.path, i+2, err)
		}
		sc := schedule.Schedule{DoctorID: strings.TrimSpace(row[0]), Date: date}
		for _, part := range strings.Split(row[2], slotSeparator) {
			if strings.TrimSpace(part) == "" {
				continue
			}
			t, err := calendar.ParseTimeOfDay(part)
			if err != nil {
				return nil, rowError(r.t.path, i+2, err)
			}
			sc.Slots = append(sc.Slots, t)
		}
		out = append(out, sc)
	}
	return out, nil
}

func (r *ScheduleRepository) SaveAll(_ context.Context, all []schedule.Schedule) error {
	rows := make([][]string, 0, len(all))
	for _, sc := range all {
		slots := make([]string, len(sc.Slots))
		for i, t := range sc.Slots {
			slots[i] = t.String()
		}
		rows = append(rows, []string{sc.DoctorID, sc.Date.String(), strings.Join(slots, slotSeparator)})
	}
	return r.t.write(rows)
}

type AppointmentRepository struct {
	t *table
}

func NewAppointmentRepository(dir string) *AppointmentRepository {
	return &AppointmentRepository{t: newTable(dir, AppointmentsFile,
		"AppointmentID", "PatientID", "DoctorID", "Date", "Time", "Status",
		"ConsultationNotes", "PrescribedMedications", "ServiceType")}
}

func (r *AppointmentRepository) LoadAll(_ context.Context) ([]appointment.Appointment, error) {
	rows, err := r.t.read()
	if err != nil {
		return nil, err
	}

	out := make([]appointment.Appointment, 0, len(rows))
	for i, row := range rows {
		date, err := calendar.ParseDate(row[3])
		if err != nil {
			return nil, rowError(r.t.path, i+2, err)
		}
		t, err := calendar.ParseTimeOfDay(row[4])
		if err != nil {
			return nil, rowError(r.t.path, i+2, err)
		}
		status, err := appointment.ParseStatus(row[5])
		if err != nil {
			return nil, rowError(r.t.path, i+2, err)
		}
		out = append(out, appointment.Appointment{
			ID:        strings.TrimSpace(row[0]),
			PatientID: strings.TrimSpace(row[1]),
			DoctorID:  strings.TrimSpace(row[2]),
			Date:      date,
			Time:      t,
			Status:    status,
			Outcome: appointment.Outcome{
				ConsultationNotes:     row[6],
				PrescribedMedications: row[7],
				ServiceType:           row[8],
			},
		})
	}
	return out, nil
}

func (r *AppointmentRepository) SaveAll(_ context.Context, all []appointment.Appointment) error {
	rows := make([][]string, 0, len(all))
	for _, a := range all {
		rows = append(rows, []string{
			a.ID,
			a.PatientID,
			a.DoctorID,
			a.Date.String(),
			a.Time.String(),
			string(a.Status),
			a.Outcome.ConsultationNotes,
			a.Outcome.PrescribedMedications,
			a.Outcome.ServiceType,
		})
	}
	return r.t.write(rows)
}

type LeaveRepository struct {
	t *table
}

func NewLeaveRepository(dir string) *LeaveRepository {
	return &LeaveRepository{t: newTable(dir, LeavesFile, "LeaveID", "StaffID", "Date", "Status", "Reason")}
}

func (r *LeaveRepository) LoadAll(_ context.Context) ([]leave.Leave, error) {
	rows, err := r.t.read()
	if err != nil {
		return nil, err
	}

	out := make([]leave.Leave, 0, len(rows))
	for i, row := range rows {
		date, err := calendar.ParseDate(row[2])
		if err != nil {
			return nil, rowError(r.t.path, i+2, err)
		}
		status, err := leave.ParseStatus(row[3])
		if err != nil {
			return nil, rowError(r.t.path, i+2, err)
		}
		out = append(out, leave.Leave{
			ID:      strings.TrimSpace(row[0]),
			StaffID: strings.TrimSpace(row[1]),
			Date:    date,
			Status:  status,
			Reason:  row[4],
		})
	}
	return out, nil
}

func (r *LeaveRepository) SaveAll(_ context.Context, all []leave.Leave) error {
	rows := make([][]string, 0, len(all))
	for _, l := range all {
		rows = append(rows, []string{l.ID, l.StaffID, l.Date.String(), string(l.Status), l.Reason})
	}
	return r.t.write(rows)
}
