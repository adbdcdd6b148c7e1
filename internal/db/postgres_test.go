package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

// These tests need a disposable database: CLINIC_TEST_DATABASE_URL=postgres://...
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("CLINIC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CLINIC_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := ConnectPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE users, doctor_schedules, appointments, leaves, event_logs`)
	require.NoError(t, err)
	return pool
}

var day = calendar.MustParseDate("2025-03-01")

func TestRepositoriesReplaceWholeCollection(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	schedules := NewScheduleRepository(pool)
	in := []schedule.Schedule{
		{DoctorID: "D001", Date: day, Slots: []calendar.TimeOfDay{calendar.MustParseTimeOfDay("09:00"), calendar.MustParseTimeOfDay("10:00")}},
		{DoctorID: "D002", Date: day, Slots: []calendar.TimeOfDay{calendar.MustParseTimeOfDay("13:00")}},
	}
	require.NoError(t, schedules.SaveAll(ctx, in))
	got, err := schedules.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	require.NoError(t, schedules.SaveAll(ctx, in[:1]))
	got, err = schedules.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	appts := NewAppointmentRepository(pool)
	a := []appointment.Appointment{{
		ID: "AP001", PatientID: "P001", DoctorID: "D001", Date: day,
		Time: calendar.MustParseTimeOfDay("09:00"), Status: appointment.StatusCompleted,
		Outcome: appointment.Outcome{ConsultationNotes: "ok", ServiceType: "consultation"},
	}}
	require.NoError(t, appts.SaveAll(ctx, a))
	gotA, err := appts.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, gotA)

	leaves := NewLeaveRepository(pool)
	l := []leave.Leave{{ID: "LR001", StaffID: "D001", Date: day, Status: leave.StatusPending, Reason: "course"}}
	require.NoError(t, leaves.SaveAll(ctx, l))
	gotL, err := leaves.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, l, gotL)

	require.NoError(t, leaves.SaveAll(ctx, nil))
	gotL, err = leaves.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, gotL)
}

func TestDirectoryLookups(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	dir := NewDirectory(pool)

	require.NoError(t, dir.UpsertUsers(ctx, []directory.User{
		{ID: "D001", Name: "Dr. Tan", Role: directory.RoleDoctor, Staff: &directory.StaffProfile{Age: 45}},
		{ID: "P001", Name: "Alice", Role: directory.RolePatient, Patient: &directory.PatientProfile{BloodType: "A+"}},
	}))

	doc, err := dir.FindDoctorByID(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, 45, doc.Staff.Age)

	_, err = dir.FindDoctorByID(ctx, "P001")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p, err := dir.FindPatientByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, "A+", p.Patient.BloodType)
}

func TestEventLog(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	log := NewEventLog(pool)

	require.NoError(t, log.Record(ctx, scheduling.Event{
		Type: scheduling.EventAppointmentRequested, EntityID: "AP001",
		Payload: []byte(`{"slot":"2025-03-01 09:00"}`), CreatedAt: time.Now(),
	}))
	require.NoError(t, log.Record(ctx, scheduling.Event{Type: scheduling.EventLeaveFiled, EntityID: "LR001"}))

	got, err := log.Recent(ctx, "AP001", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, scheduling.EventAppointmentRequested, got[0].Type)
	assert.JSONEq(t, `{"slot":"2025-03-01 09:00"}`, string(got[0].Payload))
}
