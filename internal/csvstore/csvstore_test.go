package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

var day = calendar.MustParseDate("2025-03-01")

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestScheduleLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewScheduleRepository(dir)

	in := []schedule.Schedule{{
		DoctorID: "D001",
		Date:     day,
		Slots:    []calendar.TimeOfDay{calendar.MustParseTimeOfDay("09:00"), calendar.MustParseTimeOfDay("10:00")},
	}}
	require.NoError(t, repo.SaveAll(ctx, in))

	assert.Equal(t, "DoctorID,Date,TimeSlots\nD001,2025-03-01,\"09:00;10:00\"\n", readFile(t, filepath.Join(dir, SchedulesFile)))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestScheduleSlotsAlwaysQuoted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewScheduleRepository(dir)

	in := []schedule.Schedule{
		{DoctorID: "D001", Date: day, Slots: []calendar.TimeOfDay{calendar.MustParseTimeOfDay("09:00")}},
		{DoctorID: "D002", Date: day},
	}
	require.NoError(t, repo.SaveAll(ctx, in))

	assert.Equal(t, "DoctorID,Date,TimeSlots\nD001,2025-03-01,\"09:00\"\nD002,2025-03-01,\"\"\n", readFile(t, filepath.Join(dir, SchedulesFile)))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestScheduleLoadsQuotedSlots(t *testing.T) {
	dir := t.TempDir()
	content := "DoctorID,Date,TimeSlots\nD002,2025-03-01,\"13:00;14:00;15:00\"\nD003,2025-03-02,\"\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SchedulesFile), []byte(content), 0o644))

	out, err := NewScheduleRepository(dir).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Slots, 3)
	assert.Empty(t, out[1].Slots)
}

func TestEmptyCollectionKeepsHeader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, NewAppointmentRepository(dir).SaveAll(ctx, nil))
	require.NoError(t, NewLeaveRepository(dir).SaveAll(ctx, nil))

	assert.Equal(t,
		"AppointmentID,PatientID,DoctorID,Date,Time,Status,ConsultationNotes,PrescribedMedications,ServiceType\n",
		readFile(t, filepath.Join(dir, AppointmentsFile)))
	assert.Equal(t, "LeaveID,StaffID,Date,Status,Reason\n", readFile(t, filepath.Join(dir, LeavesFile)))

	appts, err := NewAppointmentRepository(dir).LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestMissingFileLoadsEmpty(t *testing.T) {
	out, err := NewLeaveRepository(t.TempDir()).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAppointmentRoundTripWithCommas(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository(t.TempDir())

	in := []appointment.Appointment{
		{ID: "AP001", PatientID: "P001", DoctorID: "D001", Date: day, Time: calendar.MustParseTimeOfDay("09:00"), Status: appointment.StatusPending},
		{
			ID: "AP002", PatientID: "P002", DoctorID: "D001", Date: day, Time: calendar.MustParseTimeOfDay("10:00"),
			Status: appointment.StatusCompleted,
			Outcome: appointment.Outcome{
				ConsultationNotes:     "cough, mild fever",
				PrescribedMedications: "paracetamol 500mg; rest",
				ServiceType:           "consultation",
			},
		},
	}
	require.NoError(t, repo.SaveAll(ctx, in))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLeaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaveRepository(t.TempDir())

	in := []leave.Leave{{ID: "LR001", StaffID: "D001", Date: day, Status: leave.StatusApproved, Reason: "conference"}}
	require.NoError(t, repo.SaveAll(ctx, in))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadRejectsBadRows(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		load    func() error
	}{
		{
			name:    "bad header",
			file:    LeavesFile,
			content: "ID,Staff,Date,Status,Reason\n",
			load:    func() error { _, err := NewLeaveRepository(dir).LoadAll(context.Background()); return err },
		},
		{
			name:    "bad status",
			file:    AppointmentsFile,
			content: "AppointmentID,PatientID,DoctorID,Date,Time,Status,ConsultationNotes,PrescribedMedications,ServiceType\nAP001,P001,D001,2025-03-01,09:00,LOST,,,\n",
			load:    func() error { _, err := NewAppointmentRepository(dir).LoadAll(context.Background()); return err },
		},
		{
			name:    "bad slot",
			file:    SchedulesFile,
			content: "DoctorID,Date,TimeSlots\nD001,2025-03-01,9am\n",
			load:    func() error { _, err := NewScheduleRepository(dir).LoadAll(context.Background()); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644))
			assert.Error(t, tt.load())
		})
	}
}

func TestUsersSplitAcrossFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewUserRepository(dir)

	users := []directory.User{
		{ID: "P001", Name: "Alice", Role: directory.RolePatient, Gender: "F",
			Patient: &directory.PatientProfile{DateOfBirth: "1990-04-01", BloodType: "A+", Contact: "alice@example.com"}},
		{ID: "D001", Name: "Dr. Tan", Role: directory.RoleDoctor, Gender: "M", Staff: &directory.StaffProfile{Age: 45}},
		{ID: "A001", Name: "Sam", Role: directory.RoleAdministrator, Gender: "F", Staff: &directory.StaffProfile{Age: 33}},
	}
	require.NoError(t, repo.SaveAll(ctx, users))

	assert.Equal(t, "StaffID,Name,Role,Gender,Age\nA001,Sam,ADMINISTRATOR,F,33\nD001,Dr. Tan,DOCTOR,M,45\n",
		readFile(t, filepath.Join(dir, StaffFile)))

	dirc, err := repo.LoadDirectory(ctx)
	require.NoError(t, err)

	doc, err := dirc.FindDoctorByID(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, 45, doc.Staff.Age)

	p, err := dirc.FindPatientByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, "A+", p.Patient.BloodType)

	_, err = dirc.FindStaffByID(ctx, "A001")
	assert.NoError(t, err)
}
