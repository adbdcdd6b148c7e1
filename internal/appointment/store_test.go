package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

var (
	day = calendar.MustParseDate("2025-03-01")
	t09 = calendar.MustParseTimeOfDay("09:00")
	t10 = calendar.MustParseTimeOfDay("10:00")
)

func newPending(t *testing.T, s *Store, doctorID string, at calendar.TimeOfDay) Appointment {
	t.Helper()
	a, err := s.Create(Appointment{PatientID: "P001", DoctorID: doctorID, Date: day, Time: at})
	require.NoError(t, err)
	return a
}

func TestCreateAssignsIDsAndPending(t *testing.T) {
	s := NewStore()
	s.Replace([]Appointment{
		{ID: "AP004", DoctorID: "D009", Date: day, Time: t09, Status: StatusCompleted},
		{ID: "legacy-1", DoctorID: "D009", Date: day, Time: t10, Status: StatusCancelled},
	})

	a := newPending(t, s, "D001", t09)
	assert.Equal(t, "AP005", a.ID)
	assert.Equal(t, StatusPending, a.Status)

	b := newPending(t, s, "D001", t10)
	assert.Equal(t, "AP006", b.ID)
}

func TestCreateStartsFromNotScheduled(t *testing.T) {
	s := NewStore()

	a, err := s.Create(Appointment{PatientID: "P001", DoctorID: "D001", Date: day, Time: t09, Status: StatusNotScheduled})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)

	_, err = s.Create(Appointment{PatientID: "P001", DoctorID: "D002", Date: day, Time: t09, Status: StatusCompleted})
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
	assert.Len(t, s.All(), 1)
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
	s := NewStore()
	first := newPending(t, s, "D001", t09)

	_, err := s.Create(Appointment{PatientID: "P002", DoctorID: "D001", Date: day, Time: t09})
	assert.ErrorIs(t, err, apperr.ErrSlotUnavailable)

	_, err = s.Transition(first.ID, StatusCancelled)
	require.NoError(t, err)

	again, err := s.Create(Appointment{PatientID: "P002", DoctorID: "D001", Date: day, Time: t09})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}

func TestTransitionFollowsLegalEdges(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusNotScheduled, StatusPending, true},
		{StatusPending, StatusScheduled, true},
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusScheduled, StatusCompleted, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusConfirmed, false},
		{StatusCompleted, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			s := NewStore()
			s.Replace([]Appointment{{ID: "AP001", DoctorID: "D001", Date: day, Time: t09, Status: tt.from}})

			got, err := s.Transition("AP001", tt.to)
			stored, getErr := s.Get("AP001")
			require.NoError(t, getErr)

			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got.Status)
				assert.Equal(t, tt.to, stored.Status)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
			assert.Equal(t, tt.from, stored.Status, "status must be unchanged")
		})
	}
}

func TestCompleteOnlyFromAccepted(t *testing.T) {
	s := NewStore()
	a := newPending(t, s, "D001", t09)
	outcome := Outcome{ConsultationNotes: "mild flu", PrescribedMedications: "paracetamol", ServiceType: "consultation"}

	_, err := s.Complete(a.ID, outcome)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)

	_, err = s.Transition(a.ID, StatusConfirmed)
	require.NoError(t, err)

	done, err := s.Complete(a.ID, outcome)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, outcome, done.Outcome)

	_, err = s.Complete(a.ID, outcome)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
}

func TestActiveOn(t *testing.T) {
	s := NewStore()
	s.Replace([]Appointment{
		{ID: "AP001", DoctorID: "D001", Date: day, Time: t09, Status: StatusScheduled},
		{ID: "AP002", DoctorID: "D002", Date: day, Time: t09, Status: StatusPending},
		{ID: "AP003", DoctorID: "D001", Date: day, Time: t10, Status: StatusCompleted},
		{ID: "AP004", DoctorID: "D001", Date: day.AddDays(1), Time: t10, Status: StatusPending},
	})

	mine := s.ActiveOn("D001", day)
	require.Len(t, mine, 1)
	assert.Equal(t, "AP001", mine[0].ID)

	everyone := s.ActiveOn("", day)
	require.Len(t, everyone, 2)

	held, ok := s.ActiveAt("D002", day, t09)
	assert.True(t, ok)
	assert.Equal(t, "AP002", held.ID)
}

func TestGetAndDeleteNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get("AP404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "AP404")

	_, err = s.Delete("AP404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFind(t *testing.T) {
	s := NewStore()
	s.Replace([]Appointment{
		{ID: "AP002", PatientID: "P001", DoctorID: "D001", Date: day, Time: t10, Status: StatusPending},
		{ID: "AP001", PatientID: "P002", DoctorID: "D001", Date: day, Time: t09, Status: StatusScheduled},
		{ID: "AP003", PatientID: "P001", DoctorID: "D002", Date: day, Time: t09, Status: StatusPending},
	})

	byDoctor := s.Find(Filter{DoctorID: "D001"})
	require.Len(t, byDoctor, 2)
	assert.Equal(t, "AP001", byDoctor[0].ID)

	pending := s.Find(Filter{PatientID: "P001", Status: StatusPending})
	assert.Len(t, pending, 2)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	st, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusNotScheduled, st)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}
