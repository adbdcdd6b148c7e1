package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

var day = calendar.MustParseDate("2025-03-01")

func TestCreateIssuesSequentialIDs(t *testing.T) {
	s := NewStore()
	s.Replace([]Leave{{ID: "LR009", StaffID: "D002", Date: day, Status: StatusRejected}})

	l := s.Create("D001", day, "  conference ")
	assert.Equal(t, "LR010", l.ID)
	assert.Equal(t, StatusPending, l.Status)
	assert.Equal(t, "conference", l.Reason)
}

func TestUpdateAndWithdrawRequireOwner(t *testing.T) {
	s := NewStore()
	l := s.Create("D001", day, "conference")

	_, err := s.Update(l.ID, "D002", day.AddDays(1), "hijack")
	assert.ErrorIs(t, err, apperr.ErrOwnershipViolation)

	_, err = s.Withdraw(l.ID, "D002")
	assert.ErrorIs(t, err, apperr.ErrOwnershipViolation)

	updated, err := s.Update(l.ID, "D001", day.AddDays(1), "moved")
	require.NoError(t, err)
	assert.True(t, updated.Date.Equal(day.AddDays(1)))
	assert.Equal(t, "moved", updated.Reason)

	_, err = s.Withdraw(l.ID, "D001")
	require.NoError(t, err)
	_, err = s.Get(l.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveOnlyFromPending(t *testing.T) {
	s := NewStore()
	l := s.Create("D001", day, "")

	approved, err := s.Resolve(l.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.True(t, s.OnLeave("D001", day))

	_, err = s.Resolve(l.ID, StatusApproved)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
	_, err = s.Resolve(l.ID, StatusRejected)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)

	_, err = s.Update(l.ID, "D001", day, "too late")
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)

	_, err = s.CheckPending(l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)

	_, err = s.Resolve("LR404", StatusRejected)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	other := s.Create("D001", day.AddDays(2), "")
	_, err = s.Resolve(other.ID, StatusPending)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
}

func TestFind(t *testing.T) {
	s := NewStore()
	s.Replace([]Leave{
		{ID: "LR002", StaffID: "D001", Date: day, Status: StatusPending},
		{ID: "LR001", StaffID: "D001", Date: day.AddDays(1), Status: StatusApproved},
		{ID: "LR003", StaffID: "D002", Date: day, Status: StatusPending},
	})

	mine := s.Find(Filter{StaffID: "D001"})
	require.Len(t, mine, 2)
	assert.Equal(t, "LR001", mine[0].ID)

	pending := s.Find(Filter{Status: StatusPending})
	assert.Len(t, pending, 2)

	assert.False(t, s.OnLeave("D001", day))
	assert.True(t, s.OnLeave("D001", day.AddDays(1)))
}
