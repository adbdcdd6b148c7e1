package main

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func TestGenerateUsers(t *testing.T) {
	users := generateUsers(gofakeit.New(1), seedConfig{Doctors: 3, Pharmacists: 1, Admins: 1, Patients: 5})
	require.Len(t, users, 10)

	roles := map[directory.Role][]string{}
	for _, u := range users {
		roles[u.Role] = append(roles[u.Role], u.ID)
		if u.Role == directory.RolePatient {
			assert.NotNil(t, u.Patient)
			assert.Nil(t, u.Staff)
		} else {
			assert.NotNil(t, u.Staff)
		}
	}
	assert.Equal(t, []string{"D001", "D002", "D003"}, roles[directory.RoleDoctor])
	assert.Equal(t, []string{"PH01"}, roles[directory.RolePharmacist])
	assert.Equal(t, []string{"A01"}, roles[directory.RoleAdministrator])
	assert.Len(t, roles[directory.RolePatient], 5)
}

func TestGenerateSchedulesRespectSpacing(t *testing.T) {
	f := gofakeit.New(7)
	users := generateUsers(f, seedConfig{Doctors: 4, Patients: 1})
	monday := calendar.NewDate(2025, time.March, 3)

	schedules := generateSchedules(f, users, monday, 14, 30*time.Minute)
	require.NotEmpty(t, schedules)

	for _, sc := range schedules {
		assert.NotEqual(t, time.Saturday, sc.Date.Weekday())
		assert.NotEqual(t, time.Sunday, sc.Date.Weekday())
		assert.NoError(t, schedule.ValidateSpacing(sc.DoctorID, sc.Slots, 30*time.Minute))
	}
}
