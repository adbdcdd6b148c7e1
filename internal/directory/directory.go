package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
)

type Role string

const (
	RolePatient       Role = "PATIENT"
	RoleDoctor        Role = "DOCTOR"
	RolePharmacist    Role = "PHARMACIST"
	RoleAdministrator Role = "ADMINISTRATOR"
)

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RolePatient, RoleDoctor, RolePharmacist, RoleAdministrator:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) IsStaff() bool {
	return r == RoleDoctor || r == RolePharmacist || r == RoleAdministrator
}

type StaffProfile struct {
	Age int
}

type PatientProfile struct {
	DateOfBirth string
	BloodType   string
	Contact     string
}

// User is a role-tagged record. Exactly one of Staff or Patient is set, matching Role.
type User struct {
	ID      string
	Name    string
	Role    Role
	Gender  string
	Staff   *StaffProfile
	Patient *PatientProfile
}

// Directory resolves the people the scheduling core refers to by id.
type Directory interface {
	FindDoctorByID(ctx context.Context, id string) (User, error)
	FindPatientByID(ctx context.Context, id string) (User, error)
	FindStaffByID(ctx context.Context, id string) (User, error)
}

// Memory is a Directory over an in-process set of users.
type Memory struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemory(users ...User) *Memory {
	m := &Memory{users: make(map[string]User, len(users))}
	m.Replace(users)
	return m
}

func (m *Memory) Replace(users []User) {
	idx := make(map[string]User, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	m.mu.Lock()
	m.users = idx
	m.mu.Unlock()
}

func (m *Memory) Users() []User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out
}

func (m *Memory) FindDoctorByID(_ context.Context, id string) (User, error) {
	return m.find(id, "doctor", func(r Role) bool { return r == RoleDoctor })
}

func (m *Memory) FindPatientByID(_ context.Context, id string) (User, error) {
	return m.find(id, "patient", func(r Role) bool { return r == RolePatient })
}

func (m *Memory) FindStaffByID(_ context.Context, id string) (User, error) {
	return m.find(id, "staff member", Role.IsStaff)
}

func (m *Memory) find(id, what string, accept func(Role) bool) (User, error) {
	m.mu.RLock()
	u, ok := m.users[id]
	m.mu.RUnlock()

	if !ok || !accept(u.Role) {
		return User{}, apperr.NotFound(id, "%s %s not found", what, id)
	}
	return u, nil
}
