package csvstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hackgods/clinic-scheduling/internal/directory"
)

// UserRepository keeps staff and patients in two files.
type UserRepository struct {
	staff    *table
	patients *table
}

func NewUserRepository(dir string) *UserRepository {
	return &UserRepository{
		staff:    newTable(dir, StaffFile, "StaffID", "Name", "Role", "Gender", "Age"),
		patients: newTable(dir, PatientsFile, "PatientID", "Name", "DateOfBirth", "Gender", "BloodType", "Contact"),
	}
}

func (r *UserRepository) LoadAll(_ context.Context) ([]directory.User, error) {
	staffRows, err := r.staff.read()
	if err != nil {
		return nil, err
	}
	patientRows, err := r.patients.read()
	if err != nil {
		return nil, err
	}

	out := make([]directory.User, 0, len(staffRows)+len(patientRows))
	for i, row := range staffRows {
		role, err := directory.ParseRole(row[2])
		if err != nil {
			return nil, rowError(r.staff.path, i+2, err)
		}
		if !role.IsStaff() {
			return nil, rowError(r.staff.path, i+2, fmt.Errorf("role %s is not a staff role", role))
		}
		age := 0
		if s := strings.TrimSpace(row[4]); s != "" {
			age, err = strconv.Atoi(s)
			if err != nil {
				return nil, rowError(r.staff.path, i+2, fmt.Errorf("invalid age %q", row[4]))
			}
		}
		out = append(out, directory.User{
			ID:     strings.TrimSpace(row[0]),
			Name:   row[1],
			Role:   role,
			Gender: row[3],
			Staff:  &directory.StaffProfile{Age: age},
		})
	}
	for _, row := range patientRows {
		out = append(out, directory.User{
			ID:     strings.TrimSpace(row[0]),
			Name:   row[1],
			Role:   directory.RolePatient,
			Gender: row[3],
			Patient: &directory.PatientProfile{
				DateOfBirth: row[2],
				BloodType:   row[4],
				Contact:     row[5],
			},
		})
	}
	return out, nil
}

func (r *UserRepository) SaveAll(_ context.Context, users []directory.User) error {
	sorted := append([]directory.User(nil), users...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var staffRows, patientRows [][]string
	for _, u := range sorted {
		if u.Role == directory.RolePatient {
			p := directory.PatientProfile{}
			if u.Patient != nil {
				p = *u.Patient
			}
			patientRows = append(patientRows, []string{u.ID, u.Name, p.DateOfBirth, u.Gender, p.BloodType, p.Contact})
			continue
		}
		age := ""
		if u.Staff != nil {
			age = strconv.Itoa(u.Staff.Age)
		}
		staffRows = append(staffRows, []string{u.ID, u.Name, string(u.Role), u.Gender, age})
	}

	if err := r.staff.write(staffRows); err != nil {
		return err
	}
	return r.patients.write(patientRows)
}

// LoadDirectory reads both user files into an in-memory directory.
func (r *UserRepository) LoadDirectory(ctx context.Context) (*directory.Memory, error) {
	users, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return directory.NewMemory(users...), nil
}
