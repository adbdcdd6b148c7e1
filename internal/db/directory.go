package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/directory"
)

// Directory looks people up in the users table.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func scanUser(row pgx.Row) (directory.User, error) {
	var (
		u       directory.User
		role    string
		age     *int32
		dob     string
		blood   string
		contact string
	)
	err := row.Scan(&u.ID, &u.Name, &role, &u.Gender, &age, &dob, &blood, &contact)
	if err != nil {
		return directory.User{}, err
	}

	if u.Role, err = directory.ParseRole(role); err != nil {
		return directory.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	if u.Role == directory.RolePatient {
		u.Patient = &directory.PatientProfile{DateOfBirth: dob, BloodType: blood, Contact: contact}
		return u, nil
	}
	u.Staff = &directory.StaffProfile{}
	if age != nil {
		u.Staff.Age = int(*age)
	}
	return u, nil
}

const selectUser = `
	SELECT id, name, role, gender, age, date_of_birth, blood_type, contact
	FROM users
	WHERE id = $1 AND role = ANY($2)
`

func (d *Directory) find(ctx context.Context, id, what string, roles ...directory.Role) (directory.User, error) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	u, err := scanUser(d.pool.QueryRow(ctx, selectUser, id, names))
	if errors.Is(err, pgx.ErrNoRows) {
		return directory.User{}, apperr.NotFound(id, "%s %s not found", what, id)
	}
	if err != nil {
		return directory.User{}, fmt.Errorf("load %s %s: %w", what, id, err)
	}
	return u, nil
}

func (d *Directory) FindDoctorByID(ctx context.Context, id string) (directory.User, error) {
	return d.find(ctx, id, "doctor", directory.RoleDoctor)
}

func (d *Directory) FindPatientByID(ctx context.Context, id string) (directory.User, error) {
	return d.find(ctx, id, "patient", directory.RolePatient)
}

func (d *Directory) FindStaffByID(ctx context.Context, id string) (directory.User, error) {
	return d.find(ctx, id, "staff member", directory.RoleDoctor, directory.RolePharmacist, directory.RoleAdministrator)
}

// Users lists everyone ordered by id.
func (d *Directory) Users(ctx context.Context) ([]directory.User, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, role, gender, age, date_of_birth, blood_type, contact
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var result []directory.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertUsers inserts or updates users by id.
func (d *Directory) UpsertUsers(ctx context.Context, users []directory.User) error {
	return withTx(ctx, d.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range users {
			var (
				age                 *int32
				dob, blood, contact string
			)
			if u.Staff != nil {
				a := int32(u.Staff.Age)
				age = &a
			}
			if u.Patient != nil {
				dob, blood, contact = u.Patient.DateOfBirth, u.Patient.BloodType, u.Patient.Contact
			}
			batch.Queue(`
				INSERT INTO users (id, name, role, gender, age, date_of_birth, blood_type, contact)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE
				SET name = EXCLUDED.name,
				    role = EXCLUDED.role,
				    gender = EXCLUDED.gender,
				    age = EXCLUDED.age,
				    date_of_birth = EXCLUDED.date_of_birth,
				    blood_type = EXCLUDED.blood_type,
				    contact = EXCLUDED.contact
			`, u.ID, u.Name, string(u.Role), u.Gender, age, dob, blood, contact)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert users: %w", err)
		}
		return nil
	})
}
