package appointment

import "context"

const (
	IDPrefix = "AP"
	IDWidth  = 3
)

// Repository loads and replaces the whole appointment collection.
type Repository interface {
	LoadAll(ctx context.Context) ([]Appointment, error)
	SaveAll(ctx context.Context, appointments []Appointment) error
}
