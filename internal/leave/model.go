package leave

import (
	"context"
	"fmt"
	"strings"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

const (
	IDPrefix = "LR"
	IDWidth  = 3
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown leave status %q", s)
}

type Leave struct {
	ID      string
	StaffID string
	Date    calendar.Date
	Status  Status
	Reason  string
}

type Filter struct {
	StaffID string
	Status  Status
	Date    calendar.Date
}

func (f Filter) Match(l Leave) bool {
	if f.StaffID != "" && l.StaffID != f.StaffID {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if !f.Date.IsZero() && !l.Date.Equal(f.Date) {
		return false
	}
	return true
}

// Repository loads and replaces the whole leave collection.
type Repository interface {
	LoadAll(ctx context.Context) ([]Leave, error)
	SaveAll(ctx context.Context, leaves []Leave) error
}
