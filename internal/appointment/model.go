package appointment

import (
	"fmt"
	"strings"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
)

type Status string

const (
	StatusNotScheduled Status = "NOT_SCHEDULED"
	StatusPending      Status = "PENDING"
	StatusScheduled    Status = "SCHEDULED"
	StatusConfirmed    Status = "CONFIRMED"
	StatusCompleted    Status = "COMPLETED"
	StatusCancelled    Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusNotScheduled, StatusPending, StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, nil
	case "":
		return StatusNotScheduled, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// IsActive reports whether the appointment still holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusScheduled || s == StatusConfirmed
}

// IsAccepted reports whether the doctor has accepted the request. SCHEDULED and
// CONFIRMED are equivalent outcomes of an accept.
func (s Status) IsAccepted() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Legal edges:
//
//	NOT_SCHEDULED → PENDING
//	PENDING → SCHEDULED | CONFIRMED | CANCELLED
//	SCHEDULED | CONFIRMED → COMPLETED | CANCELLED
var transitions = map[Status][]Status{
	StatusNotScheduled: {StatusPending},
	StatusPending:      {StatusScheduled, StatusConfirmed, StatusCancelled},
	StatusScheduled:    {StatusCompleted, StatusCancelled},
	StatusConfirmed:    {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Outcome is filled in only when the appointment is completed.
type Outcome struct {
	ConsultationNotes     string `json:"consultation_notes"`
	PrescribedMedications string `json:"prescribed_medications"`
	ServiceType           string `json:"service_type"`
}

type Appointment struct {
	ID        string
	PatientID string
	DoctorID  string
	Date      calendar.Date
	Time      calendar.TimeOfDay
	Status    Status
	Outcome   Outcome
}

func (a Appointment) Slot() string {
	return a.Date.String() + " " + a.Time.String()
}

// Filter narrows ListAppointments; zero fields match everything.
type Filter struct {
	DoctorID  string
	PatientID string
	Status    Status
	Date      calendar.Date
}

func (f Filter) Match(a Appointment) bool {
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if !f.Date.IsZero() && !a.Date.Equal(f.Date) {
		return false
	}
	return true
}
