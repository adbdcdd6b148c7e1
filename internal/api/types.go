package api

import (
	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type SlotsRequest struct {
	Slots []calendar.TimeOfDay `json:"slots"`
}

type ScheduleResponse struct {
	DoctorID string               `json:"doctor_id"`
	Date     calendar.Date        `json:"date"`
	Slots    []calendar.TimeOfDay `json:"slots"`
}

type CreateAppointmentRequest struct {
	PatientID string             `json:"patient_id"`
	DoctorID  string             `json:"doctor_id"`
	Date      calendar.Date      `json:"date"`
	Time      calendar.TimeOfDay `json:"time"`
}

type AcceptAppointmentRequest struct {
	DoctorID string `json:"doctor_id"`
	Status   string `json:"status,omitempty"` // SCHEDULED (default) or CONFIRMED
}

type DoctorActionRequest struct {
	DoctorID string `json:"doctor_id"`
}

type PatientActionRequest struct {
	PatientID string `json:"patient_id"`
}

type RescheduleRequest struct {
	PatientID string             `json:"patient_id"`
	Date      calendar.Date      `json:"date"`
	Time      calendar.TimeOfDay `json:"time"`
}

type OutcomeRequest struct {
	DoctorID string `json:"doctor_id"`
	appointment.Outcome
}

type AppointmentResponse struct {
	ID        string               `json:"id"`
	PatientID string               `json:"patient_id"`
	DoctorID  string               `json:"doctor_id"`
	Date      calendar.Date        `json:"date"`
	Time      calendar.TimeOfDay   `json:"time"`
	Status    string               `json:"status"`
	Outcome   *appointment.Outcome `json:"outcome,omitempty"`
}

type LeaveRequest struct {
	StaffID string        `json:"staff_id"`
	Date    calendar.Date `json:"date"`
	Reason  string        `json:"reason"`
}

type LeaveResponse struct {
	ID      string        `json:"id"`
	StaffID string        `json:"staff_id"`
	Date    calendar.Date `json:"date"`
	Status  string        `json:"status"`
	Reason  string        `json:"reason,omitempty"`
}

type ApproveLeaveResponse struct {
	Leave     LeaveResponse         `json:"leave"`
	Cancelled []AppointmentResponse `json:"cancelled_appointments"`
}

type PurgeResponse struct {
	Purged int `json:"purged"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	ID      string `json:"id,omitempty"`
	// Applied is set on persistence_failure: the change took effect but was not saved.
	Applied any `json:"applied,omitempty"`
}

func toScheduleResponse(sc schedule.Schedule) ScheduleResponse {
	slots := sc.Slots
	if slots == nil {
		slots = []calendar.TimeOfDay{}
	}
	return ScheduleResponse{DoctorID: sc.DoctorID, Date: sc.Date, Slots: slots}
}

func toScheduleResponses(all []schedule.Schedule) []ScheduleResponse {
	out := make([]ScheduleResponse, len(all))
	for i, sc := range all {
		out[i] = toScheduleResponse(sc)
	}
	return out
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Time:      a.Time,
		Status:    string(a.Status),
	}
	if a.Status == appointment.StatusCompleted {
		outcome := a.Outcome
		resp.Outcome = &outcome
	}
	return resp
}

func toAppointmentResponses(all []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(all))
	for i, a := range all {
		out[i] = toAppointmentResponse(a)
	}
	return out
}

func toLeaveResponse(l leave.Leave) LeaveResponse {
	return LeaveResponse{
		ID:      l.ID,
		StaffID: l.StaffID,
		Date:    l.Date,
		Status:  string(l.Status),
		Reason:  l.Reason,
	}
}

func toLeaveResponses(all []leave.Leave) []LeaveResponse {
	out := make([]LeaveResponse, len(all))
	for i, l := range all {
		out[i] = toLeaveResponse(l)
	}
	return out
}
