package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

func requestAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.PatientID == "" || req.DoctorID == "" {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "patient_id and doctor_id are required")
			return
		}

		appt, err := svc.RequestAppointment(r.Context(), req.PatientID, req.DoctorID, req.Date, req.Time)
		if err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(appt))
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := appointment.Filter{
			DoctorID:  q.Get("doctor_id"),
			PatientID: q.Get("patient_id"),
		}
		if s := q.Get("status"); s != "" {
			status, err := appointment.ParseStatus(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
				return
			}
			f.Status = status
		}
		if s := q.Get("date"); s != "" {
			d, err := calendar.ParseDate(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			f.Date = d
		}

		all, err := svc.ListAppointments(r.Context(), f)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(all))
	}
}

func getAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.Appointment(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func acceptAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AcceptAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var status appointment.Status
		if req.Status != "" {
			s, err := appointment.ParseStatus(req.Status)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
				return
			}
			status = s
		}

		appt, err := svc.AcceptAppointment(r.Context(), chi.URLParam(r, "id"), req.DoctorID, status)
		if err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(appt))
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func declineAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorActionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appt, err := svc.DeclineAppointment(r.Context(), chi.URLParam(r, "id"), req.DoctorID)
		if err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(appt))
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientActionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appt, err := svc.CancelAppointment(r.Context(), chi.URLParam(r, "id"), req.PatientID)
		if err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(appt))
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RescheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appt, err := svc.RescheduleAppointment(r.Context(), chi.URLParam(r, "id"), req.PatientID, req.Date, req.Time)
		if err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(appt))
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func recordOutcomeHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OutcomeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appt, err := svc.RecordOutcome(r.Context(), chi.URLParam(r, "id"), req.DoctorID, req.Outcome)
		if err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(appt))
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func purgeAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if removed, err := svc.PurgeAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleAppliedError(w, r, err, toAppointmentResponse(removed))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
