package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/leave"
	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

func fileLeaveHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LeaveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		l, err := svc.FileLeave(r.Context(), req.StaffID, req.Date, req.Reason)
		if err != nil {
			handleAppliedError(w, r, err, toLeaveResponse(l))
			return
		}
		writeJSON(w, http.StatusCreated, toLeaveResponse(l))
	}
}

func listLeavesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := leave.Filter{StaffID: q.Get("staff_id")}
		if s := q.Get("status"); s != "" {
			status, err := leave.ParseStatus(s)
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

		all, err := svc.ListLeaves(r.Context(), f)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaveResponses(all))
	}
}

func getLeaveHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.Leave(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaveResponse(l))
	}
}

func updateLeaveHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LeaveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		l, err := svc.UpdateLeave(r.Context(), chi.URLParam(r, "id"), req.StaffID, req.Date, req.Reason)
		if err != nil {
			handleAppliedError(w, r, err, toLeaveResponse(l))
			return
		}
		writeJSON(w, http.StatusOK, toLeaveResponse(l))
	}
}

func withdrawLeaveHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := r.URL.Query().Get("staff_id")
		if staffID == "" {
			writeError(w, http.StatusBadRequest, "missing_staff_id", "staff_id query parameter is required")
			return
		}
		if removed, err := svc.WithdrawLeave(r.Context(), chi.URLParam(r, "id"), staffID); err != nil {
			handleAppliedError(w, r, err, toLeaveResponse(removed))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func approveLeaveHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, cancelled, err := svc.ApproveLeave(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleAppliedError(w, r, err, ApproveLeaveResponse{Leave: toLeaveResponse(l), Cancelled: toAppointmentResponses(cancelled)})
			return
		}
		writeJSON(w, http.StatusOK, ApproveLeaveResponse{
			Leave:     toLeaveResponse(l),
			Cancelled: toAppointmentResponses(cancelled),
		})
	}
}

func rejectLeaveHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.RejectLeave(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleAppliedError(w, r, err, toLeaveResponse(l))
			return
		}
		writeJSON(w, http.StatusOK, toLeaveResponse(l))
	}
}
