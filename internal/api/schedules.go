package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

func dateParam(w http.ResponseWriter, r *http.Request, name string) (calendar.Date, bool) {
	d, err := calendar.ParseDate(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return calendar.Date{}, false
	}
	return d, true
}

func listSchedulesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListSchedules(r.Context(), chi.URLParam(r, "doctorID"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponses(all))
	}
}

func getScheduleHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		sc, err := svc.Schedule(r.Context(), chi.URLParam(r, "doctorID"), date)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponse(sc))
	}
}

func setAvailabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		var req SlotsRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		sc, err := svc.SetAvailability(r.Context(), chi.URLParam(r, "doctorID"), date, req.Slots)
		if err != nil {
			handleAppliedError(w, r, err, toScheduleResponse(sc))
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponse(sc))
	}
}

func addSlotsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		var req SlotsRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		sc, err := svc.AddSlots(r.Context(), chi.URLParam(r, "doctorID"), date, req.Slots)
		if err != nil {
			handleAppliedError(w, r, err, toScheduleResponse(sc))
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponse(sc))
	}
}

func removeSlotHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		t, err := calendar.ParseTimeOfDay(chi.URLParam(r, "time"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
			return
		}

		if err := svc.RemoveSlot(r.Context(), chi.URLParam(r, "doctorID"), date, t); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func availableSlotsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := calendar.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		all, err := svc.AvailableSlots(r.Context(), date)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponses(all))
	}
}

func purgeSchedulesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.PurgeExpiredSchedules(r.Context())
		if err != nil {
			handleAppliedError(w, r, err, PurgeResponse{Purged: n})
			return
		}
		writeJSON(w, http.StatusOK, PurgeResponse{Purged: n})
	}
}

func persistHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Persist(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
