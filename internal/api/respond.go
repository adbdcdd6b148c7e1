package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/lock"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
		return false
	}
	return true
}

// handleError maps a service failure to a status code and error code.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, err, nil)
}

// handleAppliedError is handleError for mutations. A persistence failure leaves the
// change applied in memory, so the 503 body carries the applied result.
func handleAppliedError(w http.ResponseWriter, r *http.Request, err error, applied any) {
	writeServiceError(w, r, err, applied)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, applied any) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindSlotUnavailable, apperr.KindInvalidStateTransition:
			status = http.StatusConflict
		case apperr.KindOwnershipViolation:
			status = http.StatusForbidden
		case apperr.KindInvalidScheduleSpacing:
			status = http.StatusUnprocessableEntity
		case apperr.KindInvalidInput:
			status = http.StatusBadRequest
		case apperr.KindPersistenceFailure:
			status = http.StatusServiceUnavailable
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("change applied but not saved")
		}
		resp := ErrorResponse{Error: appErr.Kind.String(), Details: err.Error(), ID: appErr.ID}
		if appErr.Kind == apperr.KindPersistenceFailure {
			resp.Applied = applied
		}
		writeJSON(w, status, resp)
		return
	}

	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		writeError(w, http.StatusConflict, "busy", "another operation is in progress, please retry shortly")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
