package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/availability"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/patient"
)

func createAppointmentHandler(store *appointment.Store, patients *patient.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := appointment.CreateInput{
			PatientID:       req.PatientID,
			PatientName:     req.PatientName,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Service:         req.Service,
			Status:          appointment.Status(req.Status),
			Notes:           req.Notes,
			Force:           req.Force,
		}

		// Denormalize the patient name at booking time. Blocked slots carry
		// no patient and skip the directory.
		if req.PatientID != "" && req.PatientName == "" {
			p, err := patients.Lookup(req.PatientID)
			if err != nil {
				writeError(w, http.StatusNotFound, "patient_not_found", "no patient with id "+req.PatientID)
				return
			}
			in.PatientName = p.Name
		}

		appt, err := store.Add(r.Context(), in, actorFromRequest(r))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func listAppointmentsHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		switch {
		case q.Get("patient_id") != "":
			writeJSON(w, http.StatusOK, store.GetByPatient(q.Get("patient_id")))
		case q.Get("date") != "":
			writeJSON(w, http.StatusOK, store.GetByDate(q.Get("date")))
		case q.Get("from") != "" && q.Get("to") != "":
			writeJSON(w, http.StatusOK, store.GetByDateRange(q.Get("from"), q.Get("to")))
		default:
			writeError(w, http.StatusBadRequest, "missing_filter",
				"provide date=, from=&to=, or patient_id=")
		}
	}
}

func getAppointmentHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := store.Get(id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func updateAppointmentHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := appointment.UpdateInput{
			PatientID:       req.PatientID,
			PatientName:     req.PatientName,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Service:         req.Service,
			Notes:           req.Notes,
			Force:           req.Force,
		}
		if req.Status != nil {
			st := appointment.Status(*req.Status)
			in.Status = &st
		}

		appt, err := store.Update(r.Context(), id, in, appointment.Action(req.Action), actorFromRequest(r))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func deleteAppointmentHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := store.Delete(r.Context(), id, actorFromRequest(r)); err != nil {
			handleAppointmentError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// conflictCheckHandler exposes the legality predicate so the dashboard can
// warn before submitting.
func conflictCheckHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		duration, err := strconv.Atoi(q.Get("duration"))
		if err != nil || duration <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be a positive integer")
			return
		}

		excludeID := uuid.Nil
		if raw := q.Get("exclude_id"); raw != "" {
			excludeID, err = uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_exclude_id", "exclude_id must be a valid UUID")
				return
			}
		}

		conflict := store.HasConflict(q.Get("date"), q.Get("time"), duration, excludeID)
		writeJSON(w, http.StatusOK, ConflictResponse{Conflict: conflict})
	}
}

func availabilityHandler(facade *availability.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		duration, err := strconv.Atoi(q.Get("duration"))
		if err != nil || duration <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be a positive integer")
			return
		}

		res, err := facade.GetAvailability(q.Get("from"), q.Get("to"), duration)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrConflict):
		writeError(w, http.StatusConflict, "appointment_conflict", "an appointment already exists at this time")
	case errors.Is(err, appointment.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_appointment", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
