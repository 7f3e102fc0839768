package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/officehours"
)

type officeHoursResponse struct {
	Schedule    officehours.Schedule `json:"schedule"`
	LastUpdated time.Time            `json:"last_updated"`
}

func getOfficeHoursHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedule, lastUpdated := svc.Snapshot()
		writeJSON(w, http.StatusOK, officeHoursResponse{Schedule: schedule, LastUpdated: lastUpdated})
	}
}

func slotStatusHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		status := svc.SlotStatus(officehours.Weekday(q.Get("day")), q.Get("time"))
		writeJSON(w, http.StatusOK, map[string]officehours.SlotStatus{"status": status})
	}
}

func setDayOpenHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetDayOpenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		day := officehours.Weekday(chi.URLParam(r, "day"))
		if err := svc.SetDayOpen(r.Context(), day, req.Open); err != nil {
			handleOfficeHoursError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addBlockHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		day := officehours.Weekday(chi.URLParam(r, "day"))
		block, err := svc.AddBlock(r.Context(), day, req.Start, req.End)
		if err != nil {
			handleOfficeHoursError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, block)
	}
}

// validateBlockHandler runs the advisory rule check the dashboard calls
// before saving a block. exclude_id skips the block being edited.
func validateBlockHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		excludeID := uuid.Nil
		if raw := r.URL.Query().Get("exclude_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_exclude_id", "exclude_id must be a valid UUID")
				return
			}
			excludeID = id
		}

		day := officehours.Weekday(chi.URLParam(r, "day"))
		result := svc.ValidateBlock(day, officehours.TimeBlock{Start: req.Start, End: req.End}, excludeID)
		writeJSON(w, http.StatusOK, result)
	}
}

func updateBlockHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, err := uuid.Parse(chi.URLParam(r, "blockID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_block_id", "block id must be a valid UUID")
			return
		}

		var req officehours.BlockUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		day := officehours.Weekday(chi.URLParam(r, "day"))
		block, err := svc.UpdateBlock(r.Context(), day, blockID, req)
		if err != nil {
			handleOfficeHoursError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, block)
	}
}

func removeBlockHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, err := uuid.Parse(chi.URLParam(r, "blockID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_block_id", "block id must be a valid UUID")
			return
		}

		day := officehours.Weekday(chi.URLParam(r, "day"))
		if err := svc.RemoveBlock(r.Context(), day, blockID); err != nil {
			handleOfficeHoursError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func resetOfficeHoursHandler(svc *officehours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ResetToDefaults(r.Context())
		schedule, lastUpdated := svc.Snapshot()
		writeJSON(w, http.StatusOK, officeHoursResponse{Schedule: schedule, LastUpdated: lastUpdated})
	}
}

func handleOfficeHoursError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, officehours.ErrUnknownDay):
		writeError(w, http.StatusNotFound, "unknown_day", err.Error())
	case errors.Is(err, officehours.ErrBlockNotFound):
		writeError(w, http.StatusNotFound, "block_not_found", err.Error())
	case errors.Is(err, officehours.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
