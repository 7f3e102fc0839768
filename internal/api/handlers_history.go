package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
)

func listHistoryHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := appointment.HistoryFilter{
			Action:   appointment.Action(q.Get("action")),
			Text:     q.Get("q"),
			DateFrom: q.Get("from"),
			DateTo:   q.Get("to"),
		}
		writeJSON(w, http.StatusOK, store.QueryHistory(filter))
	}
}

func undoHistoryHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_entry_id", "id must be a valid UUID")
			return
		}

		if err := store.Undo(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, appointment.ErrEntryNotFound):
				writeError(w, http.StatusNotFound, "entry_not_found", err.Error())
			case errors.Is(err, appointment.ErrNotFound):
				writeError(w, http.StatusConflict, "appointment_gone",
					"the appointment this entry refers to no longer exists")
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearHistoryHandler(store *appointment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.ClearHistory(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}
