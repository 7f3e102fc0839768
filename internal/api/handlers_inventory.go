package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/inventory"
)

func listInventoryHandler(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.All())
	}
}

func addInventoryHandler(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateInventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		item, err := store.Add(r.Context(), req.Name, req.Quantity, req.MinQuantity, req.Unit)
		if err != nil {
			handleInventoryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func updateInventoryHandler(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_item_id", "id must be a valid UUID")
			return
		}

		var req struct {
			Name        *string `json:"name"`
			Quantity    *int    `json:"quantity"`
			MinQuantity *int    `json:"min_quantity"`
			Unit        *string `json:"unit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		item, err := store.Update(r.Context(), id, inventory.UpdateInput{
			Name:        req.Name,
			Quantity:    req.Quantity,
			MinQuantity: req.MinQuantity,
			Unit:        req.Unit,
		})
		if err != nil {
			handleInventoryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func deleteInventoryHandler(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_item_id", "id must be a valid UUID")
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			handleInventoryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func inventoryHistoryHandler(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.History())
	}
}

func undoInventoryHandler(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_entry_id", "id must be a valid UUID")
			return
		}

		if err := store.Undo(r.Context(), id); err != nil {
			handleInventoryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleInventoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, inventory.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "entry_not_found", err.Error())
	case errors.Is(err, inventory.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_item", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
