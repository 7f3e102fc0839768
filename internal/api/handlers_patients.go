package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/patient"
)

func listPatientsHandler(dir *patient.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dir.All())
	}
}

func getPatientHandler(dir *patient.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := dir.Lookup(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, patient.ErrPatientNotFound) {
				writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
