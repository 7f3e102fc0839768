package api

import (
	"net/http"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
)

type CreateAppointmentRequest struct {
	PatientID       string `json:"patient_id"`
	PatientName     string `json:"patient_name"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Service         string `json:"service"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	Force           bool   `json:"force"`
}

type UpdateAppointmentRequest struct {
	PatientID       *string `json:"patient_id"`
	PatientName     *string `json:"patient_name"`
	Date            *string `json:"date"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	Service         *string `json:"service"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
	Force           bool    `json:"force"`
	// Action tags the history entry: update, drag or resize. Empty means a
	// silent update with no audit record.
	Action string `json:"action"`
}

type ConflictResponse struct {
	Conflict bool `json:"conflict"`
}

type SetDayOpenRequest struct {
	Open bool `json:"is_open"`
}

type BlockRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CreateInventoryRequest struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
	Unit        string `json:"unit"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// actorFromRequest reads the acting admin's identity from the headers the
// dashboard sends with every mutation.
func actorFromRequest(r *http.Request) appointment.Actor {
	return appointment.Actor{
		Name: r.Header.Get("X-Actor-Name"),
		Role: r.Header.Get("X-Actor-Role"),
	}
}
