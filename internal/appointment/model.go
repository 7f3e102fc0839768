// Package appointment owns the authoritative collection of appointments, the
// conflict-detection predicate that decides booking legality, and the
// history/undo ledger recording every mutation.
package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
	// StatusBlocked marks an administrative closure rather than a patient
	// visit. Blocked entries take part in conflict checks like any other
	// appointment but are excluded from patient-facing history.
	StatusBlocked Status = "blocked"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow, StatusBlocked:
		return true
	}
	return false
}

// Appointment is one scheduled (or blocked) slot. Date is a YYYY-MM-DD civil
// date, StartTime a zero-padded HH:MM; the occupied minute interval is
// half-open [start, start+duration).
type Appointment struct {
	ID              uuid.UUID `json:"id"`
	PatientID       string    `json:"patient_id,omitempty"`
	PatientName     string    `json:"patient_name"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Service         string    `json:"service"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateInput is the payload for booking a new appointment.
type CreateInput struct {
	PatientID       string
	PatientName     string
	Date            string
	StartTime       string
	DurationMinutes int
	Service         string
	Status          Status
	Notes           string
	// Force skips the conflict check. The dashboard uses it for deliberate
	// double-booking by an admin who has already seen the warning.
	Force bool
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	PatientID       *string
	PatientName     *string
	Date            *string
	StartTime       *string
	DurationMinutes *int
	Service         *string
	Status          *Status
	Notes           *string
	Force           bool
}

// Action classifies a mutation for the history ledger. Drag and resize are
// calendar gestures the dashboard reports explicitly so the audit trail can
// say "moved" or "resized" instead of a generic "edited".
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionDrag   Action = "drag"
	ActionResize Action = "resize"
)

// HistoryEntry is one immutable audit/undo record. Delete entries carry only
// the Old snapshot, create entries only the New one, everything else both.
type HistoryEntry struct {
	ID            uuid.UUID    `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	Action        Action       `json:"action"`
	AppointmentID uuid.UUID    `json:"appointment_id"`
	Old           *Appointment `json:"old,omitempty"`
	New           *Appointment `json:"new,omitempty"`
	Description   string       `json:"description"`
	ActorName     string       `json:"actor_name,omitempty"`
	ActorRole     string       `json:"actor_role,omitempty"`
}

// Actor identifies who performed a mutation, for the audit trail.
type Actor struct {
	Name string
	Role string
}
