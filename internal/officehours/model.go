// Package officehours holds the clinic's recurring weekly availability: per
// weekday, whether the clinic is open and which time blocks accept bookings.
package officehours

import (
	"github.com/google/uuid"
)

// Weekday keys the schedule map. Lowercase names are the wire format the
// dashboard stores and renders.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists all days in calendar order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// TimeBlock is one contiguous open interval within a day. Start and End are
// zero-padded HH:MM; the interval is half-open [Start, End).
type TimeBlock struct {
	ID    uuid.UUID `json:"id"`
	Start string    `json:"start"`
	End   string    `json:"end"`
}

// DaySchedule is one weekday's availability. When Open is false the block
// list is irrelevant and the whole day is closed.
type DaySchedule struct {
	Open   bool        `json:"is_open"`
	Blocks []TimeBlock `json:"blocks"`
}

// Schedule maps every weekday to its DaySchedule.
type Schedule map[Weekday]DaySchedule

// SlotStatus is the three-way availability answer for one (day, time) pair,
// letting the dashboard distinguish "clinic shut" from "gap between blocks".
type SlotStatus string

const (
	SlotAvailable    SlotStatus = "available"
	SlotClosed       SlotStatus = "closed"
	SlotOutsideHours SlotStatus = "outside-hours"
)

// ValidationResult carries every rule a candidate block violates, not just
// the first, so the caller can render all errors at once. Validation is
// returned as data, never as a Go error.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// BlockUpdate is a partial update to an existing block. Nil fields are left
// untouched.
type BlockUpdate struct {
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
}

// DefaultSchedule returns the seeded schedule: Mon-Fri 08:00-16:00, weekends
// closed.
func DefaultSchedule() Schedule {
	s := make(Schedule, len(Weekdays))
	for _, day := range Weekdays {
		switch day {
		case Saturday, Sunday:
			s[day] = DaySchedule{Open: false, Blocks: []TimeBlock{}}
		default:
			s[day] = DaySchedule{
				Open:   true,
				Blocks: []TimeBlock{{ID: uuid.New(), Start: "08:00", End: "16:00"}},
			}
		}
	}
	return s
}
