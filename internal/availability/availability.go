// Package availability answers "what slots are free in this range" by
// composing the office-hours schedule with the appointment store. It holds no
// state of its own and can be re-derived at any time.
package availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/officehours"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/timeutil"
)

// The fixed working window scanned on half-hour boundaries. Office hours
// narrow it further; the window just bounds the grid the dashboard renders.
const (
	windowStartMinutes = 7 * 60  // 07:00
	windowEndMinutes   = 19 * 60 // 19:00
	slotStepMinutes    = 30
)

// Slot is one (date, time) pairing annotated with its availability.
type Slot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Result lists every slot in the range, available or not, plus a convenience
// count of the available ones.
type Result struct {
	Slots          []Slot `json:"slots"`
	AvailableCount int    `json:"available_count"`
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
}

// Facade composes the two upstream components read-only.
type Facade struct {
	hours *officehours.Service
	appts *appointment.Store
}

func New(hours *officehours.Service, appts *appointment.Store) *Facade {
	return &Facade{hours: hours, appts: appts}
}

// GetAvailability scans every weekday in [dateFrom, dateTo] on half-hour
// boundaries. A slot is available when the clinic is open at that time and an
// appointment of the given duration starting there would not conflict.
func (f *Facade) GetAvailability(dateFrom, dateTo string, durationMinutes int) (Result, error) {
	from, err := timeutil.ParseDate(dateFrom)
	if err != nil {
		return Result{}, err
	}
	to, err := timeutil.ParseDate(dateTo)
	if err != nil {
		return Result{}, err
	}
	if to.Before(from) {
		return Result{}, fmt.Errorf("date range %s..%s is inverted", dateFrom, dateTo)
	}
	if durationMinutes <= 0 {
		return Result{}, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}

	res := Result{
		Slots:    make([]Slot, 0),
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		date := d.Format(timeutil.DateFormat)
		day := weekdayOf(d)

		for m := windowStartMinutes; m < windowEndMinutes; m += slotStepMinutes {
			hhmm := timeutil.FromMinutes(m)
			available := f.hours.IsSlotAvailable(day, hhmm) &&
				!f.appts.HasConflict(date, hhmm, durationMinutes, uuid.Nil)

			res.Slots = append(res.Slots, Slot{Date: date, Time: hhmm, Available: available})
			if available {
				res.AvailableCount++
			}
		}
	}

	return res, nil
}

func weekdayOf(t time.Time) officehours.Weekday {
	switch t.Weekday() {
	case time.Monday:
		return officehours.Monday
	case time.Tuesday:
		return officehours.Tuesday
	case time.Wednesday:
		return officehours.Wednesday
	case time.Thursday:
		return officehours.Thursday
	case time.Friday:
		return officehours.Friday
	case time.Saturday:
		return officehours.Saturday
	default:
		return officehours.Sunday
	}
}
