// Package timeutil handles the zero-padded HH:MM clock strings used across
// the scheduling core. Times are converted to minutes-since-midnight at the
// boundary so that all interval arithmetic happens on integers.
package timeutil

import (
	"fmt"
	"time"
)

const (
	// TimeFormat is the wire format for clock times.
	TimeFormat = "15:04"
	// DateFormat is the wire format for civil dates.
	DateFormat = "2006-01-02"
)

// ToMinutes parses a zero-padded HH:MM string into minutes since midnight.
// Unpadded forms like "8:00" are rejected even though time.Parse would accept
// them, so every caller sees the same five-character wire format.
func ToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 {
		return 0, fmt.Errorf("parse time %q: want zero-padded HH:MM", hhmm)
	}
	t, err := time.Parse(TimeFormat, hhmm)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FromMinutes formats minutes since midnight as a zero-padded HH:MM string.
func FromMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// IsValidTime reports whether hhmm is a well-formed zero-padded HH:MM string.
func IsValidTime(hhmm string) bool {
	if len(hhmm) != 5 {
		return false
	}
	_, err := time.Parse(TimeFormat, hhmm)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return d, nil
}

// IsValidDate reports whether date is a well-formed YYYY-MM-DD string.
func IsValidDate(date string) bool {
	if len(date) != 10 {
		return false
	}
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// Overlaps reports whether the half-open minute intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap, so back-to-back
// bookings are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
