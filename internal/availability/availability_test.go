package availability

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/officehours"
)

// 2026-09-07 is a Monday, 2026-09-12/13 a weekend.
func newTestFacade(t *testing.T) (*Facade, *appointment.Store, *officehours.Service) {
	t.Helper()
	ctx := context.Background()
	mem := kv.NewMemory()
	appts := appointment.NewStore(ctx, mem, zerolog.Nop())
	hours := officehours.NewService(ctx, mem, zerolog.Nop())
	return New(hours, appts), appts, hours
}

func TestGetAvailabilitySingleDay(t *testing.T) {
	facade, _, _ := newTestFacade(t)

	res, err := facade.GetAvailability("2026-09-07", "2026-09-07", 30)
	require.NoError(t, err)

	// The scan window is 07:00-19:00 on half hours: 24 slots.
	assert.Len(t, res.Slots, 24)
	// Default hours are 08:00-16:00: 16 of them available.
	assert.Equal(t, 16, res.AvailableCount)

	byTime := make(map[string]bool)
	for _, s := range res.Slots {
		byTime[s.Time] = s.Available
	}
	assert.False(t, byTime["07:00"], "before opening")
	assert.True(t, byTime["08:00"])
	assert.True(t, byTime["15:30"])
	assert.False(t, byTime["16:00"], "after closing")
}

func TestGetAvailabilitySkipsWeekends(t *testing.T) {
	facade, _, _ := newTestFacade(t)

	// Friday through Monday: only Friday and Monday are scanned.
	res, err := facade.GetAvailability("2026-09-11", "2026-09-14", 30)
	require.NoError(t, err)

	dates := make(map[string]struct{})
	for _, s := range res.Slots {
		dates[s.Date] = struct{}{}
	}
	assert.Len(t, dates, 2)
	_, hasSaturday := dates["2026-09-12"]
	assert.False(t, hasSaturday)
}

func TestGetAvailabilityReflectsBookings(t *testing.T) {
	facade, appts, _ := newTestFacade(t)

	_, err := appts.Add(context.Background(), appointment.CreateInput{
		PatientName:     "Jana Novakova",
		Date:            "2026-09-07",
		StartTime:       "09:00",
		DurationMinutes: 60,
		Service:         "Checkup",
	}, appointment.Actor{})
	require.NoError(t, err)

	res, err := facade.GetAvailability("2026-09-07", "2026-09-07", 30)
	require.NoError(t, err)

	byTime := make(map[string]bool)
	for _, s := range res.Slots {
		byTime[s.Time] = s.Available
	}
	assert.False(t, byTime["09:00"])
	assert.False(t, byTime["09:30"])
	assert.True(t, byTime["10:00"], "half-open: next slot starts where the booking ends")
	assert.True(t, byTime["08:30"], "a 30-minute probe ending at 09:00 does not conflict")
}

func TestGetAvailabilityDurationWidensConflicts(t *testing.T) {
	facade, appts, _ := newTestFacade(t)

	_, err := appts.Add(context.Background(), appointment.CreateInput{
		PatientName:     "Jana Novakova",
		Date:            "2026-09-07",
		StartTime:       "09:00",
		DurationMinutes: 30,
		Service:         "Checkup",
	}, appointment.Actor{})
	require.NoError(t, err)

	res, err := facade.GetAvailability("2026-09-07", "2026-09-07", 60)
	require.NoError(t, err)

	byTime := make(map[string]bool)
	for _, s := range res.Slots {
		byTime[s.Time] = s.Available
	}
	// A 60-minute appointment starting 08:30 would run into the 09:00 booking.
	assert.False(t, byTime["08:30"])
	assert.True(t, byTime["08:00"])
}

func TestGetAvailabilityRejectsBadInput(t *testing.T) {
	facade, _, _ := newTestFacade(t)

	_, err := facade.GetAvailability("2026-09-08", "2026-09-07", 30)
	assert.Error(t, err, "inverted range")

	_, err = facade.GetAvailability("2026-09-07", "2026-09-07", 0)
	assert.Error(t, err, "non-positive duration")

	_, err = facade.GetAvailability("bogus", "2026-09-07", 30)
	assert.Error(t, err)
}
