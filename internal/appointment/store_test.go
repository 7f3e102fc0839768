package appointment

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/timeutil"
)

func newTestStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()
	mem := kv.NewMemory()
	return NewStore(context.Background(), mem, zerolog.Nop()), mem
}

func mustAdd(t *testing.T, s *Store, date, start string, duration int) Appointment {
	t.Helper()
	appt, err := s.Add(context.Background(), CreateInput{
		PatientID:       "P0001",
		PatientName:     "Jana Novakova",
		Date:            date,
		StartTime:       start,
		DurationMinutes: duration,
		Service:         "Checkup",
	}, Actor{Name: "test", Role: "admin"})
	require.NoError(t, err)
	return appt
}

func TestHasConflictHalfOpenBoundary(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "2026-09-01", "09:00", 60) // ends 10:00

	// Back-to-back: starting exactly where the other ends is legal.
	assert.False(t, s.HasConflict("2026-09-01", "10:00", 30, uuid.Nil))
	// And ending exactly where the other starts.
	assert.False(t, s.HasConflict("2026-09-01", "08:00", 60, uuid.Nil))
}

func TestHasConflictOverlap(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "2026-09-01", "09:00", 60)

	assert.True(t, s.HasConflict("2026-09-01", "09:30", 30, uuid.Nil))
	assert.True(t, s.HasConflict("2026-09-01", "08:30", 60, uuid.Nil))
	// Same interval on another day is fine.
	assert.False(t, s.HasConflict("2026-09-02", "09:30", 30, uuid.Nil))
}

func TestHasConflictIgnoresCancelled(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)

	st := StatusCancelled
	_, err := s.Update(context.Background(), appt.ID, UpdateInput{Status: &st}, "", Actor{})
	require.NoError(t, err)

	assert.False(t, s.HasConflict("2026-09-01", "09:00", 60, uuid.Nil))
}

func TestAddEnforcesConflict(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "2026-09-01", "09:00", 60)

	_, err := s.Add(context.Background(), CreateInput{
		PatientName:     "Petr Svoboda",
		Date:            "2026-09-01",
		StartTime:       "09:30",
		DurationMinutes: 30,
		Service:         "Filling",
	}, Actor{})
	assert.ErrorIs(t, err, ErrConflict)

	// Force is the explicit escape hatch.
	_, err = s.Add(context.Background(), CreateInput{
		PatientName:     "Petr Svoboda",
		Date:            "2026-09-01",
		StartTime:       "09:30",
		DurationMinutes: 30,
		Service:         "Filling",
		Force:           true,
	}, Actor{})
	assert.NoError(t, err)
}

func TestAddRejectsMalformedInput(t *testing.T) {
	s, _ := newTestStore(t)

	for name, in := range map[string]CreateInput{
		"bad date":    {Date: "01.09.2026", StartTime: "09:00", DurationMinutes: 30},
		"bad time":    {Date: "2026-09-01", StartTime: "9:00", DurationMinutes: 30},
		"zero length": {Date: "2026-09-01", StartTime: "09:00", DurationMinutes: 0},
		"bad status":  {Date: "2026-09-01", StartTime: "09:00", DurationMinutes: 30, Status: "weird"},
	} {
		_, err := s.Add(context.Background(), in, Actor{})
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
}

func TestUpdateExcludesItselfFromConflictCheck(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)

	// Stretching within its own interval must not conflict with itself.
	d := 90
	_, err := s.Update(context.Background(), appt.ID, UpdateInput{DurationMinutes: &d}, ActionResize, Actor{})
	assert.NoError(t, err)
}

func TestUpdateConflictsWithOthers(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "2026-09-01", "09:00", 60)
	other := mustAdd(t, s, "2026-09-01", "11:00", 30)

	tm := "09:30"
	_, err := s.Update(context.Background(), other.ID, UpdateInput{StartTime: &tm}, ActionDrag, Actor{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	notes := "x"
	_, err := s.Update(context.Background(), uuid.New(), UpdateInput{Notes: &notes}, "", Actor{})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(context.Background(), uuid.New(), Actor{}), ErrNotFound)
}

func TestSilentUpdateWritesNoHistory(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)
	before := len(s.History())

	notes := "arrived late last time"
	_, err := s.Update(context.Background(), appt.ID, UpdateInput{Notes: &notes}, "", Actor{})
	require.NoError(t, err)

	assert.Len(t, s.History(), before)
}

func TestUpdateHistoryDescriptions(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)

	tm := "10:30"
	_, err := s.Update(context.Background(), appt.ID, UpdateInput{StartTime: &tm}, ActionDrag, Actor{})
	require.NoError(t, err)
	assert.Contains(t, s.History()[0].Description, "moved")

	d := 45
	_, err = s.Update(context.Background(), appt.ID, UpdateInput{DurationMinutes: &d}, ActionResize, Actor{})
	require.NoError(t, err)
	assert.Contains(t, s.History()[0].Description, "resized")

	svc := "Whitening"
	_, err = s.Update(context.Background(), appt.ID, UpdateInput{Service: &svc}, ActionUpdate, Actor{})
	require.NoError(t, err)
	assert.Contains(t, s.History()[0].Description, "edited")
}

func TestUndoDeleteRestoresAppointment(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)

	require.NoError(t, s.Delete(context.Background(), appt.ID, Actor{}))
	_, err := s.Get(appt.ID)
	require.ErrorIs(t, err, ErrNotFound)

	entry := s.History()[0]
	require.Equal(t, ActionDelete, entry.Action)
	require.NoError(t, s.Undo(context.Background(), entry.ID))

	restored, err := s.Get(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt, restored)

	// The consumed entry is gone.
	_, found := s.history.find(entry.ID)
	assert.False(t, found)
	assert.ErrorIs(t, s.Undo(context.Background(), entry.ID), ErrEntryNotFound)
}

func TestUndoDoesNotRelog(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)

	tm := "13:00"
	_, err := s.Update(context.Background(), appt.ID, UpdateInput{StartTime: &tm}, ActionDrag, Actor{})
	require.NoError(t, err)

	before := len(s.History())
	entry := s.History()[0]
	require.NoError(t, s.Undo(context.Background(), entry.ID))

	// Exactly one entry consumed, none added.
	assert.Len(t, s.History(), before-1)

	got, err := s.Get(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.StartTime)
}

func TestUndoCreateRemovesAppointment(t *testing.T) {
	s, _ := newTestStore(t)
	appt := mustAdd(t, s, "2026-09-01", "09:00", 60)

	entry := s.History()[0]
	require.Equal(t, ActionCreate, entry.Action)
	require.NoError(t, s.Undo(context.Background(), entry.ID))

	_, err := s.Get(appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueriesSorted(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "2026-09-02", "09:00", 30)
	mustAdd(t, s, "2026-09-01", "14:00", 30)
	mustAdd(t, s, "2026-09-01", "08:00", 30)

	day := s.GetByDate("2026-09-01")
	require.Len(t, day, 2)
	assert.Equal(t, "08:00", day[0].StartTime)
	assert.Equal(t, "14:00", day[1].StartTime)

	all := s.GetByDateRange("2026-09-01", "2026-09-02")
	require.Len(t, all, 3)
	assert.Equal(t, "2026-09-01", all[0].Date)
	assert.Equal(t, "2026-09-02", all[2].Date)

	// Patient history is most-recent-first.
	byPatient := s.GetByPatient("P0001")
	require.Len(t, byPatient, 3)
	assert.Equal(t, "2026-09-02", byPatient[0].Date)
}

func TestGetByPatientExcludesBlocked(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "2026-09-01", "09:00", 30)

	_, err := s.Add(context.Background(), CreateInput{
		PatientID:       "P0001",
		Date:            "2026-09-01",
		StartTime:       "12:00",
		DurationMinutes: 60,
		Service:         "Lunch closure",
		Status:          StatusBlocked,
	}, Actor{})
	require.NoError(t, err)

	assert.Len(t, s.GetByPatient("P0001"), 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()

	s1 := NewStore(ctx, mem, zerolog.Nop())
	appt, err := s1.Add(ctx, CreateInput{
		PatientID:       "P0002",
		PatientName:     "Karel Dvorak",
		Date:            "2026-09-03",
		StartTime:       "10:00",
		DurationMinutes: 45,
		Service:         "Root canal",
	}, Actor{Name: "dr-novak", Role: "dentist"})
	require.NoError(t, err)

	s2 := NewStore(ctx, mem, zerolog.Nop())
	got, err := s2.Get(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.PatientName, got.PatientName)
	require.Len(t, s2.History(), 1)
	assert.Equal(t, ActionCreate, s2.History()[0].Action)
}

func TestCorruptPayloadFallsBackToEmpty(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, appointmentsKey, []byte("{not json")))
	require.NoError(t, mem.Set(ctx, historyKey, []byte("also not json")))

	s := NewStore(ctx, mem, zerolog.Nop())
	assert.Empty(t, s.GetByDateRange("0000-01-01", "9999-12-31"))
	assert.Empty(t, s.History())
}

// Randomized check of the no-overlap invariant: insert random slots, let the
// store accept or reject them, then verify no accepted pair overlaps.
func TestNoOverlapInvariantProperty(t *testing.T) {
	s, _ := newTestStore(t)
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	dates := []string{"2026-09-01", "2026-09-02", "2026-09-03"}
	durations := []int{30, 45, 60, 90}

	for i := 0; i < 300; i++ {
		date := dates[rng.Intn(len(dates))]
		start := 8*60 + 15*rng.Intn(32) // 08:00..15:45
		_, err := s.Add(ctx, CreateInput{
			PatientName:     "property",
			Date:            date,
			StartTime:       timeutil.FromMinutes(start),
			DurationMinutes: durations[rng.Intn(len(durations))],
			Service:         "Checkup",
		}, Actor{})
		if err != nil {
			require.ErrorIs(t, err, ErrConflict)
		}
	}

	for _, date := range dates {
		appts := s.GetByDate(date)
		for i := 0; i < len(appts); i++ {
			for j := i + 1; j < len(appts); j++ {
				aStart, err := timeutil.ToMinutes(appts[i].StartTime)
				require.NoError(t, err)
				bStart, err := timeutil.ToMinutes(appts[j].StartTime)
				require.NoError(t, err)
				assert.False(t, timeutil.Overlaps(
					aStart, aStart+appts[i].DurationMinutes,
					bStart, bStart+appts[j].DurationMinutes,
				), "accepted appointments %s+%dm and %s+%dm overlap on %s",
					appts[i].StartTime, appts[i].DurationMinutes,
					appts[j].StartTime, appts[j].DurationMinutes, date)
			}
		}
	}
}
