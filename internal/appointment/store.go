package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/timeutil"
)

const (
	appointmentsKey = "dental:appointments"
	historyKey      = "dental:appointment-history"
)

var (
	// ErrConflict means the proposed slot overlaps an existing appointment.
	ErrConflict = errors.New("appointment conflicts with an existing booking")
	// ErrNotFound means the appointment id is unknown.
	ErrNotFound = errors.New("appointment not found")
	// ErrEntryNotFound means the history entry id is unknown (or already
	// consumed by an earlier undo).
	ErrEntryNotFound = errors.New("history entry not found")
	// ErrInvalidInput means a date, time, duration or status failed
	// structural validation.
	ErrInvalidInput = errors.New("invalid appointment input")
)

// Store is the single owner of the appointment collection and its history
// ledger. All mutations are re-validated against the no-overlap invariant and
// recorded in the ledger; the in-memory state is flushed to durable storage
// after every mutation.
type Store struct {
	mu      sync.Mutex
	store   kv.Store
	log     zerolog.Logger
	appts   []Appointment
	history *ledger
}

type Option func(*Store)

// WithHistoryLimit overrides the ledger bound.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.history = newLedger(n) }
}

// NewStore loads persisted appointments and history. Corrupt payloads are
// logged and replaced with empty state rather than crashing.
func NewStore(ctx context.Context, store kv.Store, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		store:   store,
		log:     log.With().Str("component", "appointments").Logger(),
		history: newLedger(DefaultHistoryLimit),
	}
	for _, opt := range opts {
		opt(s)
	}

	if raw, err := store.Get(ctx, appointmentsKey); err == nil {
		var appts []Appointment
		if err := json.Unmarshal(raw, &appts); err != nil {
			s.log.Warn().Err(err).Msg("corrupt appointments payload, starting empty")
		} else {
			s.appts = appts
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		s.log.Warn().Err(err).Msg("load appointments failed, starting empty")
	}

	if raw, err := store.Get(ctx, historyKey); err == nil {
		var entries []HistoryEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			s.log.Warn().Err(err).Msg("corrupt history payload, starting empty")
		} else {
			s.history.replace(entries)
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		s.log.Warn().Err(err).Msg("load history failed, starting empty")
	}

	return s
}

// HasConflict reports whether a [start, start+duration) slot on the given
// date overlaps any non-cancelled appointment. excludeID skips the
// appointment being edited so an in-place change never conflicts with
// itself. This predicate is the single source of truth for booking legality;
// every mutation path goes through it.
func (s *Store) HasConflict(date, hhmm string, durationMinutes int, excludeID uuid.UUID) bool {
	newStart, err := timeutil.ToMinutes(hhmm)
	if err != nil {
		return false
	}
	newEnd := newStart + durationMinutes

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasConflictLocked(date, newStart, newEnd, excludeID)
}

func (s *Store) hasConflictLocked(date string, newStart, newEnd int, excludeID uuid.UUID) bool {
	for _, a := range s.appts {
		if a.ID == excludeID || a.Date != date || a.Status == StatusCancelled {
			continue
		}
		start, err := timeutil.ToMinutes(a.StartTime)
		if err != nil {
			continue
		}
		if timeutil.Overlaps(newStart, newEnd, start, start+a.DurationMinutes) {
			return true
		}
	}
	return false
}

// Add books a new appointment. The conflict check is enforced here, not left
// to the caller; Force is the explicit escape hatch.
func (s *Store) Add(ctx context.Context, in CreateInput, actor Actor) (Appointment, error) {
	if !timeutil.IsValidDate(in.Date) {
		return Appointment{}, fmt.Errorf("%w: date %q", ErrInvalidInput, in.Date)
	}
	if !timeutil.IsValidTime(in.StartTime) {
		return Appointment{}, fmt.Errorf("%w: start time %q", ErrInvalidInput, in.StartTime)
	}
	if in.DurationMinutes <= 0 {
		return Appointment{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return Appointment{}, fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
	}

	start, _ := timeutil.ToMinutes(in.StartTime)

	s.mu.Lock()
	if !in.Force && s.hasConflictLocked(in.Date, start, start+in.DurationMinutes, uuid.Nil) {
		s.mu.Unlock()
		return Appointment{}, ErrConflict
	}

	now := time.Now().UTC()
	appt := Appointment{
		ID:              uuid.New(),
		PatientID:       in.PatientID,
		PatientName:     in.PatientName,
		Date:            in.Date,
		StartTime:       in.StartTime,
		DurationMinutes: in.DurationMinutes,
		Service:         in.Service,
		Status:          status,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.appts = append(s.appts, appt)

	snap := appt
	desc := fmt.Sprintf("booked %s for %s on %s at %s", appt.Service, appt.PatientName, appt.Date, appt.StartTime)
	if appt.Status == StatusBlocked {
		desc = fmt.Sprintf("blocked %s from %s", appt.Date, appt.StartTime)
	}
	s.history.prepend(newHistoryEntry(ActionCreate, appt.ID, nil, &snap, desc, actor))
	s.mu.Unlock()

	s.persist(ctx)
	return appt, nil
}

// Update merges a partial update into an existing appointment and
// re-validates the no-overlap invariant, excluding the appointment itself.
// A history entry is written only when action is non-empty; silent internal
// updates pass "" to keep the audit trail clean.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in UpdateInput, action Action, actor Actor) (Appointment, error) {
	if in.Date != nil && !timeutil.IsValidDate(*in.Date) {
		return Appointment{}, fmt.Errorf("%w: date %q", ErrInvalidInput, *in.Date)
	}
	if in.StartTime != nil && !timeutil.IsValidTime(*in.StartTime) {
		return Appointment{}, fmt.Errorf("%w: start time %q", ErrInvalidInput, *in.StartTime)
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return Appointment{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		return Appointment{}, fmt.Errorf("%w: status %q", ErrInvalidInput, *in.Status)
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return Appointment{}, ErrNotFound
	}

	old := s.appts[idx]
	merged := old
	if in.PatientID != nil {
		merged.PatientID = *in.PatientID
	}
	if in.PatientName != nil {
		merged.PatientName = *in.PatientName
	}
	if in.Date != nil {
		merged.Date = *in.Date
	}
	if in.StartTime != nil {
		merged.StartTime = *in.StartTime
	}
	if in.DurationMinutes != nil {
		merged.DurationMinutes = *in.DurationMinutes
	}
	if in.Service != nil {
		merged.Service = *in.Service
	}
	if in.Status != nil {
		merged.Status = *in.Status
	}
	if in.Notes != nil {
		merged.Notes = *in.Notes
	}

	slotChanged := merged.Date != old.Date || merged.StartTime != old.StartTime ||
		merged.DurationMinutes != old.DurationMinutes
	if slotChanged && !in.Force && merged.Status != StatusCancelled {
		start, _ := timeutil.ToMinutes(merged.StartTime)
		if s.hasConflictLocked(merged.Date, start, start+merged.DurationMinutes, id) {
			s.mu.Unlock()
			return Appointment{}, ErrConflict
		}
	}

	merged.UpdatedAt = time.Now().UTC()
	s.appts[idx] = merged

	if action != "" {
		oldSnap, newSnap := old, merged
		desc := describeChange(old, merged)
		s.history.prepend(newHistoryEntry(action, id, &oldSnap, &newSnap, desc, actor))
	}
	s.mu.Unlock()

	s.persist(ctx)
	return merged, nil
}

// Delete hard-removes an appointment. The full prior snapshot goes into the
// ledger so the deletion can be undone by recreation.
func (s *Store) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	old := s.appts[idx]
	s.appts = append(s.appts[:idx], s.appts[idx+1:]...)

	desc := fmt.Sprintf("deleted %s for %s on %s at %s", old.Service, old.PatientName, old.Date, old.StartTime)
	s.history.prepend(newHistoryEntry(ActionDelete, id, &old, nil, desc, actor))
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Undo reverts the mutation recorded by one history entry and consumes the
// entry. It mutates the collection directly, never through Add/Update/Delete,
// so no new history is written and undo chains cannot loop.
func (s *Store) Undo(ctx context.Context, entryID uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.history.find(entryID)
	if !ok {
		s.mu.Unlock()
		return ErrEntryNotFound
	}

	switch entry.Action {
	case ActionDelete:
		if entry.Old == nil {
			s.mu.Unlock()
			return fmt.Errorf("delete entry %s carries no snapshot", entryID)
		}
		s.appts = append(s.appts, *entry.Old)

	case ActionCreate:
		idx := s.indexLocked(entry.AppointmentID)
		if idx < 0 {
			s.mu.Unlock()
			return ErrNotFound
		}
		s.appts = append(s.appts[:idx], s.appts[idx+1:]...)

	default:
		idx := s.indexLocked(entry.AppointmentID)
		if idx < 0 {
			s.mu.Unlock()
			return ErrNotFound
		}
		if entry.Old != nil {
			restored := *entry.Old
			restored.UpdatedAt = time.Now().UTC()
			s.appts[idx] = restored
		}
	}

	s.history.remove(entryID)
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Get returns one appointment by id.
func (s *Store) Get(id uuid.UUID) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Appointment{}, ErrNotFound
	}
	return s.appts[idx], nil
}

// GetByDate returns the day's appointments sorted by start time.
func (s *Store) GetByDate(date string) []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Appointment, 0)
	for _, a := range s.appts {
		if a.Date == date {
			out = append(out, a)
		}
	}
	sortChronological(out)
	return out
}

// GetByDateRange returns appointments with start <= date <= end, sorted by
// date then start time.
func (s *Store) GetByDateRange(start, end string) []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Appointment, 0)
	for _, a := range s.appts {
		if a.Date >= start && a.Date <= end {
			out = append(out, a)
		}
	}
	sortChronological(out)
	return out
}

// GetByPatient returns a patient's visit history, most recent first.
// Administrative blocked entries never belong to a patient view.
func (s *Store) GetByPatient(patientID string) []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Appointment, 0)
	for _, a := range s.appts {
		if a.PatientID == patientID && a.Status != StatusBlocked {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out
}

// History returns the ledger contents, most recent first.
func (s *Store) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.snapshot()
}

// QueryHistory filters the ledger by action kind, free text and date range.
func (s *Store) QueryHistory(f HistoryFilter) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.query(f)
}

// ClearHistory empties the ledger and its persisted copy.
func (s *Store) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	s.history.clear()
	s.mu.Unlock()

	if err := s.store.Delete(ctx, historyKey); err != nil {
		s.log.Error().Err(err).Msg("clear persisted history")
	}
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i, a := range s.appts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// persist flushes appointments and history to durable storage. Failures are
// logged, never returned: a lost flush must not fail the mutation.
func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	appts, apptsErr := json.Marshal(s.appts)
	entries, histErr := json.Marshal(s.history.entries)
	s.mu.Unlock()

	if apptsErr != nil {
		s.log.Error().Err(apptsErr).Msg("marshal appointments")
	} else if err := s.store.Set(ctx, appointmentsKey, appts); err != nil {
		s.log.Error().Err(err).Msg("persist appointments")
	}

	if histErr != nil {
		s.log.Error().Err(histErr).Msg("marshal history")
	} else if err := s.store.Set(ctx, historyKey, entries); err != nil {
		s.log.Error().Err(err).Msg("persist history")
	}
}

// describeChange derives the audit description from which fields moved:
// a date or time change reads as "moved", a duration change as "resized",
// anything else as "edited".
func describeChange(old, updated Appointment) string {
	switch {
	case old.Date != updated.Date || old.StartTime != updated.StartTime:
		return fmt.Sprintf("moved %s for %s to %s at %s", updated.Service, updated.PatientName, updated.Date, updated.StartTime)
	case old.DurationMinutes != updated.DurationMinutes:
		return fmt.Sprintf("resized %s for %s to %d minutes", updated.Service, updated.PatientName, updated.DurationMinutes)
	default:
		return fmt.Sprintf("edited %s for %s on %s", updated.Service, updated.PatientName, updated.Date)
	}
}

func sortChronological(appts []Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].StartTime < appts[j].StartTime
	})
}
