package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit bounds the ledger to the clinic's practical audit
// window.
const DefaultHistoryLimit = 100

// ledger is the bounded, most-recent-first list of history entries. It is
// owned by the Store, which coordinates undo; external callers only ever see
// copies of its entries.
type ledger struct {
	limit   int
	entries []HistoryEntry
}

func newLedger(limit int) *ledger {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ledger{limit: limit}
}

// prepend inserts the entry at the front and drops the oldest entries beyond
// the limit.
func (l *ledger) prepend(e HistoryEntry) {
	l.entries = append([]HistoryEntry{e}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
}

func (l *ledger) find(id uuid.UUID) (HistoryEntry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// remove deletes the entry by id, reporting whether it was present.
func (l *ledger) remove(id uuid.UUID) bool {
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (l *ledger) clear() {
	l.entries = nil
}

// replace installs entries loaded from storage, de-duplicated by id (first
// occurrence wins). Guards against a double-write defect in an earlier
// persistence path that left duplicate entries on disk.
func (l *ledger) replace(entries []HistoryEntry) {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	deduped := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		deduped = append(deduped, e)
	}
	if len(deduped) > l.limit {
		deduped = deduped[:l.limit]
	}
	l.entries = deduped
}

func (l *ledger) snapshot() []HistoryEntry {
	cp := make([]HistoryEntry, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// HistoryFilter narrows a history query. Zero values mean "no constraint".
type HistoryFilter struct {
	Action Action
	// Text matches case-insensitively against patient name, description and
	// service of the snapshots.
	Text     string
	DateFrom string
	DateTo   string
}

// query filters the in-memory list; purely derived, no independent storage.
func (l *ledger) query(f HistoryFilter) []HistoryEntry {
	text := strings.ToLower(strings.TrimSpace(f.Text))

	out := make([]HistoryEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if text != "" && !entryMatchesText(e, text) {
			continue
		}
		if f.DateFrom != "" || f.DateTo != "" {
			day := e.Timestamp.UTC().Format("2006-01-02")
			if f.DateFrom != "" && day < f.DateFrom {
				continue
			}
			if f.DateTo != "" && day > f.DateTo {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func entryMatchesText(e HistoryEntry, text string) bool {
	if strings.Contains(strings.ToLower(e.Description), text) {
		return true
	}
	for _, snap := range []*Appointment{e.Old, e.New} {
		if snap == nil {
			continue
		}
		if strings.Contains(strings.ToLower(snap.PatientName), text) ||
			strings.Contains(strings.ToLower(snap.Service), text) {
			return true
		}
	}
	return false
}

func newHistoryEntry(action Action, apptID uuid.UUID, old, updated *Appointment, desc string, actor Actor) HistoryEntry {
	return HistoryEntry{
		ID:            uuid.New(),
		Timestamp:     time.Now().UTC(),
		Action:        action,
		AppointmentID: apptID,
		Old:           old,
		New:           updated,
		Description:   desc,
		ActorName:     actor.Name,
		ActorRole:     actor.Role,
	}
}
