// Package inventory tracks clinic stock levels with the same create/update/
// delete + bounded undo ledger shape as the appointment store, minus the
// interval-overlap invariant.
package inventory

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

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
)

const (
	itemsKey     = "dental:inventory"
	historyKey   = "dental:inventory-history"
	historyLimit = 100
)

var (
	ErrItemNotFound  = errors.New("inventory item not found")
	ErrEntryNotFound = errors.New("inventory history entry not found")
	ErrInvalidInput  = errors.New("invalid inventory input")
)

type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	Unit        string    `json:"unit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LowStock reports whether the item has fallen to its reorder threshold.
func (i Item) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// HistoryEntry mirrors the appointment ledger's shape for stock mutations.
type HistoryEntry struct {
	ID          uuid.UUID          `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Action      appointment.Action `json:"action"`
	ItemID      uuid.UUID          `json:"item_id"`
	Old         *Item              `json:"old,omitempty"`
	New         *Item              `json:"new,omitempty"`
	Description string             `json:"description"`
}

type UpdateInput struct {
	Name        *string
	Quantity    *int
	MinQuantity *int
	Unit        *string
}

// Store owns the item collection and its undo ledger.
type Store struct {
	mu      sync.Mutex
	store   kv.Store
	log     zerolog.Logger
	items   []Item
	history []HistoryEntry
}

func NewStore(ctx context.Context, store kv.Store, log zerolog.Logger) *Store {
	s := &Store{
		store: store,
		log:   log.With().Str("component", "inventory").Logger(),
	}

	if raw, err := store.Get(ctx, itemsKey); err == nil {
		if err := json.Unmarshal(raw, &s.items); err != nil {
			s.log.Warn().Err(err).Msg("corrupt inventory payload, starting empty")
			s.items = nil
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		s.log.Warn().Err(err).Msg("load inventory failed, starting empty")
	}

	if raw, err := store.Get(ctx, historyKey); err == nil {
		var entries []HistoryEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			s.log.Warn().Err(err).Msg("corrupt inventory history, starting empty")
		} else {
			seen := make(map[uuid.UUID]struct{}, len(entries))
			for _, e := range entries {
				if _, ok := seen[e.ID]; ok {
					continue
				}
				seen[e.ID] = struct{}{}
				s.history = append(s.history, e)
			}
			if len(s.history) > historyLimit {
				s.history = s.history[:historyLimit]
			}
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		s.log.Warn().Err(err).Msg("load inventory history failed, starting empty")
	}

	return s
}

func (s *Store) Add(ctx context.Context, name string, quantity, minQuantity int, unit string) (Item, error) {
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if quantity < 0 || minQuantity < 0 {
		return Item{}, fmt.Errorf("%w: quantities must not be negative", ErrInvalidInput)
	}

	now := time.Now().UTC()
	item := Item{
		ID:          uuid.New(),
		Name:        name,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		Unit:        unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	snap := item
	s.appendLocked(HistoryEntry{
		ID:          uuid.New(),
		Timestamp:   now,
		Action:      appointment.ActionCreate,
		ItemID:      item.ID,
		New:         &snap,
		Description: fmt.Sprintf("added %s (%d %s)", item.Name, item.Quantity, item.Unit),
	})
	s.mu.Unlock()

	s.persist(ctx)
	return item, nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Item, error) {
	if in.Quantity != nil && *in.Quantity < 0 {
		return Item{}, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if in.MinQuantity != nil && *in.MinQuantity < 0 {
		return Item{}, fmt.Errorf("%w: min quantity must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return Item{}, ErrItemNotFound
	}

	old := s.items[idx]
	merged := old
	if in.Name != nil {
		merged.Name = *in.Name
	}
	if in.Quantity != nil {
		merged.Quantity = *in.Quantity
	}
	if in.MinQuantity != nil {
		merged.MinQuantity = *in.MinQuantity
	}
	if in.Unit != nil {
		merged.Unit = *in.Unit
	}
	merged.UpdatedAt = time.Now().UTC()
	s.items[idx] = merged

	oldSnap, newSnap := old, merged
	desc := fmt.Sprintf("edited %s", merged.Name)
	if old.Quantity != merged.Quantity {
		desc = fmt.Sprintf("stock of %s changed %d -> %d", merged.Name, old.Quantity, merged.Quantity)
	}
	s.appendLocked(HistoryEntry{
		ID:          uuid.New(),
		Timestamp:   merged.UpdatedAt,
		Action:      appointment.ActionUpdate,
		ItemID:      id,
		Old:         &oldSnap,
		New:         &newSnap,
		Description: desc,
	})
	s.mu.Unlock()

	s.persist(ctx)
	return merged, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}

	old := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.appendLocked(HistoryEntry{
		ID:          uuid.New(),
		Timestamp:   time.Now().UTC(),
		Action:      appointment.ActionDelete,
		ItemID:      id,
		Old:         &old,
		Description: fmt.Sprintf("removed %s", old.Name),
	})
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Undo reverts one ledger entry and consumes it, without writing new history.
func (s *Store) Undo(ctx context.Context, entryID uuid.UUID) error {
	s.mu.Lock()
	entryIdx := -1
	for i, e := range s.history {
		if e.ID == entryID {
			entryIdx = i
			break
		}
	}
	if entryIdx < 0 {
		s.mu.Unlock()
		return ErrEntryNotFound
	}
	entry := s.history[entryIdx]

	switch entry.Action {
	case appointment.ActionDelete:
		if entry.Old != nil {
			s.items = append(s.items, *entry.Old)
		}
	case appointment.ActionCreate:
		idx := s.indexLocked(entry.ItemID)
		if idx < 0 {
			s.mu.Unlock()
			return ErrItemNotFound
		}
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	default:
		idx := s.indexLocked(entry.ItemID)
		if idx < 0 {
			s.mu.Unlock()
			return ErrItemNotFound
		}
		if entry.Old != nil {
			restored := *entry.Old
			restored.UpdatedAt = time.Now().UTC()
			s.items[idx] = restored
		}
	}

	s.history = append(s.history[:entryIdx], s.history[entryIdx+1:]...)
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

func (s *Store) Get(id uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Item{}, ErrItemNotFound
	}
	return s.items[idx], nil
}

// All returns every item sorted by name.
func (s *Store) All() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// History returns the ledger, most recent first.
func (s *Store) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Store) appendLocked(e HistoryEntry) {
	s.history = append([]HistoryEntry{e}, s.history...)
	if len(s.history) > historyLimit {
		s.history = s.history[:historyLimit]
	}
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	items, itemsErr := json.Marshal(s.items)
	entries, histErr := json.Marshal(s.history)
	s.mu.Unlock()

	if itemsErr != nil {
		s.log.Error().Err(itemsErr).Msg("marshal inventory")
	} else if err := s.store.Set(ctx, itemsKey, items); err != nil {
		s.log.Error().Err(err).Msg("persist inventory")
	}

	if histErr != nil {
		s.log.Error().Err(histErr).Msg("marshal inventory history")
	} else if err := s.store.Set(ctx, historyKey, entries); err != nil {
		s.log.Error().Err(err).Msg("persist inventory history")
	}
}
