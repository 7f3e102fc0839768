package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(context.Background(), kv.NewMemory(), zerolog.Nop())
}

func TestAddAndLowStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.Add(ctx, "Latex gloves", 100, 20, "pairs")
	require.NoError(t, err)
	assert.False(t, item.LowStock())

	qty := 15
	updated, err := s.Update(ctx, item.ID, UpdateInput{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, updated.LowStock())

	_, err = s.Add(ctx, "", 1, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Add(ctx, "Bad", -1, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)
	qty := 5
	_, err := s.Update(context.Background(), uuid.New(), UpdateInput{Quantity: &qty})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUndoStockChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.Add(ctx, "Anesthetic cartridges", 50, 10, "pcs")
	require.NoError(t, err)

	qty := 42
	_, err = s.Update(ctx, item.ID, UpdateInput{Quantity: &qty})
	require.NoError(t, err)

	before := len(s.History())
	entry := s.History()[0]
	require.NoError(t, s.Undo(ctx, entry.ID))

	got, err := s.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Quantity)
	assert.Len(t, s.History(), before-1, "undo consumes the entry without logging")
}

func TestUndoDeleteRestoresItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.Add(ctx, "Fluoride varnish", 12, 5, "tubes")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, item.ID))

	entry := s.History()[0]
	require.NoError(t, s.Undo(ctx, entry.ID))

	got, err := s.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
}

func TestPersistenceRoundTrip(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()

	s1 := NewStore(ctx, mem, zerolog.Nop())
	item, err := s1.Add(ctx, "Face masks", 250, 50, "pcs")
	require.NoError(t, err)

	s2 := NewStore(ctx, mem, zerolog.Nop())
	got, err := s2.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, got.Quantity)
	assert.Len(t, s2.History(), 1)
}
