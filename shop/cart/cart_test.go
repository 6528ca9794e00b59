package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type key struct{ user, product int64 }

// memStore is an in-memory cart table keyed by (user, product).
type memStore struct {
	lines map[key]int
}

func newMemStore() *memStore {
	return &memStore{lines: make(map[key]int)}
}

func (s *memStore) AddToCart(_ context.Context, userID, productID int64) error {
	s.lines[key{userID, productID}]++
	return nil
}

func (s *memStore) ReduceInCart(_ context.Context, userID, productID int64) (bool, error) {
	k := key{userID, productID}
	q, ok := s.lines[k]
	if !ok {
		return false, nil
	}
	if q > 1 {
		s.lines[k] = q - 1
		return true, nil
	}
	delete(s.lines, k)
	return false, nil
}

func (s *memStore) DeleteFromCart(_ context.Context, userID, productID int64) error {
	delete(s.lines, key{userID, productID})
	return nil
}

func TestOpFromMenuName(t *testing.T) {
	assert.Equal(t, OpIncrement, OpFromMenuName("increment"))
	assert.Equal(t, OpDecrement, OpFromMenuName("decrement"))
	assert.Equal(t, OpDelete, OpFromMenuName("delete"))
	assert.Equal(t, OpNone, OpFromMenuName("cart"))
	assert.Equal(t, OpNone, OpFromMenuName("previous"))
	assert.Equal(t, OpNone, OpFromMenuName("next"))
}

func TestIncrementNeverAdjustsPage(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	ctx := context.Background()

	page, err := engine.Apply(ctx, OpIncrement, 1, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 1, store.lines[key{1, 10}])

	page, err = engine.Apply(ctx, OpIncrement, 1, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 2, store.lines[key{1, 10}])
}

func TestDeleteStepsPageBack(t *testing.T) {
	store := newMemStore()
	store.lines[key{1, 10}] = 2
	engine := NewEngine(store)

	page, err := engine.Apply(context.Background(), OpDelete, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Empty(t, store.lines)
}

func TestDeleteOnFirstPageStaysOnFirstPage(t *testing.T) {
	store := newMemStore()
	store.lines[key{1, 10}] = 1
	engine := NewEngine(store)

	page, err := engine.Apply(context.Background(), OpDelete, 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.lines[key{1, 10}] = 1
	engine := NewEngine(store)
	ctx := context.Background()

	_, err := engine.Apply(ctx, OpDelete, 1, 10, 1)
	require.NoError(t, err)
	_, err = engine.Apply(ctx, OpDelete, 1, 10, 1)
	require.NoError(t, err)
	assert.Empty(t, store.lines)
}

func TestDecrementAdjustsPageOnlyWhenLineVanishes(t *testing.T) {
	store := newMemStore()
	store.lines[key{1, 10}] = 2
	engine := NewEngine(store)
	ctx := context.Background()

	// Quantity 2 -> 1: line survives, page stays.
	page, err := engine.Apply(ctx, OpDecrement, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	// Quantity 1 -> gone: page steps back.
	page, err = engine.Apply(ctx, OpDecrement, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Empty(t, store.lines)
}

func TestDecrementMissingLine(t *testing.T) {
	engine := NewEngine(newMemStore())

	page, err := engine.Apply(context.Background(), OpDecrement, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
}
