package memorystore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strob0t/TripForge/internal/domain/memory"
)

// RunContract verifies that a Store implementation honours the port's
// contract. newStore must return a store with nothing saved in it.
func RunContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load Missing Returns Empty", func(t *testing.T) {
		store := newStore(t)
		doc, err := store.Load(ctx)
		require.NoError(t, err, "Load on an empty store should not fail")
		assertEmpty(t, doc)
	})

	t.Run("Save and Load", func(t *testing.T) {
		store := newStore(t)
		doc := memory.Empty()
		require.NoError(t, doc.Append(memory.KeyTrips, map[string]any{"destination": "Paris", "budget": 1000}))
		require.NoError(t, doc.Append(memory.KeyVisitedPlaces, "Kyoto"))
		doc.Preferences["pace"] = "slow"

		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded.Trips, 1)
		assert.JSONEq(t, `{"destination":"Paris","budget":1000}`, string(loaded.Trips[0]))
		assert.Equal(t, []string{"Kyoto"}, loaded.VisitedPlaces)
		assert.Equal(t, "slow", loaded.Preferences["pace"])
	})

	t.Run("Save Load Idempotent", func(t *testing.T) {
		store := newStore(t)
		doc := memory.Empty()
		require.NoError(t, doc.Append(memory.KeyTrips, map[string]any{"destination": "Lisbon", "note": "Café <b>"}))
		require.NoError(t, doc.Append("wishlist", "Lima"))
		require.NoError(t, store.Save(ctx, doc))

		first, err := store.Load(ctx)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, first))
		second, err := store.Load(ctx)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b))
		assert.Contains(t, second.Extra, "wishlist", "unknown keys must survive a save")
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		store := newStore(t)
		doc := memory.Empty()
		require.NoError(t, doc.Append(memory.KeyTrips, map[string]any{"destination": "Oslo"}))
		require.NoError(t, store.Save(ctx, doc))
		require.NoError(t, store.Save(ctx, memory.Empty()))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assertEmpty(t, loaded)
	})
}

func assertEmpty(t *testing.T, doc *memory.Document) {
	t.Helper()
	require.NotNil(t, doc)
	assert.NotNil(t, doc.Trips)
	assert.Empty(t, doc.Trips)
	assert.NotNil(t, doc.Preferences)
	assert.Empty(t, doc.Preferences)
	assert.NotNil(t, doc.VisitedPlaces)
	assert.Empty(t, doc.VisitedPlaces)
	assert.Empty(t, doc.Extra)
}
