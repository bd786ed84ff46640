package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore implementation
// adheres to the defined interface contract.
func RunRecordStoreContract(t *testing.T, store ports.RecordStore) {
	t.Helper()

	ctx := context.Background()
	recordID := "contract-test-record-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := domain.NewRecord(recordID, map[string]any{
			"state": "draft",
			"title": "Hello",
			"count": 42,
		})
		rec.History = []domain.HistoryRecord{{
			ID:         "h1",
			Field:      "state",
			Transition: "create",
			To:         "draft",
			At:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}}

		require.NoError(t, store.Save(ctx, rec), "Save should not return error")

		loaded, err := store.Load(ctx, recordID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, recordID, loaded.ID)
		assert.Equal(t, "draft", loaded.Attributes["state"])
		assert.Equal(t, "Hello", loaded.Attributes["title"])
		// JSON-backed stores turn ints into float64; only existence is part of the contract.
		assert.NotNil(t, loaded.Attributes["count"])
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "create", loaded.History[0].Transition)
		assert.True(t, loaded.History[0].At.Equal(rec.History[0].At))
	})

	t.Run("Loaded Record Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, recordID)
		require.NoError(t, err)
		loaded.Attributes["state"] = "mutated"

		again, err := store.Load(ctx, recordID)
		require.NoError(t, err)
		assert.Equal(t, "draft", again.Attributes["state"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		rec := domain.NewRecord(recordID, map[string]any{"state": "published"})
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, recordID)
		require.NoError(t, err)
		assert.Equal(t, "published", loaded.Attributes["state"])
		assert.Empty(t, loaded.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+recordID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewRecord(recordID, nil)))

		require.NoError(t, store.Delete(ctx, recordID), "Delete should not return error")

		_, err := store.Load(ctx, recordID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := recordID + "-1"
		id2 := recordID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewRecord(id1, nil)))
		require.NoError(t, store.Save(ctx, domain.NewRecord(id2, nil)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
