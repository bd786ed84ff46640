package entity_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_PersistThroughStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, domain.NewRecord("a1", map[string]any{"state": "draft"})))

	ent, err := entity.Load(ctx, store, "a1")
	require.NoError(t, err)

	ent.SetAttribute("state", "review")
	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "draft", loaded.Attributes["state"], "SetAttribute alone is not durable")

	require.NoError(t, ent.Persist(ctx))
	loaded, err = store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "review", loaded.Attributes["state"])
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestEntity_AppendHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ent := entity.New(domain.NewRecord("a1", nil), store)

	require.NoError(t, ent.AppendHistory(ctx, domain.HistoryRecord{Field: "state", Transition: "submit", To: "review"}))

	assert.Len(t, ent.History(), 1)
	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "submit", loaded.History[0].Transition)
}

func TestEntity_AttributesAreCopies(t *testing.T) {
	rec := domain.NewRecord("a1", map[string]any{"title": "x"})
	ent := entity.New(rec, nil)

	ent.Attributes()["title"] = "y"
	rec.Attributes["title"] = "z"

	assert.Equal(t, "x", ent.Attribute("title"))
	assert.NoError(t, ent.Persist(context.Background()), "nil store persists in memory")
}

func TestLoad_NotFound(t *testing.T) {
	_, err := entity.Load(context.Background(), memory.NewStore(), "missing")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestEntity_RemoveAttribute(t *testing.T) {
	ent := entity.New(domain.NewRecord("a2", map[string]any{"state": "draft", "title": "X"}), nil)
	var _ domain.AttributeRemover = ent

	ent.RemoveAttribute("state")
	_, present := ent.Attributes()["state"]
	assert.False(t, present)
	assert.Equal(t, "X", ent.Attribute("title"))
}
