package session

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	session := &model.ClassificationSession{
		ID:        "s1",
		Status:    model.SessionAwaitingClarification,
		History:   []model.Utterance{{Text: "tires", Turn: 1}},
		UpdatedAt: now,
	}
	require.NoError(t, store.SaveSession(ctx, session))

	// Mutating the caller's copy does not leak into the store.
	session.History[0].Text = "changed"

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tires", got.History[0].Text)

	got.History = append(got.History, model.Utterance{Text: "rubber", Turn: 2})
	again, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, again.History, 1)

	require.NoError(t, store.DeleteSession(ctx, "s1"))
	_, err = store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SaveSession(ctx, &model.ClassificationSession{ID: "old", UpdatedAt: now}))
	require.NoError(t, store.SaveSession(ctx, &model.ClassificationSession{ID: "fresh", UpdatedAt: now.Add(90 * time.Minute)}))

	now = now.Add(2 * time.Hour)
	_, err := store.GetSession(ctx, "old")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.GetSession(ctx, "fresh")
	assert.NoError(t, err)

	store.cleanup()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreRejectsMissingID(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	assert.ErrorIs(t, store.SaveSession(context.Background(), &model.ClassificationSession{}), common.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveSession(context.Background(), nil), common.ErrInvalidInput)
}
