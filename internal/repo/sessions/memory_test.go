package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/sir_venger/upload_lite/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string) models.UploadSession {
	now := time.Now().UTC()
	return models.UploadSession{
		ID:           id,
		StorageName:  "stor_" + id,
		Extension:    "bin",
		DeclaredSize: 10,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryStore_CompareAndSwapStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newSession("a")))

	won, err := store.CompareAndSwapStatus(ctx, "a", models.StatusPending, models.StatusAssembling)
	require.NoError(t, err)
	assert.True(t, won)

	// Повторный CAS от того же ожидаемого статуса обязан проиграть.
	won, err = store.CompareAndSwapStatus(ctx, "a", models.StatusPending, models.StatusAssembling)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssembling, got.Status)

	_, err = store.CompareAndSwapStatus(ctx, "missing", models.StatusPending, models.StatusAssembling)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryStore_RejectsIllegalTransition(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newSession("a")))

	_, err := store.CompareAndSwapStatus(ctx, "a", models.StatusCompleted, models.StatusPending)
	assert.Error(t, err)
}

func TestMemoryStore_SetFinalArtifact(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newSession("a")))

	require.NoError(t, store.SetFinalArtifact(ctx, "a", "/uploads/stor_a.bin"))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/stor_a.bin", got.ArtifactPath)

	assert.ErrorIs(t, store.SetFinalArtifact(ctx, "missing", "x"), models.ErrNotFound)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := newSession("a")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newSession("b")
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newSession("a")))

	require.NoError(t, store.Delete(ctx, "a"))
	assert.ErrorIs(t, store.Delete(ctx, "a"), models.ErrNotFound)
}
