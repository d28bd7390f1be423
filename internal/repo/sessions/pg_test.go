package sessions

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/upload_lite/internal/models"
)

// newTestPG подключается к базе из TEST_META_DSN и накатывает миграции.
// Без переменной тесты пропускаются: Postgres в окружении не обязателен.
func newTestPG(t *testing.T) *PGStore {
	t.Helper()

	dsn := os.Getenv("TEST_META_DSN")
	if dsn == "" {
		t.Skip("TEST_META_DSN is not set")
	}

	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, dsn))

	store, err := NewPGStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func createPGSession(t *testing.T, store *PGStore) models.UploadSession {
	t.Helper()

	session := newSession(uuid.NewString())
	require.NoError(t, store.Create(context.Background(), session))
	t.Cleanup(func() { _ = store.Delete(context.Background(), session.ID) })
	return session
}

func TestPGStore_RoundTrip(t *testing.T) {
	store := newTestPG(t)
	ctx := context.Background()
	session := createPGSession(t, store)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.StorageName, got.StorageName)
	assert.Equal(t, session.DeclaredSize, got.DeclaredSize)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, got.ArtifactPath)

	_, err = store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPGStore_CompareAndSwapStatus(t *testing.T) {
	store := newTestPG(t)
	ctx := context.Background()
	session := createPGSession(t, store)

	won, err := store.CompareAndSwapStatus(ctx, session.ID, models.StatusPending, models.StatusAssembling)
	require.NoError(t, err)
	assert.True(t, won)

	// Повторный CAS от того же ожидаемого статуса обязан проиграть.
	won, err = store.CompareAndSwapStatus(ctx, session.ID, models.StatusPending, models.StatusAssembling)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssembling, got.Status)

	_, err = store.CompareAndSwapStatus(ctx, uuid.NewString(), models.StatusPending, models.StatusAssembling)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPGStore_RejectsIllegalTransition(t *testing.T) {
	store := newTestPG(t)
	session := createPGSession(t, store)

	_, err := store.CompareAndSwapStatus(context.Background(), session.ID, models.StatusPending, models.StatusCompleted)
	assert.Error(t, err)
}

func TestPGStore_SetFinalArtifact(t *testing.T) {
	store := newTestPG(t)
	ctx := context.Background()
	session := createPGSession(t, store)

	require.NoError(t, store.SetFinalArtifact(ctx, session.ID, "/tmp/"+session.StorageName+".bin"))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/"+session.StorageName+".bin", got.ArtifactPath)

	assert.ErrorIs(t, store.SetFinalArtifact(ctx, uuid.NewString(), "/tmp/x.bin"), models.ErrNotFound)
}

func TestPGStore_Delete(t *testing.T) {
	store := newTestPG(t)
	ctx := context.Background()
	session := createPGSession(t, store)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err := store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, session.ID), models.ErrNotFound)
}
