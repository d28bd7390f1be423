package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArea(t *testing.T) *Area {
	t.Helper()

	area, err := New(t.TempDir())
	require.NoError(t, err)
	return area
}

func TestReserve_DetectsCollision(t *testing.T) {
	area := newArea(t)

	require.NoError(t, area.Reserve("abc"))
	assert.ErrorIs(t, area.Reserve("abc"), ErrNameTaken)
	require.NoError(t, area.Reserve("abd"))
}

func TestWriteChunk_OverwritesSameOffset(t *testing.T) {
	area := newArea(t)
	require.NoError(t, area.Reserve("s1"))

	n, err := area.WriteChunk("s1", 0, strings.NewReader("XXXXX"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	_, err = area.WriteChunk("s1", 0, strings.NewReader("HELLO"))
	require.NoError(t, err)

	chunks, err := area.Chunks("s1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	b, err := os.ReadFile(chunks[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(b))
}

func TestChunks_SortedByOffset(t *testing.T) {
	area := newArea(t)
	require.NoError(t, area.Reserve("s1"))

	for _, offset := range []int64{100, 0, 5} {
		_, err := area.WriteChunk("s1", offset, strings.NewReader("data"))
		require.NoError(t, err)
	}

	chunks, err := area.Chunks("s1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.EqualValues(t, 0, chunks[0].Offset)
	assert.EqualValues(t, 5, chunks[1].Offset)
	assert.EqualValues(t, 100, chunks[2].Offset)
	for _, c := range chunks {
		assert.EqualValues(t, 4, c.Size)
	}
}

func TestChunks_RejectsMalformedNames(t *testing.T) {
	area := newArea(t)
	require.NoError(t, area.Reserve("s1"))

	bad := filepath.Join(area.Root(), "s1", "chunk_abc")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))

	_, err := area.Chunks("s1")
	assert.Error(t, err)
}

func TestChunks_IgnoresForeignFiles(t *testing.T) {
	area := newArea(t)
	require.NoError(t, area.Reserve("s1"))

	stray := filepath.Join(area.Root(), "s1", ".chunk-12345")
	require.NoError(t, os.WriteFile(stray, []byte("partial"), 0o644))

	chunks, err := area.Chunks("s1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRemoveIfEmpty(t *testing.T) {
	area := newArea(t)
	require.NoError(t, area.Reserve("s1"))

	_, err := area.WriteChunk("s1", 0, strings.NewReader("data"))
	require.NoError(t, err)
	assert.Error(t, area.RemoveIfEmpty("s1"))

	chunks, err := area.Chunks("s1")
	require.NoError(t, err)
	require.NoError(t, os.Remove(chunks[0].Path))
	require.NoError(t, area.RemoveIfEmpty("s1"))
	assert.NoDirExists(t, filepath.Join(area.Root(), "s1"))
}

func TestLastActivity_TracksNewestChunk(t *testing.T) {
	area := newArea(t)
	require.NoError(t, area.Reserve("s1"))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(area.Root(), "s1"), old, old))

	before, err := area.LastActivity("s1")
	require.NoError(t, err)
	assert.WithinDuration(t, old, before, time.Minute)

	_, err = area.WriteChunk("s1", 0, strings.NewReader("data"))
	require.NoError(t, err)

	after, err := area.LastActivity("s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), after, time.Minute)
}
