package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(&common.FilesConfig{
		Root:       filepath.Join(t.TempDir(), "files"),
		StagingDir: filepath.Join(t.TempDir(), "staging"),
	}, arbor.NewLogger())
	require.NoError(t, err)
	return store
}

func TestSaveUsesDateShardedLayout(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	relPath, err := store.Save(ctx, "doc_abc", "Worksheet.PDF", []byte("content"))
	require.NoError(t, err)

	now := time.Now().UTC()
	expectedPrefix := now.Format("2006") + "/" + now.Format("01") + "/" + now.Format("02") + "/"
	assert.True(t, strings.HasPrefix(relPath, expectedPrefix), relPath)
	assert.True(t, strings.HasSuffix(relPath, "doc_abc.pdf"), relPath)

	content, err := store.Read(ctx, relPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	relPath, err := store.Save(ctx, "doc_del", "notes.txt", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, relPath))
	require.NoError(t, store.Delete(ctx, relPath))

	_, err = store.Read(ctx, relPath)
	assert.Error(t, err)
}

func TestPathTraversalRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"../outside.txt", "..", "a/../../b", "/etc/passwd"} {
		t.Run(path, func(t *testing.T) {
			_, err := store.Read(ctx, path)
			assert.Error(t, err)
		})
	}
}

func TestSweepStaging(t *testing.T) {
	store := newTestStore(t)

	stale := filepath.Join(store.StagingDir(), "stale.png")
	fresh := filepath.Join(store.StagingDir(), "fresh.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := store.SweepStaging(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}
