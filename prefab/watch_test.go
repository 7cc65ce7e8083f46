package prefab

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTemplateFile(t *testing.T) {
	assert.True(t, isTemplateFile("a.yaml"))
	assert.True(t, isTemplateFile("dir/B.YML"))
	assert.False(t, isTemplateFile("a.tengo"))
	assert.False(t, isTemplateFile("yaml"))
}

func TestWatcherReportsTemplateWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))
	path := filepath.Join(dir, "crate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: crate\n"), 0o644))

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for template write")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Events
	for open {
		_, open = <-w.Events
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
