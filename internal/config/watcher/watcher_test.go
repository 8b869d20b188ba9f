package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "rename", OpRename.String())
	assert.Equal(t, "unknown", Operation(99).String())
}

func TestConvertOp(t *testing.T) {
	op, ok := convertOp(fsnotify.Write)
	assert.True(t, ok)
	assert.Equal(t, OpWrite, op)

	op, ok = convertOp(fsnotify.Create | fsnotify.Write)
	assert.True(t, ok)
	assert.Equal(t, OpCreate, op)

	_, ok = convertOp(fsnotify.Chmod)
	assert.False(t, ok)
}

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runebridge.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	var mu sync.Mutex
	var got []Event
	w, err := New(func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Watch(path))
	assert.Len(t, w.WatchedFiles(), 1)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a = 3\n"), 0o644))

	abs, _ := filepath.Abs(path)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range got {
		assert.Equal(t, abs, ev.Path)
	}
}

func TestWatcher_UnwatchAndClose(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Unwatch(path))
	assert.Empty(t, w.WatchedFiles())
	require.NoError(t, w.Unwatch(path))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(path), ErrClosed)
}
