package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, debounce time.Duration, onChange ChangeFunc) *Watcher {
	t.Helper()

	w := New(dir, debounce, onChange, nil)
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() { done <- w.Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return w
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	var calls int32

	w := startWatcher(t, dir, 300*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	db := filepath.Join(dir, "rpmdb.sqlite")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(db, []byte{byte(i)}, 0o644))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, w.Fired())
}

func TestWatcher_IgnoresNoise(t *testing.T) {
	dir := t.TempDir()
	var calls int32

	startWatcher(t, dir, 50*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rpmdb.sqlite-shm"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rpm.lock"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), time.Millisecond, func(context.Context) error { return nil }, nil)
	err := w.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/var/lib/rpm/rpmdb.sqlite", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/var/lib/rpm/rpmdb.sqlite-wal", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/var/lib/rpm/Packages", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/var/lib/rpm/rpmdb.sqlite", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/var/lib/rpm/rpmdb.sqlite", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/var/lib/rpm/rpmdb.sqlite-shm", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/var/lib/rpm/.rpm.lock", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/var/lib/rpm/__db.001", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
