package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcherFiresAfterWrite(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "workflow.gfs")
	require.NoError(t, os.WriteFile(script, []byte("# empty\n"), 0644))

	var fired atomic.Int32
	w := New(script, 50*time.Millisecond, zap.NewNop(), func() {
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watcher register before touching the file.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(script, []byte(`SetProperty(Name="A", Value="1")`+"\n"), 0644))

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "workflow.gfs")
	require.NoError(t, os.WriteFile(script, []byte("# v0\n"), 0644))

	var fired atomic.Int32
	w := New(script, 300*time.Millisecond, zap.NewNop(), func() {
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(200 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(script, []byte("# edit\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)
	// The burst should have collapsed into a single callback.
	time.Sleep(500 * time.Millisecond)
	assert.LessOrEqual(t, fired.Load(), int32(2))
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "workflow.gfs")
	require.NoError(t, os.WriteFile(script, []byte("# empty\n"), 0644))

	var fired atomic.Int32
	w := New(script, 50*time.Millisecond, zap.NewNop(), func() {
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestWatcherMissingDir(t *testing.T) {
	w := New("/nonexistent-dir-xyz/workflow.gfs", 0, zap.NewNop(), func() {})
	err := w.Run(context.Background())
	assert.Error(t, err)
}

func TestWatcherNeverOverlapsCallbacks(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "workflow.gfs")
	require.NoError(t, os.WriteFile(script, []byte("# v0\n"), 0644))

	var active, fired atomic.Int32
	var overlapped atomic.Bool
	w := New(script, 50*time.Millisecond, zap.NewNop(), func() {
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
		// A long run; the second edit below lands while this is in flight.
		time.Sleep(400 * time.Millisecond)
		active.Add(-1)
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(script, []byte("# v1\n"), 0644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(script, []byte("# v2\n"), 0644))

	require.Eventually(t, func() bool {
		return fired.Load() >= 2
	}, 10*time.Second, 50*time.Millisecond)
	assert.False(t, overlapped.Load(), "callbacks ran concurrently")
}
