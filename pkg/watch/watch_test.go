// pkg/watch/watch_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real temp directories, fsnotify
// PURPOSE: Test debouncing and change batching

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/basefmt/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

func TestDebouncerBatchesPaths(t *testing.T) {
	d := watch.NewDebouncer(20 * time.Millisecond)
	batches := make(chan []string, 4)
	d.OnFire(func(paths []string) { batches <- paths })

	d.Push("b")
	d.Push("a")
	d.Push("b")
	d.Push("  ")

	select {
	case got := <-batches:
		assert.Equal(t, []string{"a", "b"}, got)
	case <-time.After(waitFor):
		t.Fatal("no batch delivered")
	}

	select {
	case got := <-batches:
		t.Fatalf("unexpected second batch %v", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerStop(t *testing.T) {
	d := watch.NewDebouncer(20 * time.Millisecond)
	fired := make(chan struct{}, 1)
	d.OnFire(func([]string) { fired <- struct{}{} })

	d.Push("a")
	d.Stop()
	d.Push("b")

	select {
	case <-fired:
		t.Fatal("stopped debouncer fired")
	case <-time.After(80 * time.Millisecond):
	}
}

type recorder struct {
	mu      sync.Mutex
	batches []watch.Batch
	ch      chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) record(b watch.Batch) {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) next(t *testing.T) watch.Batch {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(waitFor):
		t.Fatal("no batch delivered")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func start(t *testing.T, opts watch.Options) *recorder {
	t.Helper()
	rec := newRecorder()
	opts.OnChange = rec.record
	if opts.Debounce == 0 {
		opts.Debounce = 30 * time.Millisecond
	}

	w, err := watch.New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return rec
}

func TestWatcherReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	rec := start(t, watch.Options{Roots: []string{dir}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b\n"), 0644))

	files := map[string]bool{}
	for len(files) < 2 {
		batch := rec.next(t)
		assert.False(t, batch.ConfigChanged)
		for _, f := range batch.Files {
			files[f] = true
		}
	}
	assert.True(t, files[filepath.Join(dir, "a.txt")])
	assert.True(t, files[filepath.Join(dir, "sub", "b.txt")])
}

func TestWatcherReportsConfigChanges(t *testing.T) {
	dir := t.TempDir()
	rec := start(t, watch.Options{Roots: []string{dir}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".editorconfig"), []byte("root = true\n"), 0644))

	batch := rec.next(t)
	assert.True(t, batch.ConfigChanged)
	assert.Empty(t, batch.Files)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := start(t, watch.Options{Roots: []string{dir}})

	sub := filepath.Join(dir, "new")
	require.NoError(t, os.Mkdir(sub, 0755))
	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.txt"), []byte("c\n"), 0644))

	for {
		batch := rec.next(t)
		if len(batch.Files) > 0 {
			assert.Equal(t, []string{filepath.Join(sub, "c.txt")}, batch.Files)
			return
		}
	}
}

func TestWatcherSkipsHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	rec := start(t, watch.Options{Roots: []string{dir}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".secret"), []byte("x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".basefmt-123"), []byte("x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("x\n"), 0644))

	batch := rec.next(t)
	assert.Equal(t, []string{filepath.Join(dir, "visible.txt")}, batch.Files)
}

func TestNewRequiresRoots(t *testing.T) {
	_, err := watch.New(watch.Options{})
	assert.Error(t, err)

	_, err = watch.New(watch.Options{Roots: []string{filepath.Join(t.TempDir(), "missing")}})
	assert.Error(t, err)
}
