package watch

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when Options.Debounce is unset
const DefaultDebounce = 200 * time.Millisecond

// Debouncer collects paths and hands them over in one sorted batch once no
// new path arrived for the configured delay
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	queued  map[string]struct{}
	onFire  func(paths []string)
	stopped bool
}

// NewDebouncer creates a debouncer. A non-positive delay means
// DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:  delay,
		queued: map[string]struct{}{},
	}
}

// OnFire sets the function receiving each batch
func (d *Debouncer) OnFire(fn func(paths []string)) {
	d.mu.Lock()
	d.onFire = fn
	d.mu.Unlock()
}

// Push queues path and restarts the quiet period
func (d *Debouncer) Push(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.queued[path] = struct{}{}
	if d.timer != nil {
		_ = d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Stop drops queued paths and prevents further batches
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.queued = map[string]struct{}{}
	if d.timer != nil {
		_ = d.timer.Stop()
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	queued := d.queued
	d.queued = map[string]struct{}{}
	fn := d.onFire
	stopped := d.stopped
	d.mu.Unlock()

	if stopped || fn == nil || len(queued) == 0 {
		return
	}

	paths := make([]string, 0, len(queued))
	for p := range queued {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	fn(paths)
}
