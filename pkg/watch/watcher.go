// Package watch reports files that change below a set of directories, in
// debounced batches, so a run can be repeated for just those files.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/basefmt/pkg/editorconfig"
	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/ignore"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/arthur-debert/basefmt/pkg/paths"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// tempPrefix matches the temporary files written during atomic replacement
const tempPrefix = ".basefmt-"

// Batch is one debounced set of changes
type Batch struct {
	// Files are the regular files that were written or created and still
	// exist, sorted
	Files []string

	// ConfigChanged is set when an .editorconfig, .gitignore or
	// .basefmt.toml changed, which can affect files that did not change
	ConfigChanged bool
}

// Options configures a Watcher
type Options struct {
	// Roots are the directories watched recursively
	Roots []string

	// Hidden reports changes to dot files and descends into dot directories
	Hidden bool

	// Debounce is the quiet period before a batch is delivered
	Debounce time.Duration

	// OnChange receives each batch. Calls never overlap.
	OnChange func(Batch)
}

// Watcher turns fsnotify events into batches
type Watcher struct {
	roots     []string
	hidden    bool
	onChange  func(Batch)
	debouncer *Debouncer
	watcher   *fsnotify.Watcher
	logger    zerolog.Logger

	mu        sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// New starts watching every directory below opts.Roots
func New(opts Options) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no directories to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot create file watcher")
	}

	w := &Watcher{
		hidden:    opts.Hidden,
		onChange:  opts.OnChange,
		debouncer: NewDebouncer(opts.Debounce),
		watcher:   fsw,
		logger:    logging.GetLogger("watch"),
		closed:    make(chan struct{}),
	}
	w.debouncer.OnFire(w.deliver)

	for _, root := range opts.Roots {
		abs, err := filepath.Abs(paths.ExpandHome(root))
		if err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", root)
		}
		w.roots = append(w.roots, abs)
		if err := w.addTree(abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w.logger.Debug().Strs("roots", w.roots).Msg("Watching")
	return w, nil
}

// Run delivers batches until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	defer w.debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.closed:
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watch error")
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.closed) })
	w.debouncer.Stop()
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	base := filepath.Base(name)

	if strings.HasPrefix(base, tempPrefix) {
		return
	}

	if ev.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addTree(name); err != nil {
				w.logger.Warn().Err(err).Str("dir", name).Msg("Cannot watch new directory")
			}
			return
		}
	}

	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	if !isConfigFile(base) && !w.hidden && isHidden(base) {
		return
	}

	w.logger.Trace().Str("path", name).Str("op", ev.Op.String()).Msg("Change")
	w.debouncer.Push(name)
}

// deliver turns a debounced set of paths into a Batch
func (w *Watcher) deliver(changed []string) {
	var batch Batch
	for _, path := range changed {
		if isConfigFile(filepath.Base(path)) {
			batch.ConfigChanged = true
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		batch.Files = append(batch.Files, path)
	}
	if len(batch.Files) == 0 && !batch.ConfigChanged {
		return
	}

	logger := logging.WithFields(map[string]interface{}{
		"component":     "watch",
		"files":         len(batch.Files),
		"configChanged": batch.ConfigChanged,
	})
	logger.Debug().Msg("Delivering batch")

	if w.onChange == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.closed:
		return
	default:
	}
	w.onChange(batch)
}

// addTree watches dir and every directory below it
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", dir).
					WithDetail("path", dir)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir {
			if d.Name() == ".git" || (!w.hidden && isHidden(d.Name())) {
				return filepath.SkipDir
			}
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", p).
				WithDetail("path", p)
		}
		return nil
	})
}

func isConfigFile(name string) bool {
	switch name {
	case editorconfig.FileName, ignore.FileName, paths.ProjectConfigFile:
		return true
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
