// Package watcher observes the document store for external modifications.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/inkforge/docsync/internal/domain/backup"
	"github.com/fsnotify/fsnotify"
)

// ChangeEvent reports a markdown file changing under the store root.
type ChangeEvent struct {
	// RelPath is the store-relative path of the changed file.
	RelPath string
	// Op is a human-readable operation name (create, modify, delete).
	Op string
}

// Watcher monitors the document store root using fsnotify. Project
// directories are added as they appear; the backup tree and temp files
// are ignored.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	onChange func(ChangeEvent)
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher for the given store root. onChange may be nil.
func New(root string, onChange func(ChangeEvent), logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		fs:       fs,
		root:     root,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the store root and its project directories.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	if err := w.fs.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch store root %s: %w", w.root, err)
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to read store root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == backup.DirName {
			continue
		}
		if err := w.fs.Add(filepath.Join(w.root, entry.Name())); err != nil {
			return fmt.Errorf("failed to watch project dir %s: %w", entry.Name(), err)
		}
	}

	w.running = true
	w.wg.Add(1)
	go w.loop()

	return nil
}

// Active reports whether the watcher is running.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if rel == "." || strings.HasPrefix(rel, backup.DirName+"/") || rel == backup.DirName {
		return
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".tmp-") {
		return
	}

	// New project directory directly under the root: start watching it.
	if event.Op.Has(fsnotify.Create) && !strings.Contains(rel, "/") {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new project dir", "dir", rel, "error", err)
			}
			return
		}
	}

	if !strings.HasSuffix(rel, ".md") {
		return
	}

	var op string
	switch {
	case event.Op.Has(fsnotify.Create):
		op = "create"
	case event.Op.Has(fsnotify.Write):
		op = "modify"
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		op = "delete"
	default:
		return
	}

	w.logger.Debug("file changed", "path", rel, "op", op)
	if w.onChange != nil {
		w.onChange(ChangeEvent{RelPath: rel, Op: op})
	}
}
