package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDebounce is the autosave delay after the last edit.
const DefaultDebounce = 2 * time.Second

// Resolution is the user's choice when a save hits a conflict.
type Resolution int

const (
	// ResolutionKeepLocal aborts the save and keeps local edits.
	ResolutionKeepLocal Resolution = iota
	// ResolutionReload discards local edits and reloads the server copy.
	ResolutionReload
)

// DocumentAPI is the subset of the client the editor needs.
type DocumentAPI interface {
	LoadDocument(ctx context.Context, projectID, docType string) (*DocumentPayload, error)
	SaveDocument(ctx context.Context, projectID, docType, content string, lastKnownStamp int64) (int64, error)
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithDebounce overrides the autosave delay.
func WithDebounce(d time.Duration) EditorOption {
	return func(e *Editor) { e.debounce = d }
}

// WithConflictHandler sets the callback invoked on a save conflict.
// Without a handler, conflicts resolve to ResolutionKeepLocal.
func WithConflictHandler(f func(*ConflictError) Resolution) EditorOption {
	return func(e *Editor) { e.onConflict = f }
}

// WithErrorHandler sets the callback invoked on non-conflict save errors.
func WithErrorHandler(f func(error)) EditorOption {
	return func(e *Editor) { e.onError = f }
}

// Editor holds local document edits and autosaves them after a debounce
// window. Local edits are never discarded on error; only an explicit
// ResolutionReload replaces them. A new autosave cancels the previous
// in-flight one.
type Editor struct {
	api       DocumentAPI
	projectID string
	docType   string
	debounce  time.Duration

	onConflict func(*ConflictError) Resolution
	onError    func(error)

	mu         sync.Mutex
	content    string
	stamp      int64
	hasUnsaved bool
	timer      *time.Timer
	cancelSave context.CancelFunc
	closed     bool
}

// NewEditor creates an editor for one project document.
func NewEditor(api DocumentAPI, projectID, docType string, opts ...EditorOption) *Editor {
	e := &Editor{
		api:       api,
		projectID: projectID,
		docType:   docType,
		debounce:  DefaultDebounce,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open loads the current document. A missing document is treated as
// empty, not as an error.
func (e *Editor) Open(ctx context.Context) error {
	doc, err := e.api.LoadDocument(ctx, e.projectID, e.docType)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.mu.Lock()
			e.content = ""
			e.stamp = 0
			e.hasUnsaved = false
			e.mu.Unlock()
			return nil
		}
		return err
	}

	e.mu.Lock()
	e.content = doc.Content
	e.stamp = doc.LastModifiedTimestamp
	e.hasUnsaved = false
	e.mu.Unlock()
	return nil
}

// SetContent records an edit and resets the autosave timer.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.content = content
	e.hasUnsaved = true

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, e.autosave)
}

// Flush saves any unsaved edits immediately.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()
	return e.save(ctx)
}

// Content returns the current local content.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Stamp returns the last stamp acknowledged by the server.
func (e *Editor) Stamp() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stamp
}

// HasUnsavedChanges reports whether local edits are pending.
func (e *Editor) HasUnsavedChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasUnsaved
}

// Close stops the autosave timer and cancels any in-flight save.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancelSave != nil {
		e.cancelSave()
		e.cancelSave = nil
	}
}

func (e *Editor) autosave() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	// Supersede the previous in-flight save.
	if e.cancelSave != nil {
		e.cancelSave()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelSave = cancel
	e.mu.Unlock()

	_ = e.save(ctx)
}

func (e *Editor) save(ctx context.Context) error {
	e.mu.Lock()
	if !e.hasUnsaved {
		e.mu.Unlock()
		return nil
	}
	snapshot := e.content
	lastKnown := e.stamp
	e.mu.Unlock()

	newStamp, err := e.api.SaveDocument(ctx, e.projectID, e.docType, snapshot, lastKnown)
	if err == nil {
		e.mu.Lock()
		e.stamp = newStamp
		if e.content == snapshot {
			e.hasUnsaved = false
		}
		e.mu.Unlock()
		return nil
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return e.resolveConflict(ctx, conflict)
	}

	// Local edits stay; the user can retry.
	if e.onError != nil {
		e.onError(err)
	}
	return err
}

func (e *Editor) resolveConflict(ctx context.Context, conflict *ConflictError) error {
	resolution := ResolutionKeepLocal
	if e.onConflict != nil {
		resolution = e.onConflict(conflict)
	}

	if resolution == ResolutionKeepLocal {
		return conflict
	}

	doc, err := e.api.LoadDocument(ctx, e.projectID, e.docType)
	if err != nil {
		if e.onError != nil {
			e.onError(err)
		}
		return err
	}

	e.mu.Lock()
	e.content = doc.Content
	e.stamp = doc.LastModifiedTimestamp
	e.hasUnsaved = false
	e.mu.Unlock()
	return nil
}
