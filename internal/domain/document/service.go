package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/inkforge/docsync/internal/domain/activity"
	"github.com/inkforge/docsync/internal/repository"
)

// Save outcomes reported to the observer.
const (
	OutcomeSaved    = "saved"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Service handles document load/save with optimistic concurrency.
type Service struct {
	meta       MetaRepository
	content    ContentStore
	backups    BackupRecorder
	activities ActivityRepository
	observer   SaveObserver
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new document service.
func NewService(
	meta MetaRepository,
	content ContentStore,
	backups BackupRecorder,
	activities ActivityRepository,
	observer SaveObserver,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		meta:       meta,
		content:    content,
		backups:    backups,
		activities: activities,
		observer:   observer,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockDocument serializes writers of one document. The stamp check and
// the content write must not interleave across writers, or the loser's
// bytes could land on disk after the winner's.
func (s *Service) lockDocument(tenantID, projectID string, docType Type) func() {
	key := tenantID + "/" + RelPath(projectID, docType)

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load returns the document content and its current stamp.
func (s *Service) Load(ctx context.Context, tenantID, projectID string, docType Type) (*Document, error) {
	m, err := s.meta.Get(ctx, tenantID, projectID, docType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("loading document metadata: %w", err)
	}

	data, err := s.content.Read(ctx, m.RelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorage, m.RelPath, err)
	}

	return &Document{
		ProjectID:     projectID,
		Type:          docType,
		Content:       string(data),
		ModifiedStamp: m.ModifiedStamp,
	}, nil
}

// Save persists new content if the caller's stamp matches the stored one.
// The prior content is snapshotted before it is replaced; a snapshot
// failure aborts the save. Returns the updated document, or a ConflictInfo
// when the stamps diverge.
func (s *Service) Save(ctx context.Context, tenantID, projectID string, docType Type, content string, lastKnownStamp int64) (*Document, *ConflictInfo, error) {
	started := time.Now()

	doc, conflict, err := s.save(ctx, tenantID, projectID, docType, content, lastKnownStamp)

	if s.observer != nil {
		outcome := OutcomeSaved
		switch {
		case err != nil:
			outcome = OutcomeError
		case conflict != nil:
			outcome = OutcomeConflict
		}
		s.observer.ObserveSave(outcome, time.Since(started))
	}

	return doc, conflict, err
}

func (s *Service) save(ctx context.Context, tenantID, projectID string, docType Type, content string, lastKnownStamp int64) (*Document, *ConflictInfo, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, nil, ErrInvalidInput
	}
	if _, err := ParseType(string(docType)); err != nil {
		return nil, nil, err
	}

	unlock := s.lockDocument(tenantID, projectID, docType)
	defer unlock()

	current, err := s.meta.Get(ctx, tenantID, projectID, docType)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("loading document metadata: %w", err)
	}

	var serverStamp int64
	if current != nil {
		serverStamp = current.ModifiedStamp
	}

	if conflict := DetectConflict(lastKnownStamp, serverStamp); conflict != nil {
		s.logger.Info("save rejected",
			"project_id", projectID,
			"document_type", docType,
			"server_stamp", serverStamp,
			"client_stamp", lastKnownStamp,
		)
		return nil, conflict, nil
	}

	relPath := RelPath(projectID, docType)

	// Prior content must be safely on disk before it is replaced.
	if current != nil {
		if _, err := s.backups.Snapshot(ctx, relPath); err != nil {
			return nil, nil, fmt.Errorf("snapshotting before save: %w", err)
		}
		if s.observer != nil {
			s.observer.ObserveBackup()
		}
	}

	if err := s.content.Write(ctx, relPath, []byte(content)); err != nil {
		return nil, nil, fmt.Errorf("%w: writing %s: %v", ErrStorage, relPath, err)
	}

	sum := sha256.Sum256([]byte(content))
	next := &Meta{
		TenantID:      tenantID,
		ProjectID:     projectID,
		Type:          docType,
		RelPath:       relPath,
		ModifiedStamp: nextStamp(serverStamp),
		Checksum:      hex.EncodeToString(sum[:]),
		SizeBytes:     int64(len(content)),
	}

	if current == nil {
		err = s.meta.Create(ctx, tenantID, next)
	} else {
		err = s.meta.Update(ctx, tenantID, next, serverStamp)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, ErrConflict
		}
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("updating document metadata: %w", err)
	}

	if s.activities != nil {
		dt := string(docType)
		_ = s.activities.Log(ctx, tenantID, &activity.Entry{
			ProjectID:    projectID,
			DocumentType: &dt,
			Type:         activity.TypeDocumentSaved,
			Summary:      fmt.Sprintf("saved %s document", docType),
			Stamp:        next.ModifiedStamp,
		})
	}

	return &Document{
		ProjectID:     projectID,
		Type:          docType,
		Content:       content,
		ModifiedStamp: next.ModifiedStamp,
	}, nil, nil
}

// RestoreBackup copies a snapshot back over a document and advances its
// stamp, so open editors holding the pre-restore stamp will conflict.
// When snapshotFirst is set the current content is snapshotted before
// being overwritten.
func (s *Service) RestoreBackup(ctx context.Context, tenantID, backupPath, targetPath string, snapshotFirst bool) error {
	projectID, docType, err := ParseRelPath(targetPath)
	if err != nil {
		return err
	}

	unlock := s.lockDocument(tenantID, projectID, docType)
	defer unlock()

	// The caller must own the target document. A tenant without a
	// metadata row for this path has nothing to restore.
	current, err := s.meta.Get(ctx, tenantID, projectID, docType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("loading document metadata: %w", err)
	}

	if snapshotFirst {
		if _, err := s.backups.Snapshot(ctx, targetPath); err != nil {
			return fmt.Errorf("snapshotting before restore: %w", err)
		}
		if s.observer != nil {
			s.observer.ObserveBackup()
		}
	}

	if err := s.backups.Restore(ctx, backupPath, targetPath); err != nil {
		return err
	}

	data, err := s.content.Read(ctx, targetPath)
	if err != nil {
		return fmt.Errorf("%w: reading restored %s: %v", ErrStorage, targetPath, err)
	}

	serverStamp := current.ModifiedStamp
	sum := sha256.Sum256(data)
	next := &Meta{
		TenantID:      tenantID,
		ProjectID:     projectID,
		Type:          docType,
		RelPath:       targetPath,
		ModifiedStamp: nextStamp(serverStamp),
		Checksum:      hex.EncodeToString(sum[:]),
		SizeBytes:     int64(len(data)),
	}
	if err := s.meta.Put(ctx, tenantID, next); err != nil {
		return fmt.Errorf("updating document metadata: %w", err)
	}

	if s.activities != nil {
		dt := string(docType)
		_ = s.activities.Log(ctx, tenantID, &activity.Entry{
			ProjectID:    projectID,
			DocumentType: &dt,
			Type:         activity.TypeDocumentRestored,
			Summary:      fmt.Sprintf("restored %s document from %s", docType, backupPath),
			Stamp:        next.ModifiedStamp,
		})
	}

	if s.observer != nil {
		s.observer.ObserveRestore()
	}

	return nil
}

// ParseRelPath splits a store-relative path into project ID and document type.
func ParseRelPath(relPath string) (string, Type, error) {
	parts := strings.Split(strings.Trim(relPath, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: path %q is not a project document", ErrInvalidInput, relPath)
	}
	name, ok := strings.CutSuffix(parts[1], ".md")
	if !ok {
		return "", "", fmt.Errorf("%w: path %q is not a markdown document", ErrInvalidInput, relPath)
	}
	docType, err := ParseType(name)
	if err != nil {
		return "", "", err
	}
	return parts[0], docType, nil
}

// nextStamp returns the current unix-nano instant, bumped past the prior
// stamp if the clock has not advanced.
func nextStamp(after int64) int64 {
	s := time.Now().UnixNano()
	if s <= after {
		s = after + 1
	}
	return s
}
