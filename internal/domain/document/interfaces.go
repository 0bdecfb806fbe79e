package document

import (
	"context"
	"time"

	"github.com/inkforge/docsync/internal/domain/activity"
	"github.com/inkforge/docsync/internal/domain/backup"
)

// MetaRepository manages document version metadata.
type MetaRepository interface {
	Get(ctx context.Context, tenantID, projectID string, docType Type) (*Meta, error)
	Create(ctx context.Context, tenantID string, meta *Meta) error
	Update(ctx context.Context, tenantID string, meta *Meta, expectedStamp int64) error
	Put(ctx context.Context, tenantID string, meta *Meta) error
}

// ContentStore reads and writes canonical document content.
type ContentStore interface {
	Read(ctx context.Context, relPath string) ([]byte, error)
	Write(ctx context.Context, relPath string, data []byte) error
}

// BackupRecorder snapshots and restores document content.
type BackupRecorder interface {
	Snapshot(ctx context.Context, relPath string) (*backup.Record, error)
	Restore(ctx context.Context, backupPath, targetPath string) error
}

// ActivityRepository records document activity.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.Entry) error
}

// SaveObserver receives save, backup, and restore outcomes for metrics.
type SaveObserver interface {
	ObserveSave(outcome string, elapsed time.Duration)
	ObserveBackup()
	ObserveRestore()
}
