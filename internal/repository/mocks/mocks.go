package mocks

import (
	"context"

	"github.com/inkforge/docsync/internal/domain/activity"
	"github.com/inkforge/docsync/internal/domain/backup"
	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetDefault(ctx context.Context, tenantID string) (*project.Project, error) {
	args := m.Called(ctx, tenantID)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.Summary, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// DocumentRepository is a mock for document.MetaRepository.
type DocumentRepository struct {
	mock.Mock
}

func (m *DocumentRepository) Get(ctx context.Context, tenantID, projectID string, docType document.Type) (*document.Meta, error) {
	args := m.Called(ctx, tenantID, projectID, docType)
	if meta, ok := args.Get(0).(*document.Meta); ok {
		return meta, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) Create(ctx context.Context, tenantID string, meta *document.Meta) error {
	args := m.Called(ctx, tenantID, meta)
	return args.Error(0)
}

func (m *DocumentRepository) Update(ctx context.Context, tenantID string, meta *document.Meta, expectedStamp int64) error {
	args := m.Called(ctx, tenantID, meta, expectedStamp)
	return args.Error(0)
}

func (m *DocumentRepository) Put(ctx context.Context, tenantID string, meta *document.Meta) error {
	args := m.Called(ctx, tenantID, meta)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.Entry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ContentStore is a mock for document.ContentStore.
type ContentStore struct {
	mock.Mock
}

func (m *ContentStore) Read(ctx context.Context, relPath string) ([]byte, error) {
	args := m.Called(ctx, relPath)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentStore) Write(ctx context.Context, relPath string, data []byte) error {
	args := m.Called(ctx, relPath, data)
	return args.Error(0)
}

// BackupRecorder is a mock for document.BackupRecorder.
type BackupRecorder struct {
	mock.Mock
}

func (m *BackupRecorder) Snapshot(ctx context.Context, relPath string) (*backup.Record, error) {
	args := m.Called(ctx, relPath)
	if rec, ok := args.Get(0).(*backup.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BackupRecorder) Restore(ctx context.Context, backupPath, targetPath string) error {
	args := m.Called(ctx, backupPath, targetPath)
	return args.Error(0)
}
