package document_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inkforge/docsync/internal/domain/backup"
	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/repository"
	"github.com/inkforge/docsync/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Save_FirstSave(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}
	activities := &mocks.ActivityRepository{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeRequirements).Return(nil, repository.ErrNotFound)
	content.On("Write", ctx, "p1/requirements.md", []byte("Req 1: Login")).Return(nil)
	metaRepo.On("Create", ctx, tenantID, mock.Anything).Return(nil)
	activities.On("Log", ctx, tenantID, mock.Anything).Return(nil)

	svc := document.NewService(metaRepo, content, backups, activities, nil, nil)
	doc, conflict, err := svc.Save(ctx, tenantID, "p1", document.TypeRequirements, "Req 1: Login", 0)
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.Equal(t, "Req 1: Login", doc.Content)
	require.Greater(t, doc.ModifiedStamp, int64(0))

	// No prior content, so no snapshot.
	backups.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything)
}

func TestDocumentService_Save_SnapshotsPriorContent(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeDesign).Return(&document.Meta{
		TenantID:      tenantID,
		ProjectID:     "p1",
		Type:          document.TypeDesign,
		RelPath:       "p1/design.md",
		ModifiedStamp: 42,
	}, nil)
	backups.On("Snapshot", ctx, "p1/design.md").Return(&backup.Record{OriginalPath: "p1/design.md"}, nil)
	content.On("Write", ctx, "p1/design.md", []byte("v2")).Return(nil)
	metaRepo.On("Update", ctx, tenantID, mock.Anything, int64(42)).Return(nil)

	svc := document.NewService(metaRepo, content, backups, nil, nil, nil)
	doc, conflict, err := svc.Save(ctx, tenantID, "p1", document.TypeDesign, "v2", 42)
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.Greater(t, doc.ModifiedStamp, int64(42))

	backups.AssertCalled(t, "Snapshot", ctx, "p1/design.md")
}

func TestDocumentService_Save_Conflict(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeTasks).Return(&document.Meta{
		ModifiedStamp: 42,
		RelPath:       "p1/tasks.md",
	}, nil)

	svc := document.NewService(metaRepo, content, backups, nil, nil, nil)
	doc, conflict, err := svc.Save(ctx, tenantID, "p1", document.TypeTasks, "stale edit", 7)
	require.NoError(t, err)
	require.Nil(t, doc)
	require.NotNil(t, conflict)
	require.Equal(t, int64(42), conflict.ServerStamp)
	require.Equal(t, int64(7), conflict.ClientStamp)

	// Nothing may be written on a conflict.
	backups.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything)
	content.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Save_BackupFailureAbortsSave(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeRequirements).Return(&document.Meta{
		ModifiedStamp: 42,
		RelPath:       "p1/requirements.md",
	}, nil)
	backups.On("Snapshot", ctx, "p1/requirements.md").Return(nil, backup.ErrBackupFailed)

	svc := document.NewService(metaRepo, content, backups, nil, nil, nil)
	_, _, err := svc.Save(ctx, tenantID, "p1", document.TypeRequirements, "new", 42)
	require.ErrorIs(t, err, backup.ErrBackupFailed)

	content.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Save_MetadataRace(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeDesign).Return(&document.Meta{
		ModifiedStamp: 42,
		RelPath:       "p1/design.md",
	}, nil)
	backups.On("Snapshot", ctx, "p1/design.md").Return(&backup.Record{}, nil)
	content.On("Write", ctx, "p1/design.md", mock.Anything).Return(nil)
	metaRepo.On("Update", ctx, tenantID, mock.Anything, int64(42)).Return(repository.ErrConflict)

	svc := document.NewService(metaRepo, content, backups, nil, nil, nil)
	_, _, err := svc.Save(ctx, tenantID, "p1", document.TypeDesign, "racing", 42)
	require.ErrorIs(t, err, document.ErrConflict)
}

func TestDocumentService_Save_WriteFailureLeavesMetadataUntouched(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeTasks).Return(&document.Meta{
		ModifiedStamp: 42,
		RelPath:       "p1/tasks.md",
	}, nil)
	backups.On("Snapshot", ctx, "p1/tasks.md").Return(&backup.Record{}, nil)
	content.On("Write", ctx, "p1/tasks.md", mock.Anything).Return(errors.New("disk full"))

	svc := document.NewService(metaRepo, content, backups, nil, nil, nil)
	_, _, err := svc.Save(ctx, tenantID, "p1", document.TypeTasks, "new", 42)
	require.ErrorIs(t, err, document.ErrStorage)

	// The prior version was snapshotted and the stored stamp still
	// points at it; nothing was committed for the failed save.
	backups.AssertCalled(t, "Snapshot", ctx, "p1/tasks.md")
	metaRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	metaRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Save_UnknownProject(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}

	metaRepo.On("Get", ctx, tenantID, "missing", document.TypeRequirements).Return(nil, repository.ErrNotFound)
	content.On("Write", ctx, "missing/requirements.md", mock.Anything).Return(nil)
	metaRepo.On("Create", ctx, tenantID, mock.Anything).Return(repository.ErrForeignKeyViolation)

	svc := document.NewService(metaRepo, content, &mocks.BackupRecorder{}, nil, nil, nil)
	_, _, err := svc.Save(ctx, tenantID, "missing", document.TypeRequirements, "x", 0)
	require.ErrorIs(t, err, document.ErrProjectNotFound)
}

func TestDocumentService_Load(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeRequirements).Return(&document.Meta{
		RelPath:       "p1/requirements.md",
		ModifiedStamp: 42,
	}, nil)
	content.On("Read", ctx, "p1/requirements.md").Return([]byte("Req 1"), nil)

	svc := document.NewService(metaRepo, content, &mocks.BackupRecorder{}, nil, nil, nil)
	doc, err := svc.Load(ctx, tenantID, "p1", document.TypeRequirements)
	require.NoError(t, err)
	require.Equal(t, "Req 1", doc.Content)
	require.Equal(t, int64(42), doc.ModifiedStamp)
}

func TestDocumentService_Load_NotFound(t *testing.T) {
	ctx := context.Background()

	metaRepo := &mocks.DocumentRepository{}
	metaRepo.On("Get", ctx, "tenant1", "p1", document.TypeTasks).Return(nil, repository.ErrNotFound)

	svc := document.NewService(metaRepo, &mocks.ContentStore{}, &mocks.BackupRecorder{}, nil, nil, nil)
	_, err := svc.Load(ctx, "tenant1", "p1", document.TypeTasks)
	require.ErrorIs(t, err, document.ErrDocumentNotFound)
}

func TestDocumentService_RestoreBackup(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"
	restored := "restored content"

	metaRepo := &mocks.DocumentRepository{}
	content := &mocks.ContentStore{}
	backups := &mocks.BackupRecorder{}
	activities := &mocks.ActivityRepository{}

	metaRepo.On("Get", ctx, tenantID, "p1", document.TypeRequirements).Return(&document.Meta{
		RelPath:       "p1/requirements.md",
		ModifiedStamp: 42,
	}, nil)
	backups.On("Restore", ctx, ".backups/p1__requirements.md/41.md", "p1/requirements.md").Return(nil)
	content.On("Read", ctx, "p1/requirements.md").Return([]byte(restored), nil)
	metaRepo.On("Put", ctx, tenantID, mock.MatchedBy(func(m *document.Meta) bool {
		sum := sha256.Sum256([]byte(restored))
		return m.ModifiedStamp > 42 && m.Checksum == hex.EncodeToString(sum[:])
	})).Return(nil)
	activities.On("Log", ctx, tenantID, mock.Anything).Return(nil)

	svc := document.NewService(metaRepo, content, backups, activities, nil, nil)
	err := svc.RestoreBackup(ctx, tenantID, ".backups/p1__requirements.md/41.md", "p1/requirements.md", false)
	require.NoError(t, err)
}

func TestDocumentService_RestoreBackup_InvalidTarget(t *testing.T) {
	svc := document.NewService(&mocks.DocumentRepository{}, &mocks.ContentStore{}, &mocks.BackupRecorder{}, nil, nil, nil)
	err := svc.RestoreBackup(context.Background(), "tenant1", ".backups/x/1.md", "../escape.md", false)
	require.ErrorIs(t, err, document.ErrInvalidInput)
}

func TestDocumentService_RestoreBackup_ForeignDocument(t *testing.T) {
	ctx := context.Background()

	metaRepo := &mocks.DocumentRepository{}
	backups := &mocks.BackupRecorder{}

	// The caller has no metadata row for this path: it belongs to some
	// other tenant, or was never saved. Either way, nothing to restore.
	metaRepo.On("Get", ctx, "tenant2", "p1", document.TypeRequirements).Return(nil, repository.ErrNotFound)

	svc := document.NewService(metaRepo, &mocks.ContentStore{}, backups, nil, nil, nil)
	err := svc.RestoreBackup(ctx, "tenant2", ".backups/p1__requirements.md/41.md", "p1/requirements.md", false)
	require.ErrorIs(t, err, document.ErrDocumentNotFound)

	backups.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything, mock.Anything)
}

// memMetaRepo is a stateful stand-in with real compare-and-set
// semantics, for exercising concurrent savers.
type memMetaRepo struct {
	mu    sync.Mutex
	metas map[string]document.Meta
}

func newMemMetaRepo() *memMetaRepo {
	return &memMetaRepo{metas: make(map[string]document.Meta)}
}

func metaKey(tenantID, projectID string, docType document.Type) string {
	return tenantID + "/" + projectID + "/" + string(docType)
}

func (r *memMetaRepo) Get(_ context.Context, tenantID, projectID string, docType document.Type) (*document.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.metas[metaKey(tenantID, projectID, docType)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *memMetaRepo) Create(_ context.Context, tenantID string, meta *document.Meta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := metaKey(tenantID, meta.ProjectID, meta.Type)
	if _, ok := r.metas[key]; ok {
		return repository.ErrConflict
	}
	r.metas[key] = *meta
	return nil
}

func (r *memMetaRepo) Update(_ context.Context, tenantID string, meta *document.Meta, expectedStamp int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := metaKey(tenantID, meta.ProjectID, meta.Type)
	if m, ok := r.metas[key]; !ok || m.ModifiedStamp != expectedStamp {
		return repository.ErrConflict
	}
	r.metas[key] = *meta
	return nil
}

func (r *memMetaRepo) Put(_ context.Context, tenantID string, meta *document.Meta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas[metaKey(tenantID, meta.ProjectID, meta.Type)] = *meta
	return nil
}

// gateStore blocks each write until released, so a test can hold one
// writer mid-save while another tries to enter.
type gateStore struct {
	entered chan string
	release chan struct{}

	mu     sync.Mutex
	writes []string
}

func (g *gateStore) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (g *gateStore) Write(_ context.Context, _ string, data []byte) error {
	g.entered <- string(data)
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes = append(g.writes, string(data))
	return nil
}

func TestDocumentService_Save_SerializesWriters(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	store := &gateStore{entered: make(chan string, 2), release: make(chan struct{})}
	svc := document.NewService(newMemMetaRepo(), store, &mocks.BackupRecorder{}, nil, nil, nil)

	type result struct {
		doc      *document.Document
		conflict *document.ConflictInfo
		err      error
	}
	results := make(chan result, 2)
	save := func(content string) {
		doc, conflict, err := svc.Save(ctx, tenantID, "p1", document.TypeRequirements, content, 0)
		results <- result{doc, conflict, err}
	}

	// Both writers hold the same stamp. One reaches the content store
	// and parks there; the other must wait behind it rather than write.
	go save("alice's edit")
	go save("bob's edit")

	winner := <-store.entered
	time.Sleep(50 * time.Millisecond)
	close(store.release)

	first, second := <-results, <-results
	if first.doc == nil {
		first, second = second, first
	}

	require.NoError(t, first.err)
	require.Equal(t, winner, first.doc.Content)

	require.NoError(t, second.err)
	require.Nil(t, second.doc)
	require.NotNil(t, second.conflict, "the trailing writer must see a conflict")

	// The loser never touched the content store.
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, []string{winner}, store.writes)
}
