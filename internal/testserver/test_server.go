package testserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkforge/docsync/internal/domain/activity"
	"github.com/inkforge/docsync/internal/domain/backup"
	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/domain/project"
	"github.com/inkforge/docsync/internal/fsstore"
	"github.com/inkforge/docsync/internal/sqlite"
	"github.com/inkforge/docsync/internal/transport"
	"github.com/inkforge/docsync/internal/watcher"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full stack against a temp store and in-memory DB.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Store    *fsstore.Store
	Watcher  *watcher.Watcher
	Token    string
	TenantID string
}

func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	store, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	recorder := backup.NewRecorder(store.Root(), backup.Policy{}, nil)

	projectRepo := sqlite.NewProjectRepository(db)
	documentRepo := sqlite.NewDocumentRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	projectSvc := project.NewService(projectRepo, activityRepo, nil)
	activitySvc := activity.NewService(activityRepo, nil)
	documentSvc := document.NewService(documentRepo, store, recorder, activityRepo, nil, nil)

	fw, err := watcher.New(store.Root(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start())

	resolver := &apiKeyResolver{db: db}
	server := httptest.NewServer(transport.NewServer(transport.Services{
		Documents: documentSvc,
		Projects:  projectSvc,
		Backups:   recorder,
		Activity:  activitySvc,
		Watcher:   fw,
	}, transport.AuthMiddleware(resolver)))

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Store:    store,
		Watcher:  fw,
		Token:    token,
		TenantID: tenantID,
	}

	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		server.Close()
		_ = fw.Stop()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	hash := hashToken(token)
	_, err := ts.DB.Exec(
		`INSERT INTO api_keys (key_hash, tenant_id, created_at) VALUES (?, ?, ?)`,
		hash, tenantID, time.Now(),
	)
	return err
}

type apiKeyResolver struct {
	db *sqlite.DB
}

func (r *apiKeyResolver) ResolveTenant(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)
	var tenantID string
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&tenantID)
	if err != nil || tenantID == "" {
		return "", fmt.Errorf("unauthorized: invalid token")
	}
	return tenantID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
