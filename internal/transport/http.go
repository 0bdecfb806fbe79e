package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkforge/docsync/internal/domain/activity"
	"github.com/inkforge/docsync/internal/domain/backup"
	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/domain/project"
	"github.com/inkforge/docsync/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DocumentService defines document operations needed by HTTP handlers.
type DocumentService interface {
	Load(ctx context.Context, tenantID, projectID string, docType document.Type) (*document.Document, error)
	Save(ctx context.Context, tenantID, projectID string, docType document.Type, content string, lastKnownStamp int64) (*document.Document, *document.ConflictInfo, error)
	RestoreBackup(ctx context.Context, tenantID, backupPath, targetPath string, snapshotFirst bool) error
}

// ProjectService defines project operations needed by HTTP handlers.
type ProjectService interface {
	Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	GetDefault(ctx context.Context, tenantID string) (*project.Project, error)
	List(ctx context.Context, tenantID string) ([]project.Summary, error)
}

// BackupLister lists snapshots for a document path.
type BackupLister interface {
	List(ctx context.Context, relPath string) ([]backup.Record, error)
}

// ActivityService lists recent activity.
type ActivityService interface {
	Recent(ctx context.Context, tenantID string, opts activity.ListOptions) ([]activity.Entry, error)
}

// WatcherStatus reports whether the file watcher is running.
type WatcherStatus interface {
	Active() bool
}

// Services groups the dependencies of the HTTP server.
type Services struct {
	Documents DocumentService
	Projects  ProjectService
	Backups   BackupLister
	Activity  ActivityService
	Watcher   WatcherStatus
}

// Server wires HTTP handlers.
type Server struct {
	svcs Services
}

// NewServer creates the HTTP router. Health and metrics are served
// without authentication; everything else goes through authMiddleware.
func NewServer(svcs Services, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	srv := &Server{svcs: svcs}

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Post("/projects", srv.handleCreateProject)
		r.Get("/projects", srv.handleListProjects)
		r.Get("/projects/default", srv.handleDefaultProject)
		r.Get("/projects/{projectID}", srv.handleGetProject)
		r.Get("/projects/{projectID}/activity", srv.handleProjectActivity)
		r.Get("/projects/{projectID}/documents/{documentType}", srv.handleGetDocument)
		r.Put("/projects/{projectID}/documents/{documentType}", srv.handlePutDocument)

		r.Get("/backups", srv.handleListBackups)
		r.Post("/backups/restore", srv.handleRestoreBackup)

		r.Get("/file-watcher/status", srv.handleWatcherStatus)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	docType, err := document.ParseType(chi.URLParam(r, "documentType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.svcs.Documents.Load(r.Context(), tenantID, chi.URLParam(r, "projectID"), docType)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"content":               doc.Content,
		"lastModifiedTimestamp": doc.ModifiedStamp,
	})
}

type saveDocumentRequest struct {
	Content            string `json:"content"`
	LastKnownTimestamp int64  `json:"lastKnownTimestamp"`
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	docType, err := document.ParseType(chi.URLParam(r, "documentType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req saveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, conflict, err := s.svcs.Documents.Save(r.Context(), tenantID, chi.URLParam(r, "projectID"), docType, req.Content, req.LastKnownTimestamp)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrConflict):
			writeError(w, http.StatusConflict, "document was modified concurrently")
		case errors.Is(err, document.ErrProjectNotFound):
			writeError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, document.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if conflict != nil {
		writeJSON(w, http.StatusConflict, conflict)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"newTimestamp": doc.ModifiedStamp,
	})
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	filePath := r.URL.Query().Get("filePath")
	if filePath == "" {
		writeError(w, http.StatusBadRequest, "missing filePath query parameter")
		return
	}

	// Backups are stored per path in a shared tree; only the tenant
	// owning the path's project may see them.
	projectID, _, err := document.ParseRelPath(filePath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.svcs.Projects.Get(r.Context(), tenantID, projectID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records, err := s.svcs.Backups.List(r.Context(), filePath)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidPath) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"backups": records})
}

type restoreRequest struct {
	BackupPath    string `json:"backupPath"`
	TargetPath    string `json:"targetPath"`
	SnapshotFirst bool   `json:"snapshotFirst,omitempty"`
}

func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BackupPath == "" || req.TargetPath == "" {
		writeError(w, http.StatusBadRequest, "backupPath and targetPath are required")
		return
	}

	err := s.svcs.Documents.RestoreBackup(r.Context(), tenantID, req.BackupPath, req.TargetPath, req.SnapshotFirst)
	if err != nil {
		switch {
		case errors.Is(err, backup.ErrBackupNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, document.ErrDocumentNotFound):
			writeError(w, http.StatusNotFound, "document not found")
		case errors.Is(err, backup.ErrInvalidPath), errors.Is(err, document.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (s *Server) handleWatcherStatus(w http.ResponseWriter, r *http.Request) {
	active := false
	if s.svcs.Watcher != nil {
		active = s.svcs.Watcher.Active()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isActive": active})
}

type createProjectRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proj, err := s.svcs.Projects.Create(r.Context(), tenantID, project.CreateRequest{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, project.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "project already exists")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	summaries, err := s.svcs.Projects.List(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []project.Summary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": summaries})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	proj, err := s.svcs.Projects.Get(r.Context(), tenantID, chi.URLParam(r, "projectID"))
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleDefaultProject(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	proj, err := s.svcs.Projects.GetDefault(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleProjectActivity(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := parseLimit(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		limit = parsed
	}

	entries, err := s.svcs.Activity.Recent(r.Context(), tenantID, activity.ListOptions{
		ProjectID: chi.URLParam(r, "projectID"),
		Limit:     limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}
