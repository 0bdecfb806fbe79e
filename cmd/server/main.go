package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkforge/docsync/internal/config"
	"github.com/inkforge/docsync/internal/domain/activity"
	"github.com/inkforge/docsync/internal/domain/backup"
	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/domain/project"
	"github.com/inkforge/docsync/internal/fsstore"
	"github.com/inkforge/docsync/internal/metrics"
	"github.com/inkforge/docsync/internal/sqlite"
	"github.com/inkforge/docsync/internal/transport"
	"github.com/inkforge/docsync/internal/watcher"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	var logWriter io.Writer = os.Stdout
	if cfg.Log.Path != "" {
		logWriter = &lumberjack.Logger{
			Filename:   cfg.Log.Path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, err := fsstore.New(cfg.Store.Root)
	if err != nil {
		logger.Error("failed to open document store", "error", err)
		os.Exit(1)
	}

	policy, err := cfg.Backup.Policy()
	if err != nil {
		logger.Error("invalid backup policy", "error", err)
		os.Exit(1)
	}
	recorder := backup.NewRecorder(store.Root(), policy, logger)

	projectRepo := sqlite.NewProjectRepository(db)
	documentRepo := sqlite.NewDocumentRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	observer := metrics.NewRecorder()
	projectSvc := project.NewService(projectRepo, activityRepo, logger)
	activitySvc := activity.NewService(activityRepo, logger)
	documentSvc := document.NewService(documentRepo, store, recorder, activityRepo, observer, logger)

	var fw *watcher.Watcher
	if cfg.Watch.Enabled {
		fw, err = watcher.New(store.Root(), func(ev watcher.ChangeEvent) {
			projectID, docType, err := document.ParseRelPath(ev.RelPath)
			if err != nil {
				return
			}
			dt := string(docType)
			_ = activityRepo.LogForProject(context.Background(), projectID, &activity.Entry{
				DocumentType: &dt,
				Type:         activity.TypeFileChanged,
				Summary:      fmt.Sprintf("%s document %s on disk", docType, ev.Op),
				Stamp:        time.Now().UnixNano(),
			})
		}, logger)
		if err != nil {
			logger.Error("failed to create file watcher", "error", err)
			os.Exit(1)
		}
		if err := fw.Start(); err != nil {
			logger.Error("failed to start file watcher", "error", err)
			os.Exit(1)
		}
		defer fw.Stop()
	}

	resolver := &apiKeyResolver{db: db}
	var watcherStatus transport.WatcherStatus
	if fw != nil {
		watcherStatus = fw
	}
	router := transport.NewServer(transport.Services{
		Documents: documentSvc,
		Projects:  projectSvc,
		Backups:   recorder,
		Activity:  activitySvc,
		Watcher:   watcherStatus,
	}, transport.AuthMiddleware(resolver))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "store", store.Root())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
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
