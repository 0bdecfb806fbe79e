package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DirName is the directory under the store root that holds all snapshots.
const DirName = ".backups"

// Recorder snapshots document files into a timestamped backup tree.
// Each snapshot is a uniquely named file, so concurrent snapshots of
// different documents need no locking. Listing is rebuilt from directory
// contents alone; there is no index file.
type Recorder struct {
	root   string
	policy Policy
	logger *slog.Logger
}

// NewRecorder creates a recorder rooted at the document store directory.
func NewRecorder(root string, policy Policy, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{root: root, policy: policy, logger: logger}
}

// Snapshot copies the current bytes of relPath into the backup tree and
// returns the resulting record. The original file is not modified.
func (r *Recorder) Snapshot(ctx context.Context, relPath string) (*Record, error) {
	if err := validateDocPath(relPath); err != nil {
		return nil, err
	}

	src := filepath.Join(r.root, filepath.FromSlash(relPath))
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrBackupFailed, relPath, err)
	}

	dir := filepath.Join(r.root, DirName, encodePath(relPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating backup dir: %v", ErrBackupFailed, err)
	}

	ext := path.Ext(relPath)
	stamp := time.Now().UnixNano()
	var name string
	for {
		name = strconv.FormatInt(stamp, 10) + ext
		if _, err := os.Lstat(filepath.Join(dir, name)); os.IsNotExist(err) {
			break
		}
		stamp++
	}

	if err := writeFileAtomic(filepath.Join(dir, name), data); err != nil {
		return nil, fmt.Errorf("%w: writing snapshot: %v", ErrBackupFailed, err)
	}

	sum := sha256.Sum256(data)
	rec := &Record{
		OriginalPath: relPath,
		BackupPath:   path.Join(DirName, encodePath(relPath), name),
		Stamp:        stamp,
		Checksum:     hex.EncodeToString(sum[:]),
		SizeBytes:    int64(len(data)),
	}

	if err := r.prune(relPath); err != nil {
		r.logger.Warn("backup prune failed", "path", relPath, "error", err)
	}

	return rec, nil
}

// List returns all snapshots of relPath, newest first. The result always
// reflects the current on-disk set.
func (r *Recorder) List(ctx context.Context, relPath string) ([]Record, error) {
	if err := validateDocPath(relPath); err != nil {
		return nil, err
	}

	dir := filepath.Join(r.root, DirName, encodePath(relPath))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing backups for %s: %w", relPath, err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stamp, err := strconv.ParseInt(strings.TrimSuffix(name, path.Ext(name)), 10, 64)
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading backup %s: %w", name, err)
		}
		sum := sha256.Sum256(data)

		records = append(records, Record{
			OriginalPath: relPath,
			BackupPath:   path.Join(DirName, encodePath(relPath), name),
			Stamp:        stamp,
			Checksum:     hex.EncodeToString(sum[:]),
			SizeBytes:    int64(len(data)),
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Stamp > records[j].Stamp })
	return records, nil
}

// Restore copies a snapshot's content back onto the target path,
// overwriting the current content atomically.
func (r *Recorder) Restore(ctx context.Context, backupPath, targetPath string) error {
	if err := validateBackupPath(backupPath); err != nil {
		return err
	}
	if err := validateDocPath(targetPath); err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(backupPath)))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, backupPath)
	}
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", backupPath, err)
	}

	dst := filepath.Join(r.root, filepath.FromSlash(targetPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating target dir: %w", err)
	}
	if err := writeFileAtomic(dst, data); err != nil {
		return fmt.Errorf("restoring %s: %w", targetPath, err)
	}
	return nil
}

func (r *Recorder) prune(relPath string) error {
	if r.policy.MaxPerFile <= 0 && r.policy.MaxAge <= 0 {
		return nil
	}

	records, err := r.List(context.Background(), relPath)
	if err != nil {
		return err
	}

	cutoff := int64(0)
	if r.policy.MaxAge > 0 {
		cutoff = time.Now().Add(-r.policy.MaxAge).UnixNano()
	}

	for i, rec := range records {
		expired := cutoff > 0 && rec.Stamp < cutoff
		overflow := r.policy.MaxPerFile > 0 && i >= r.policy.MaxPerFile
		if !expired && !overflow {
			continue
		}
		if err := os.Remove(filepath.Join(r.root, filepath.FromSlash(rec.BackupPath))); err != nil {
			return err
		}
	}
	return nil
}

// encodePath flattens a store-relative path into a single directory name,
// so listings can be rebuilt from filename parsing alone.
func encodePath(relPath string) string {
	return strings.ReplaceAll(path.Clean(relPath), "/", "__")
}

func validateDocPath(relPath string) error {
	if relPath == "" || path.IsAbs(relPath) || strings.Contains(relPath, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	clean := path.Clean(relPath)
	if clean != relPath || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, DirName) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	return nil
}

func validateBackupPath(backupPath string) error {
	clean := path.Clean(backupPath)
	if clean != backupPath || !strings.HasPrefix(clean, DirName+"/") || strings.Contains(clean, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, backupPath)
	}
	return nil
}

func writeFileAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
