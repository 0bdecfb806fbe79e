// Package fsstore holds canonical document content on the local
// filesystem. Writes go through a temp file and rename, so a failed
// write never leaves a partially written document behind.
package fsstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store reads and writes files under a single root directory.
type Store struct {
	root string
}

// New creates the store root if needed and returns a Store.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute store root directory.
func (s *Store) Root() string {
	return s.root
}

// Read returns the bytes of a store-relative path.
func (s *Store) Read(ctx context.Context, relPath string) ([]byte, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// Write replaces the content of a store-relative path atomically.
func (s *Store) Write(ctx context.Context, relPath string, data []byte) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating parent dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("committing write: %w", err)
	}
	return nil
}

func (s *Store) resolve(relPath string) (string, error) {
	if relPath == "" || path.IsAbs(relPath) {
		return "", fmt.Errorf("invalid path %q", relPath)
	}
	clean := path.Clean(relPath)
	if clean != relPath || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid path %q", relPath)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
