package backup

import "errors"

var (
	// ErrBackupFailed indicates a snapshot could not be written. Callers
	// must treat this as fatal to the enclosing save.
	ErrBackupFailed = errors.New("backup failed")
	// ErrBackupNotFound indicates the referenced snapshot doesn't exist.
	ErrBackupNotFound = errors.New("backup not found")
	// ErrInvalidPath indicates a path outside the document store.
	ErrInvalidPath = errors.New("invalid backup path")
)
