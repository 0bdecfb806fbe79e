package document

import "errors"

var (
	// ErrDocumentNotFound indicates no document exists yet for the type.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrProjectNotFound indicates the owning project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrConflict indicates the stamp check failed inside the metadata write.
	ErrConflict = errors.New("document modified since last load")
	// ErrStorage indicates the canonical content write or read failed.
	ErrStorage = errors.New("document storage failure")
	// ErrInvalidInput indicates invalid input for document operations.
	ErrInvalidInput = errors.New("invalid document input")
)
