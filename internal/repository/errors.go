// Package repository holds the sentinel errors shared by all storage
// backends. Consumer-side interfaces live with the services that use
// them, keeping this package a leaf.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic concurrency check fails
	ErrConflict = errors.New("conflict: entity was modified concurrently")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrAlreadyExists is returned when a unique constraint fails
	ErrAlreadyExists = errors.New("already exists")
)
