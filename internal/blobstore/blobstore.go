// Package blobstore persists uploaded file contents outside the
// relational store, under a hierarchy of per-category folders.
package blobstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrWriteFailed = errors.New("blob write failed")
)

// Store is a minimal hierarchical byte store. Paths are
// forward-slash-separated and relative to the store's root.
type Store interface {
	// EnsureFolder creates the folder if it does not exist yet.
	// Idempotent: concurrent first-creation is not an error.
	EnsureFolder(ctx context.Context, path string) error

	// WriteFile stores data as a new file inside folder. Overwriting
	// an existing file is refused and reported as ErrWriteFailed.
	WriteFile(ctx context.Context, folder, filename string, data []byte) error

	// ReadFile returns the file's contents, or ErrNotFound.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// DeleteFile removes the file, or returns ErrNotFound.
	DeleteFile(ctx context.Context, path string) error
}
