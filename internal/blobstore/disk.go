package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Disk stores blobs as plain files under a base directory.
type Disk struct {
	baseDir string
}

// NewDisk creates the base directory if needed and returns a Store
// rooted at it.
func NewDisk(baseDir string) (*Disk, error) {
	if baseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Disk{baseDir: baseDir}, nil
}

func (d *Disk) EnsureFolder(ctx context.Context, path string) error {
	// MkdirAll succeeds when the folder already exists, which also
	// covers two callers racing on first creation.
	if err := os.MkdirAll(d.abs(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (d *Disk) WriteFile(ctx context.Context, folder, filename string, data []byte) error {
	absPath := d.abs(filepath.ToSlash(filepath.Join(folder, filename)))

	// O_EXCL guards the no-overwrite invariant: unique suffixes make
	// collisions unlikely, but a collision must never clobber a blob.
	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(absPath)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(absPath)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (d *Disk) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(path))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

func (d *Disk) DeleteFile(ctx context.Context, path string) error {
	err := os.Remove(d.abs(path))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (d *Disk) abs(path string) string {
	return filepath.Join(d.baseDir, filepath.FromSlash(path))
}
