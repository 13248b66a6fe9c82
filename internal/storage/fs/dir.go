package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rezkam/tasko/internal/storage"
)

// Dir is a filesystem-based implementation of storage.FileSystem.
// Every handle it returns refers to a file directly inside the directory.
type Dir struct {
	baseDir string
}

// NewDir creates the directory if needed and returns a Dir rooted at it.
func NewDir(baseDir string) (*Dir, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Dir{baseDir: baseDir}, nil
}

// Create creates or truncates name and returns a handle to it.
func (d *Dir) Create(ctx context.Context, name string) (storage.File, error) {
	if err := storage.ValidateFileName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(d.baseDir, name)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &File{name: name, path: path}, nil
}

// Open returns a handle to an existing file.
func (d *Dir) Open(ctx context.Context, name string) (storage.File, error) {
	if err := storage.ValidateFileName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(d.baseDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", name, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", storage.ErrInvalidName, name)
	}

	return &File{name: name, path: path}, nil
}

// File is a handle to a snapshot file on disk.
type File struct {
	name string
	path string
	mu   sync.RWMutex
}

func (f *File) Name() string {
	return f.name
}

// Read returns the whole file.
func (f *File) Read(ctx context.Context) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", f.name, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Write replaces the file contents. The data is written to a temporary file
// in the same directory and renamed over the target, so a crash mid-write
// leaves the previous snapshot intact.
func (f *File) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+f.name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
