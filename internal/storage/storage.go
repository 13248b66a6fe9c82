// Package storage defines the two persistence capabilities the durable
// snapshot store is built on: a user-granted file handle and a local
// key-value fallback.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound indicates the requested file or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCancelled indicates the user dismissed the file picker without choosing a name.
	ErrCancelled = errors.New("file selection cancelled")

	// ErrInvalidName indicates a file name that is not a plain .json file name.
	ErrInvalidName = errors.New("invalid file name")
)

// FileSystem hands out file handles on explicit user action, the way a
// save or open picker does. Nothing is read or written until a handle exists.
type FileSystem interface {
	// Create returns a handle to a new or truncated file.
	Create(ctx context.Context, name string) (File, error)

	// Open returns a handle to an existing file. Returns ErrNotFound if absent.
	Open(ctx context.Context, name string) (File, error)
}

// File is a handle to one snapshot file.
type File interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// KeyValue is the local fallback, addressed by a fixed namespace key.
type KeyValue interface {
	// Get returns the stored value. Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// ValidateFileName checks a picker-supplied name.
// An empty name means the picker was cancelled.
func ValidateFileName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrCancelled
	}
	if strings.ContainsAny(name, `/\`) || name != path.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		return fmt.Errorf("%w: %q must end in .json", ErrInvalidName, name)
	}
	return nil
}
