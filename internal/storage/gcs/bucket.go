package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	tstorage "github.com/rezkam/tasko/internal/storage"
)

// Config selects the bucket and, for local emulators, the endpoint.
type Config struct {
	Bucket string
	Prefix string // object name prefix, e.g. "users/alice/"

	// Endpoint overrides the GCS API endpoint. When set, requests are sent
	// without authentication (fake-gcs-server and similar emulators).
	Endpoint string
}

// Bucket is a GCS-based implementation of storage.FileSystem.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS)
// unless an emulator endpoint is configured.
type Bucket struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewBucket creates a GCS client for cfg.
func NewBucket(ctx context.Context, cfg Config) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Bucket{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Close releases the underlying client.
func (b *Bucket) Close() error {
	return b.client.Close()
}

func (b *Bucket) object(name string) *storage.ObjectHandle {
	return b.client.Bucket(b.bucket).Object(b.prefix + name)
}

// Create writes an empty object so the name is reserved, then returns a handle.
func (b *Bucket) Create(ctx context.Context, name string) (tstorage.File, error) {
	if err := tstorage.ValidateFileName(name); err != nil {
		return nil, err
	}

	f := &Object{name: name, handle: b.object(name)}
	if err := f.Write(ctx, nil); err != nil {
		return nil, err
	}
	return f, nil
}

// Open returns a handle to an existing object.
func (b *Bucket) Open(ctx context.Context, name string) (tstorage.File, error) {
	if err := tstorage.ValidateFileName(name); err != nil {
		return nil, err
	}

	obj := b.object(name)
	if _, err := obj.Attrs(ctx); err != nil {
		// Use errors.Is to handle wrapped errors from GCS client
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("object %s: %w", name, tstorage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check object existence: %w", err)
	}
	return &Object{name: name, handle: obj}, nil
}

// Object is a handle to one snapshot object.
type Object struct {
	name   string
	handle *storage.ObjectHandle
}

func (o *Object) Name() string {
	return o.name
}

func (o *Object) Read(ctx context.Context) ([]byte, error) {
	r, err := o.handle.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("object %s: %w", o.name, tstorage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

// Write replaces the object. GCS uploads are atomic: readers see either the
// previous generation or the new one.
func (o *Object) Write(ctx context.Context, data []byte) error {
	w := o.handle.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}
