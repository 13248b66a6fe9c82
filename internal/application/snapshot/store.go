// Package snapshot holds the one authoritative copy of tasks and settings
// and mirrors it to durable storage: a user-connected file when there is
// one, otherwise the local key-value fallback.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rezkam/tasko/internal/domain"
	"github.com/rezkam/tasko/internal/storage"
)

const (
	// DefaultNamespace is the fallback key the snapshot is stored under.
	DefaultNamespace = "tasko-data"

	// DefaultOperationTimeout bounds each backend read or write.
	DefaultOperationTimeout = 10 * time.Second

	// NoFileName is reported by FileName when no file is connected.
	NoFileName = "No file connected"

	instrumentationName = "github.com/rezkam/tasko/internal/application/snapshot"

	backendFile     = "file"
	backendFallback = "fallback"
)

// Option configures a Store.
type Option func(*Store)

// WithFileSystem enables the user-granted file backend.
func WithFileSystem(fsys storage.FileSystem) Option {
	return func(s *Store) {
		s.fsys = fsys
	}
}

// WithNamespace sets the fallback key.
func WithNamespace(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.namespace = key
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone export file names are stamped in and naive
// due dates are read in. It must match the engine's location.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithOperationTimeout bounds each backend call. Zero disables the bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// Store is the durable snapshot store.
//
// Each logical write goes to exactly one backend: the connected file, or
// the fallback when no file is connected or the file write fails.
type Store struct {
	fallback  storage.KeyValue
	fsys      storage.FileSystem
	namespace string
	now       func() time.Time
	loc       *time.Location
	timeout   time.Duration

	// writeMu serializes persistence so writes reach backends in order.
	writeMu sync.Mutex

	mu   sync.RWMutex
	data domain.Snapshot
	file storage.File

	writes metric.Int64Counter
}

// New creates a Store holding the default snapshot. Call Load to read
// the persisted one.
func New(fallback storage.KeyValue, opts ...Option) *Store {
	s := &Store{
		fallback:  fallback,
		namespace: DefaultNamespace,
		now:       func() time.Time { return time.Now().UTC() },
		loc:       time.Local,
		timeout:   DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = domain.DefaultSnapshot(s.now())

	writes, err := otel.Meter(instrumentationName).Int64Counter(
		"tasko.snapshot.writes",
		metric.WithDescription("Snapshot writes by backend and outcome"),
	)
	if err != nil {
		slog.Warn("Failed to create snapshot write counter", "error", err)
	}
	s.writes = writes
	return s
}

// Load reads the fallback and installs what it holds. Missing or invalid
// fields degrade to defaults; Load never fails.
func (s *Store) Load(ctx context.Context) domain.Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := domain.DefaultSnapshot(s.now())

	opCtx, cancel := s.opContext(ctx)
	data, err := s.fallback.Get(opCtx, s.namespace)
	cancel()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.InfoContext(ctx, "No persisted snapshot, starting with defaults", "namespace", s.namespace)
	case err != nil:
		slog.ErrorContext(ctx, "Failed to read persisted snapshot, starting with defaults",
			"namespace", s.namespace, "error", err)
	default:
		decoded, err := decode(ctx, data, s.now(), s.loc, true)
		if err != nil {
			slog.ErrorContext(ctx, "Persisted snapshot is invalid, starting with defaults",
				"namespace", s.namespace, "error", err)
		} else {
			snap = decoded
		}
	}

	s.mu.Lock()
	s.data = snap
	s.mu.Unlock()

	return snap.Clone()
}

// Data returns a copy of the current snapshot.
func (s *Store) Data() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Update merges u into the snapshot and persists it. It reports whether
// some backend accepted the write.
func (s *Store) Update(ctx context.Context, u domain.SnapshotUpdate) bool {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "snapshot.Update")
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.data = u.Apply(s.data, s.now())
	snap := s.data.Clone()
	file := s.file
	s.mu.Unlock()

	return s.persist(ctx, snap, file)
}

// persist writes snap to file, or to the fallback when file is nil or the
// file write fails. Callers hold writeMu.
func (s *Store) persist(ctx context.Context, snap domain.Snapshot, file storage.File) bool {
	if file != nil {
		err := s.writeFile(ctx, file, snap)
		if err == nil {
			s.recordWrite(ctx, backendFile, nil)
			return true
		}
		s.recordWrite(ctx, backendFile, err)
		slog.ErrorContext(ctx, "Failed to write snapshot file, using fallback",
			"file", file.Name(), "error", err)
	}

	payload, err := json.Marshal(snap)
	if err == nil {
		opCtx, cancel := s.opContext(ctx)
		err = s.fallback.Put(opCtx, s.namespace, payload)
		cancel()
	}
	s.recordWrite(ctx, backendFallback, err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to write snapshot to fallback",
			"namespace", s.namespace, "error", err)
		return false
	}
	return true
}

func (s *Store) writeFile(ctx context.Context, file storage.File, snap domain.Snapshot) error {
	payload, err := encode(snap)
	if err != nil {
		return err
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return file.Write(opCtx, payload)
}

// CreateNewFile creates name through the file backend, connects it and
// writes the current snapshot into it. On failure the snapshot is saved
// to the fallback instead and false is returned.
func (s *Store) CreateNewFile(ctx context.Context, name string) bool {
	if s.fsys == nil {
		slog.WarnContext(ctx, "File backend not supported")
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.Data()

	opCtx, cancel := s.opContext(ctx)
	file, err := s.fsys.Create(opCtx, name)
	cancel()
	if err == nil {
		err = s.writeFile(ctx, file, snap)
	}
	if err != nil {
		s.logPickerError(ctx, "create", name, err)
		s.persist(ctx, snap, nil)
		return false
	}
	s.recordWrite(ctx, backendFile, nil)

	s.mu.Lock()
	s.file = file
	s.mu.Unlock()

	slog.InfoContext(ctx, "Snapshot file created", "file", file.Name())
	return true
}

// OpenFile connects an existing file and loads its contents. A file whose
// contents cannot be decoded stays connected and the current data is kept.
func (s *Store) OpenFile(ctx context.Context, name string) bool {
	if s.fsys == nil {
		slog.WarnContext(ctx, "File backend not supported")
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	file, err := s.fsys.Open(opCtx, name)
	if err != nil {
		s.logPickerError(ctx, "open", name, err)
		return false
	}
	data, err := file.Read(opCtx)
	if err != nil {
		s.logPickerError(ctx, "open", name, err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	snap, err := decode(ctx, data, s.now(), s.loc, true)
	if err != nil {
		slog.WarnContext(ctx, "Opened file is not a valid snapshot, keeping current data",
			"file", file.Name(), "error", err)
		return true
	}
	s.data = snap

	slog.InfoContext(ctx, "Snapshot file opened", "file", file.Name(), "tasks", len(snap.Tasks))
	return true
}

func (s *Store) logPickerError(ctx context.Context, op, name string, err error) {
	if errors.Is(err, storage.ErrCancelled) {
		slog.InfoContext(ctx, "File selection cancelled", "operation", op)
		return
	}
	slog.ErrorContext(ctx, "File operation failed", "operation", op, "file", name, "error", err)
}

// IsSupported reports whether a file backend is configured.
func (s *Store) IsSupported() bool {
	return s.fsys != nil
}

// IsFileConnected reports whether writes currently go to a file.
func (s *Store) IsFileConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file != nil
}

// FileName returns the connected file's name, or NoFileName.
func (s *Store) FileName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.file == nil {
		return NoFileName
	}
	return s.file.Name()
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) recordWrite(ctx context.Context, backend string, err error) {
	if s.writes == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
}
