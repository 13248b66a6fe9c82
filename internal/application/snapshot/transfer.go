package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrNotJSONFile is returned when the import is neither named *.json nor typed application/json.
	ErrNotJSONFile = errors.New("file must be a JSON file")

	// ErrEmptyFile is returned for an import with no content.
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidJSON is returned when the content does not parse.
	ErrInvalidJSON = errors.New("invalid JSON format")

	// ErrNotObject is returned when the JSON root is not an object.
	ErrNotObject = errors.New("data must be an object")

	// ErrPersistAfterImport is returned when the imported snapshot could not be saved.
	ErrPersistAfterImport = errors.New("failed to save data after import")
)

// Export is a named, pretty-printed copy of the snapshot.
type Export struct {
	Name string
	Data []byte
}

// Export serializes the current snapshot. It does not change any state.
func (s *Store) Export(ctx context.Context) (Export, error) {
	snap := s.Data()

	data, err := encode(snap)
	if err != nil {
		return Export{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := ExportName(s.now().In(s.loc))
	slog.InfoContext(ctx, "Snapshot exported", "name", name, "tasks", len(snap.Tasks))
	return Export{Name: name, Data: data}, nil
}

// ExportName returns the backup file name for t,
// e.g. "tasko-backup-03-15-2025 14:05:09:042.json".
func ExportName(t time.Time) string {
	return fmt.Sprintf("tasko-backup-%s:%03d.json",
		t.Format("01-02-2006 15:04:05"), t.Nanosecond()/int(time.Millisecond))
}

// Import validates data as a snapshot, installs it and persists it
// immediately. Nothing is installed when validation fails.
func (s *Store) Import(ctx context.Context, name, contentType string, data []byte) error {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "snapshot.Import")
	defer span.End()
	span.SetAttributes(attribute.String("file.name", name), attribute.Int("file.size", len(data)))

	err := s.importSnapshot(ctx, name, contentType, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "Import failed", "file", name, "error", err)
	}
	return err
}

func (s *Store) importSnapshot(ctx context.Context, name, contentType string, data []byte) error {
	if !isJSONFile(name, contentType) {
		return ErrNotJSONFile
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyFile
	}

	snap, err := decode(ctx, data, s.now(), s.loc, false)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.data = snap
	file := s.file
	s.mu.Unlock()

	if !s.persist(ctx, snap.Clone(), file) {
		return ErrPersistAfterImport
	}

	slog.InfoContext(ctx, "Snapshot imported", "file", name, "tasks", len(snap.Tasks))
	return nil
}

func isJSONFile(name, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
