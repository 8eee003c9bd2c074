// Package blob stores synthesized audio on the local filesystem or in a
// MinIO (S3 compatible) bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

const typeSuffix = ".type"

// FileStore implements ports.AudioStore on a directory.
// Each object is a data file plus a sidecar holding its content type.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Name implements ports.HealthChecker.
func (s *FileStore) Name() string { return "audio-filesystem" }

// Check implements ports.HealthChecker.
func (s *FileStore) Check(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Put implements ports.AudioStore.
func (s *FileStore) Put(_ context.Context, id string, data []byte, contentType string) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return fmt.Errorf("writing audio %s: %w", id, err)
	}
	if err := os.WriteFile(s.path(id)+typeSuffix, []byte(contentType), 0o644); err != nil {
		return fmt.Errorf("writing audio %s: %w", id, err)
	}

	return nil
}

// Get implements ports.AudioStore.
func (s *FileStore) Get(_ context.Context, id string) (*ports.AudioObject, error) {
	if err := validateID(id); err != nil {
		return nil, domain.NewNotFoundError("audio", id)
	}

	f, err := os.Open(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NewNotFoundError("audio", id)
	}
	if err != nil {
		return nil, fmt.Errorf("opening audio %s: %w", id, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("opening audio %s: %w", id, err)
	}

	contentType := "application/octet-stream"
	if ct, err := os.ReadFile(s.path(id) + typeSuffix); err == nil && len(ct) > 0 {
		contentType = strings.TrimSpace(string(ct))
	}

	return &ports.AudioObject{Body: f, ContentType: contentType, Size: info.Size()}, nil
}

// Delete implements ports.AudioStore.
func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return nil
	}

	for _, p := range []string{s.path(id), s.path(id) + typeSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("deleting audio %s: %w", id, err)
		}
	}

	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id)
}

// validateID accepts only UUIDs so ids can never escape the store.
func validateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return domain.NewValidationError("id", "must be a UUID")
	}
	return nil
}
