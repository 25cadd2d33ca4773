package upload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment is a materialized upload: a durable path to the stored bytes,
// the original display filename, and the sniffed content type. The file
// behind Path lives only for the duration of the request.
type Attachment struct {
	Path        string
	Filename    string
	ContentType string
}

// Store persists validated uploads into a durable working directory shared
// across requests. Generated filenames are collision-resistant so
// simultaneous requests never clash.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the working directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Ping verifies the working directory exists or can be created.
func (s *Store) Ping() error {
	return s.ensureDir()
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating upload dir: %w", err)
	}
	return nil
}

// Save writes the upload bytes under a generated name that combines the slot
// index, the current timestamp, and a random token, preserving the original
// extension. The returned Attachment keeps the sanitized display name, not
// the storage name.
func (s *Store) Save(slot int, displayName string, data []byte, contentType string) (Attachment, error) {
	if err := s.ensureDir(); err != nil {
		return Attachment{}, err
	}

	name := fmt.Sprintf("attachment_%d_%d_%s%s",
		slot, time.Now().Unix(), uuid.NewString(), filepath.Ext(displayName))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Attachment{}, fmt.Errorf("writing %s: %w", name, err)
	}

	return Attachment{
		Path:        path,
		Filename:    sanitizeFilename(displayName),
		ContentType: contentType,
	}, nil
}

// Cleanup deletes each materialized path. Already-deleted files are not an
// error, so calling it twice on the same set is harmless.
func (s *Store) Cleanup(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove temp upload", "path", p, "err", err)
		}
	}
}

// sanitizeFilename strips path components and control bytes from a
// client-supplied filename before it is echoed into email headers.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", "")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "attachment"
	}
	return name
}
