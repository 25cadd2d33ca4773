package upload

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Janitor periodically sweeps the working directory and deletes files older
// than maxAge. Requests clean up after themselves; the janitor only catches
// leftovers from crashed requests. It runs until ctx is cancelled.
func (s *Store) Janitor(ctx context.Context, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(maxAge)
		}
	}
}

func (s *Store) sweep(maxAge time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("janitor: cannot read upload dir", "dir", s.dir, "err", err)
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.dir, e.Name())
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("janitor: failed to remove stale file", "path", path, "err", err)
				continue
			}
			s.logger.Info("janitor: removed stale upload", "path", path)
		}
	}
}
