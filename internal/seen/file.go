package seen

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// fileRecord is the on-disk format. A wrapper object rather than a bare
// array, so future fields can be added without breaking old files.
type fileRecord struct {
	URLs      map[string]time.Time `json:"urls"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// FileStore persists the seen set as a single JSON file.
type FileStore struct {
	path string
	urls map[string]time.Time
}

// NewFile creates a FileStore backed by the given path. Call Load before
// first use.
func NewFile(path string) *FileStore {
	return &FileStore{
		path: path,
		urls: make(map[string]time.Time),
	}
}

// Load reads the backing file. A missing or unreadable file yields an
// empty set.
func (s *FileStore) Load(_ context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("seen: failed to read store, starting cold",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		s.urls = make(map[string]time.Time)
		return nil
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		zap.L().Warn("seen: corrupt store, starting cold",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.urls = make(map[string]time.Time)
		return nil
	}

	if rec.URLs == nil {
		rec.URLs = make(map[string]time.Time)
	}
	s.urls = rec.URLs
	zap.L().Info("seen: loaded store",
		zap.String("path", s.path),
		zap.Int("urls", len(s.urls)),
	)
	return nil
}

func (s *FileStore) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

func (s *FileStore) Mark(urls []string) {
	now := time.Now().UTC()
	for _, url := range urls {
		if _, ok := s.urls[url]; !ok {
			s.urls[url] = now
		}
	}
}

func (s *FileStore) Count() int {
	return len(s.urls)
}

// Prune removes entries first seen more than maxAge ago. The caller is
// responsible for saving afterwards.
func (s *FileStore) Prune(_ context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	for url, firstSeen := range s.urls {
		if firstSeen.Before(cutoff) {
			delete(s.urls, url)
			removed++
		}
	}
	return removed, nil
}

// Save writes the full set atomically: a temp file in the same directory
// is renamed over the target, so a crash leaves either the old or the new
// content.
func (s *FileStore) Save(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrapf(err, "seen: create store dir for %s", s.path)
	}

	rec := fileRecord{
		URLs:      s.urls,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return eris.Wrap(err, "seen: marshal store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "seen: write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return eris.Wrapf(err, "seen: rename %s", s.path)
	}

	zap.L().Info("seen: saved store",
		zap.String("path", s.path),
		zap.Int("urls", len(s.urls)),
	)
	return nil
}

func (s *FileStore) Close() error { return nil }
