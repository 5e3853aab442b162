package seen

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the seen set in a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	urls    map[string]time.Time
	pending []string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "seen: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "seen: exec %s", pragma)
		}
	}
	return &SQLiteStore{
		db:   db,
		urls: make(map[string]time.Time),
	}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS seen_urls (
	url        TEXT PRIMARY KEY,
	first_seen DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Load migrates the schema and reads all recorded URLs. A failing read is
// a cold start, not an error.
func (s *SQLiteStore) Load(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "seen: migrate sqlite")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT url, first_seen FROM seen_urls`)
	if err != nil {
		zap.L().Warn("seen: failed to read sqlite store, starting cold", zap.Error(err))
		s.urls = make(map[string]time.Time)
		return nil
	}
	defer rows.Close()

	urls := make(map[string]time.Time)
	for rows.Next() {
		var url string
		var firstSeen time.Time
		if err := rows.Scan(&url, &firstSeen); err != nil {
			zap.L().Warn("seen: skipping unreadable row", zap.Error(err))
			continue
		}
		urls[url] = firstSeen
	}
	if err := rows.Err(); err != nil {
		zap.L().Warn("seen: sqlite row iteration failed, starting cold", zap.Error(err))
		s.urls = make(map[string]time.Time)
		return nil
	}

	s.urls = urls
	zap.L().Info("seen: loaded sqlite store", zap.Int("urls", len(s.urls)))
	return nil
}

func (s *SQLiteStore) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

func (s *SQLiteStore) Mark(urls []string) {
	now := time.Now().UTC()
	for _, url := range urls {
		if _, ok := s.urls[url]; !ok {
			s.urls[url] = now
			s.pending = append(s.pending, url)
		}
	}
}

func (s *SQLiteStore) Count() int {
	return len(s.urls)
}

func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	res, err := s.db.ExecContext(ctx, `DELETE FROM seen_urls WHERE first_seen < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "seen: prune sqlite")
	}
	n, _ := res.RowsAffected()

	for url, firstSeen := range s.urls {
		if firstSeen.Before(cutoff) {
			delete(s.urls, url)
		}
	}
	return int(n), nil
}

// Save writes the newly marked URLs in one transaction. SQLite's journal
// makes the commit atomic.
func (s *SQLiteStore) Save(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "seen: begin tx")
	}
	defer tx.Rollback()

	for _, url := range s.pending {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO seen_urls (url, first_seen) VALUES (?, ?)`,
			url, s.urls[url],
		); err != nil {
			return eris.Wrapf(err, "seen: insert %s", url)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "seen: commit")
	}

	zap.L().Info("seen: saved sqlite store", zap.Int("new_urls", len(s.pending)))
	s.pending = nil
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
