package seen

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// pgPool is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore persists the seen set in a Postgres table, for deployments
// that already run one for other jobs.
type PostgresStore struct {
	pool    pgPool
	urls    map[string]time.Time
	pending []string
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "seen: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "seen: ping postgres")
	}
	return &PostgresStore{
		pool: pool,
		urls: make(map[string]time.Time),
	}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS seen_urls (
	url        TEXT PRIMARY KEY,
	first_seen TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Load migrates the schema and reads all recorded URLs. A failing read is
// a cold start, not an error.
func (s *PostgresStore) Load(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "seen: migrate postgres")
	}

	rows, err := s.pool.Query(ctx, `SELECT url, first_seen FROM seen_urls`)
	if err != nil {
		zap.L().Warn("seen: failed to read postgres store, starting cold", zap.Error(err))
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
		zap.L().Warn("seen: postgres row iteration failed, starting cold", zap.Error(err))
		s.urls = make(map[string]time.Time)
		return nil
	}

	s.urls = urls
	zap.L().Info("seen: loaded postgres store", zap.Int("urls", len(s.urls)))
	return nil
}

func (s *PostgresStore) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

func (s *PostgresStore) Mark(urls []string) {
	now := time.Now().UTC()
	for _, url := range urls {
		if _, ok := s.urls[url]; !ok {
			s.urls[url] = now
			s.pending = append(s.pending, url)
		}
	}
}

func (s *PostgresStore) Count() int {
	return len(s.urls)
}

func (s *PostgresStore) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	tag, err := s.pool.Exec(ctx, `DELETE FROM seen_urls WHERE first_seen < $1`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "seen: prune postgres")
	}

	for url, firstSeen := range s.urls {
		if firstSeen.Before(cutoff) {
			delete(s.urls, url)
		}
	}
	return int(tag.RowsAffected()), nil
}

// Save upserts the newly marked URLs. ON CONFLICT DO NOTHING keeps the
// first_seen of re-marked URLs intact.
func (s *PostgresStore) Save(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	for _, url := range s.pending {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO seen_urls (url, first_seen) VALUES ($1, $2) ON CONFLICT (url) DO NOTHING`,
			url, s.urls[url],
		); err != nil {
			return eris.Wrapf(err, "seen: insert %s", url)
		}
	}

	zap.L().Info("seen: saved postgres store", zap.Int("new_urls", len(s.pending)))
	s.pending = nil
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
