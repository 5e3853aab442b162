// Package seen tracks URLs that were already emitted in past runs, so a
// story is announced at most once across scans.
package seen

import (
	"context"
	"time"
)

// Store is the durable, append-only record of already-emitted URLs. The
// in-memory set only grows during a run; Save persists it. A failing Save
// is the one fatal condition of a scan, so implementations must return
// the error rather than swallow it.
type Store interface {
	// Load reads the persisted set. Missing or corrupt backing storage is a
	// cold start, never an error.
	Load(ctx context.Context) error

	// Contains reports whether url was emitted in a past run.
	Contains(url string) bool

	// Mark adds urls to the in-memory set. Durability requires Save.
	Mark(urls []string)

	// Count returns the size of the in-memory set.
	Count() int

	// Prune drops entries first seen more than maxAge ago and returns how
	// many were removed. Operator action; the scan itself never prunes.
	Prune(ctx context.Context, maxAge time.Duration) (int, error)

	// Save durably persists the set. Old or new content must survive a
	// crash mid-save, never a truncated mix.
	Save(ctx context.Context) error

	Close() error
}
