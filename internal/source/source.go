// Package source adapts external news feeds and pages into RawItems.
package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/model"
)

// Source fetches the items one outlet published since the given cutoff.
// Implementations apply their own keyword/date pre-filtering and
// self-throttle outbound requests.
type Source interface {
	Name() string
	Fetch(ctx context.Context, since time.Time) ([]model.RawItem, error)
}

// FromConfig builds a Source from its declaration.
func FromConfig(cfg config.SourceConfig, fetchCfg config.FetchConfig, keywords []string) (Source, error) {
	client := &http.Client{Timeout: time.Duration(fetchCfg.TimeoutSecs) * time.Second}
	limiter := rate.NewLimiter(rate.Limit(fetchCfg.RatePerSec), maxInt(fetchCfg.Burst, 1))

	switch cfg.Type {
	case config.SourceTypeRSS:
		if cfg.URL == "" {
			return nil, eris.Errorf("source: rss source %s missing url", cfg.Name)
		}
		return NewRSS(cfg.Name, cfg.URL, client, limiter, fetchCfg.UserAgent, keywords), nil
	case config.SourceTypeScraper:
		if cfg.URL == "" {
			return nil, eris.Errorf("source: scraper source %s missing url", cfg.Name)
		}
		if cfg.Selectors.Item == "" || cfg.Selectors.Title == "" || cfg.Selectors.Link == "" {
			return nil, eris.Errorf("source: scraper source %s missing selectors", cfg.Name)
		}
		return NewScraper(cfg.Name, cfg.URL, cfg.Selectors, client, limiter, fetchCfg.UserAgent, keywords), nil
	default:
		return nil, eris.Errorf("source: unknown source type %q for %s", cfg.Type, cfg.Name)
	}
}

// matchesKeywords reports whether any keyword appears in the title or
// snippet. An empty keyword list matches everything.
func matchesKeywords(title, snippet string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(snippet, kw) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
