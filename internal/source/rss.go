package source

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/newswatch/internal/model"
	"github.com/sells-group/newswatch/internal/resilience"
)

// RSSSource fetches and filters items from an RSS/Atom feed.
type RSSSource struct {
	name      string
	feedURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	keywords  []string
	parser    *gofeed.Parser
	retry     resilience.RetryConfig
}

// NewRSS creates an RSS source.
func NewRSS(name, feedURL string, client *http.Client, limiter *rate.Limiter, userAgent string, keywords []string) *RSSSource {
	return &RSSSource{
		name:      name,
		feedURL:   feedURL,
		client:    client,
		limiter:   limiter,
		userAgent: userAgent,
		keywords:  keywords,
		parser:    gofeed.NewParser(),
		retry:     resilience.DefaultRetryConfig(),
	}
}

func (s *RSSSource) Name() string { return s.name }

// Fetch downloads the feed and returns the entries published since the
// cutoff that match the keyword pre-filter.
func (s *RSSSource) Fetch(ctx context.Context, since time.Time) ([]model.RawItem, error) {
	body, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.download(ctx)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "source: fetch feed %s", s.name)
	}

	feed, err := s.parser.ParseString(body)
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse feed %s", s.name)
	}

	items := make([]model.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item, ok := s.parseEntry(entry, since)
		if ok {
			items = append(items, item)
		}
	}

	zap.L().Info("source: fetched feed",
		zap.String("source", s.name),
		zap.Int("entries", len(feed.Items)),
		zap.Int("matched", len(items)),
	)
	return items, nil
}

func (s *RSSSource) download(ctx context.Context) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "source: new request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("source: feed %s returned %s", s.name, resp.Status)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "source: read feed body")
	}
	return string(data), nil
}

func (s *RSSSource) parseEntry(entry *gofeed.Item, since time.Time) (model.RawItem, bool) {
	if entry.Link == "" || entry.Title == "" {
		return model.RawItem{}, false
	}

	published := entry.PublishedParsed
	if published == nil {
		published = entry.UpdatedParsed
	}
	if published == nil || published.Before(since) {
		return model.RawItem{}, false
	}

	if !matchesKeywords(entry.Title, entry.Description, s.keywords) {
		return model.RawItem{}, false
	}

	return model.RawItem{
		URL:         entry.Link,
		Title:       entry.Title,
		Snippet:     entry.Description,
		PublishedAt: published.UTC(),
		SourceName:  s.name,
	}, true
}
