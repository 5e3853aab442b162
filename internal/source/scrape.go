package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/model"
	"github.com/sells-group/newswatch/internal/resilience"
)

// ScraperSource extracts items from a news listing page using configured
// CSS selectors, for outlets without a usable feed.
type ScraperSource struct {
	name      string
	pageURL   string
	selectors config.SelectorConfig
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	keywords  []string
	retry     resilience.RetryConfig
	now       func() time.Time
}

// NewScraper creates a selector-driven scraper source.
func NewScraper(name, pageURL string, selectors config.SelectorConfig, client *http.Client, limiter *rate.Limiter, userAgent string, keywords []string) *ScraperSource {
	return &ScraperSource{
		name:      name,
		pageURL:   pageURL,
		selectors: selectors,
		client:    client,
		limiter:   limiter,
		userAgent: userAgent,
		keywords:  keywords,
		retry:     resilience.DefaultRetryConfig(),
		now:       time.Now,
	}
}

func (s *ScraperSource) Name() string { return s.name }

// Fetch downloads the listing page and extracts matching items.
func (s *ScraperSource) Fetch(ctx context.Context, since time.Time) ([]model.RawItem, error) {
	doc, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*goquery.Document, error) {
		return s.downloadPage(ctx)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "source: fetch page %s", s.name)
	}

	base, err := url.Parse(s.pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse page url %s", s.pageURL)
	}

	var items []model.RawItem
	doc.Find(s.selectors.Item).Each(func(_ int, sel *goquery.Selection) {
		item, ok := s.parseSelection(sel, base, since)
		if ok {
			items = append(items, item)
		}
	})

	zap.L().Info("source: scraped page",
		zap.String("source", s.name),
		zap.Int("matched", len(items)),
	)
	return items, nil
}

func (s *ScraperSource) downloadPage(ctx context.Context) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "source: new request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("source: page %s returned %s", s.name, resp.Status)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse html")
	}
	return doc, nil
}

func (s *ScraperSource) parseSelection(sel *goquery.Selection, base *url.URL, since time.Time) (model.RawItem, bool) {
	title := strings.TrimSpace(sel.Find(s.selectors.Title).First().Text())
	href, _ := sel.Find(s.selectors.Link).First().Attr("href")
	if title == "" || href == "" {
		return model.RawItem{}, false
	}

	link, err := base.Parse(href)
	if err != nil {
		return model.RawItem{}, false
	}

	var snippet string
	if s.selectors.Snippet != "" {
		snippet = strings.TrimSpace(sel.Find(s.selectors.Snippet).First().Text())
	}

	// A listing page may not expose dates; items without one are treated
	// as current so the lookback filter keeps them.
	published := s.now().UTC()
	if s.selectors.Date != "" {
		raw := strings.TrimSpace(sel.Find(s.selectors.Date).First().Text())
		format := s.selectors.DateFormat
		if format == "" {
			format = "02.01.2006"
		}
		if parsed, err := time.Parse(format, raw); err == nil {
			published = parsed.UTC()
		}
	}
	if published.Before(since) {
		return model.RawItem{}, false
	}

	if !matchesKeywords(title, snippet, s.keywords) {
		return model.RawItem{}, false
	}

	return model.RawItem{
		URL:         link.String(),
		Title:       title,
		Snippet:     snippet,
		PublishedAt: published,
		SourceName:  s.name,
	}, true
}
