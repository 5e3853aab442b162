// Package model holds the data contracts shared across the scan pipeline.
package model

import "time"

// RawItem is one observation of a news item from one source. The URL is the
// sole identity key: two RawItems with the same URL are the same observation.
type RawItem struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	PublishedAt time.Time `json:"published_at"`
	SourceName  string    `json:"source_name"`
}

// SourceRef points at one source's coverage of a story.
type SourceRef struct {
	SourceName string `json:"source_name"`
	URL        string `json:"url"`
}

// UnifiedItem is the deduplicated, classified record emitted for one story.
// It is created once per story group per run and never mutated afterwards.
type UnifiedItem struct {
	Headline    string      `json:"headline"`
	Summary     string      `json:"summary"`
	Date        time.Time   `json:"date"`
	Category    Category    `json:"category"`
	SubCategory SubCategory `json:"sub_category,omitempty"`
	Sources     []SourceRef `json:"sources"`
}

// URLs returns the URLs of all sources backing this item.
func (u UnifiedItem) URLs() []string {
	urls := make([]string, 0, len(u.Sources))
	for _, src := range u.Sources {
		urls = append(urls, src.URL)
	}
	return urls
}
