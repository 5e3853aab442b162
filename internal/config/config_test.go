package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "enforcement-news", cfg.Name)
	assert.Equal(t, 14, cfg.Days)
	assert.Equal(t, 50, cfg.MaxItems)
	assert.Equal(t, DefaultKeywords, cfg.Keywords)
	assert.Equal(t, "anthropic", cfg.Classifier.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Classifier.Model)
	assert.Equal(t, 4, cfg.Classifier.MaxConcurrent)
	assert.InDelta(t, 0.7, cfg.Dedup.SimilarityThreshold, 0.001)
	assert.Equal(t, "console", cfg.Output.Mode)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "data/seen.json", cfg.Store.Path)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Sources)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
name: test-scan
days: 3
max_items: 10
dedup:
  similarity_threshold: 0.85
store:
  driver: sqlite
  path: seen.db
log:
  level: debug
  format: console
sources:
  - name: ynet
    type: rss
    url: https://www.ynet.co.il/Integration/StoryRss2.xml
  - name: mako
    type: scraper
    url: https://www.mako.co.il/news
    enabled: false
    selectors:
      item: "article.item"
      title: "h2"
      link: "a"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-scan", cfg.Name)
	assert.Equal(t, 3, cfg.Days)
	assert.Equal(t, 10, cfg.MaxItems)
	assert.InDelta(t, 0.85, cfg.Dedup.SimilarityThreshold, 0.001)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "seen.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, SourceTypeRSS, cfg.Sources[0].Type)
	assert.True(t, cfg.Sources[0].IsEnabled())
	assert.Equal(t, SourceTypeScraper, cfg.Sources[1].Type)
	assert.False(t, cfg.Sources[1].IsEnabled())
	assert.Equal(t, "article.item", cfg.Sources[1].Selectors.Item)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSourcesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	yaml := `
sources:
  - name: walla
    type: rss
    url: https://rss.walla.co.il/feed/1?type=main
  - name: maariv
    type: scraper
    url: https://www.maariv.co.il/news
    selectors:
      item: "div.article-box"
      title: "h3"
      link: "a"
      snippet: "p"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	sources, err := LoadSourcesFile(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "walla", sources[0].Name)
	assert.Equal(t, "div.article-box", sources[1].Selectors.Item)
}

func TestEffectiveSourcesPrefersFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: only\n    type: rss\n    url: https://example.com/rss\n"), 0o644))

	cfg := &Config{
		Sources:     []SourceConfig{{Name: "inline", Type: SourceTypeRSS}},
		SourcesFile: path,
	}
	sources, err := cfg.EffectiveSources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "only", sources[0].Name)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
