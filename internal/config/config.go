// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Name        string           `yaml:"name" mapstructure:"name"`
	Days        int              `yaml:"days" mapstructure:"days"`
	Keywords    []string         `yaml:"keywords" mapstructure:"keywords"`
	MaxItems    int              `yaml:"max_items" mapstructure:"max_items"`
	Sources     []SourceConfig   `yaml:"sources" mapstructure:"sources"`
	SourcesFile string           `yaml:"sources_file" mapstructure:"sources_file"`
	Classifier  ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Dedup       DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Output      OutputConfig     `yaml:"output" mapstructure:"output"`
	Telegram    TelegramConfig   `yaml:"telegram" mapstructure:"telegram"`
	Store       StoreConfig      `yaml:"store" mapstructure:"store"`
	Fetch       FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Log         LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourceType distinguishes feed-based and scraped sources.
type SourceType string

const (
	SourceTypeRSS     SourceType = "rss"
	SourceTypeScraper SourceType = "scraper"
)

// SourceConfig declares one news source.
type SourceConfig struct {
	Name      string         `yaml:"name" mapstructure:"name"`
	Type      SourceType     `yaml:"type" mapstructure:"type"`
	URL       string         `yaml:"url" mapstructure:"url"`
	Enabled   *bool          `yaml:"enabled" mapstructure:"enabled"`
	Selectors SelectorConfig `yaml:"selectors" mapstructure:"selectors"`
}

// IsEnabled reports whether the source should be fetched. Sources are
// enabled unless the config says otherwise.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// SelectorConfig holds the CSS selectors for a scraper source.
type SelectorConfig struct {
	Item       string `yaml:"item" mapstructure:"item"`
	Title      string `yaml:"title" mapstructure:"title"`
	Link       string `yaml:"link" mapstructure:"link"`
	Snippet    string `yaml:"snippet" mapstructure:"snippet"`
	Date       string `yaml:"date" mapstructure:"date"`
	DateFormat string `yaml:"date_format" mapstructure:"date_format"`
}

// ClassifierConfig configures the LLM relevance classifier.
type ClassifierConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// DedupConfig configures story grouping.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// OutputConfig selects the delivery channel.
type OutputConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // "console" or "telegram"
}

// TelegramConfig holds Bot API credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	ChatID   string `yaml:"chat_id" mapstructure:"chat_id"`
}

// StoreConfig configures the seen-URL store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "file", "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures outbound source requests.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultKeywords is the built-in Hebrew keyword pre-filter applied by the
// source adapters when the config does not override it.
var DefaultKeywords = []string{
	"זנות",
	"בית בושת",
	"סרסור",
	"סחר בבני אדם",
	"צו סגירה",
	"ליווי",
	"נערות ליווי",
	"תעשיית המין",
	"עיסוי חשוד",
	"זירת זנות",
}

// Load reads configuration from the given file (or ./config.yaml when path
// is empty) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("NEWSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("name", "enforcement-news")
	v.SetDefault("days", 14)
	v.SetDefault("keywords", DefaultKeywords)
	v.SetDefault("max_items", 50)
	v.SetDefault("classifier.provider", "anthropic")
	v.SetDefault("classifier.model", "claude-sonnet-4-20250514")
	v.SetDefault("classifier.timeout_secs", 30)
	v.SetDefault("classifier.max_concurrent", 4)
	v.SetDefault("dedup.similarity_threshold", 0.7)
	v.SetDefault("output.mode", "console")
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "data/seen.json")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.rate_per_sec", 1.0)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("fetch.user_agent", "newswatch/1.0 (news monitoring bot)")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
