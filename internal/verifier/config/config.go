package config

import (
	"time"

	"finfluencer-tracker/pkg/config"
)

// Gemini holds the configuration for the Gemini API. An empty APIKey
// disables AI judgment and every prediction is scored from market data.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Search holds configuration for the search evidence providers.
type Search struct {
	ExaAPIKey              string        `mapstructure:"exa_api_key"`
	ExaBaseURL             string        `mapstructure:"exa_base_url"`
	ExaMaxRequestPerMinute int           `mapstructure:"exa_max_request_per_minute"`
	NumResults             int           `mapstructure:"num_results"`
	NewsRSSEnabled         bool          `mapstructure:"news_rss_enabled"`
	NewsRSSBaseURL         string        `mapstructure:"news_rss_base_url"`
	Timeout                time.Duration `mapstructure:"timeout"`
}

// MarketData holds the configuration for the Yahoo Finance chart API.
type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	MaxRetryElapsed     time.Duration `mapstructure:"max_retry_elapsed"`
}

// Verifier holds batch runner settings.
type Verifier struct {
	BatchLimit int           `mapstructure:"batch_limit"`
	BatchDelay time.Duration `mapstructure:"batch_delay"` // negative disables the pause
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
}

// EffectiveBatchDelay is the pause applied after each batch item. A
// negative BatchDelay disables it.
func (v Verifier) EffectiveBatchDelay() time.Duration {
	if v.BatchDelay < 0 {
		return 0
	}
	return v.BatchDelay
}

// Scheduler holds the periodic batch schedule.
type Scheduler struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the verifier service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Gemini     Gemini          `mapstructure:"gemini"`
	Search     Search          `mapstructure:"search"`
	MarketData MarketData      `mapstructure:"market_data"`
	Verifier   Verifier        `mapstructure:"verifier"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// Load loads the verifier configuration from the given path and fills in
// defaults for anything left unset.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "models/gemini-2.0-flash-lite"
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 15
	}
	if c.Search.ExaBaseURL == "" {
		c.Search.ExaBaseURL = "https://api.exa.ai"
	}
	if c.Search.NumResults <= 0 {
		c.Search.NumResults = 5
	}
	if c.Search.NewsRSSBaseURL == "" {
		c.Search.NewsRSSBaseURL = "https://news.google.com/rss/search"
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 30 * time.Second
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.Timeout <= 0 {
		c.MarketData.Timeout = 30 * time.Second
	}
	if c.MarketData.CacheTTL <= 0 {
		c.MarketData.CacheTTL = time.Hour
	}
	if c.MarketData.MaxRetryElapsed <= 0 {
		c.MarketData.MaxRetryElapsed = 30 * time.Second
	}
	if c.Verifier.BatchLimit <= 0 {
		c.Verifier.BatchLimit = 10
	}
	// Spacing between items keeps Gemini under its free-tier request rate.
	if c.Verifier.BatchDelay == 0 {
		c.Verifier.BatchDelay = 6 * time.Second
	}
	if c.Verifier.LockTTL <= 0 {
		c.Verifier.LockTTL = 30 * time.Minute
	}
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = "0 */6 * * *"
	}
}
