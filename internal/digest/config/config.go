package config

import (
	"time"

	"golang-stock-digest/pkg/common"
	"golang-stock-digest/pkg/config"
	"golang-stock-digest/pkg/utils"
)

// NewsAPI holds the configuration for the keyword-search news API.
type NewsAPI struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Telegram holds configuration for the Telegram bot.
type Telegram struct {
	BotToken     string        `mapstructure:"bot_token"`
	ChatID       int64         `mapstructure:"chat_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// YahooFinance holds the Yahoo Finance endpoints used for RSS, symbol search and quotes.
type YahooFinance struct {
	RSSURLTemplates     []string `mapstructure:"rss_url_templates"`
	SearchURL           string   `mapstructure:"search_url"`
	ChartURL            string   `mapstructure:"chart_url"`
	MaxRequestPerMinute int      `mapstructure:"max_request_per_minute"`
}

// GoogleNews holds the search RSS endpoint.
type GoogleNews struct {
	BaseURL string `mapstructure:"base_url"`
}

// Fetcher holds limits shared by all headline sources.
type Fetcher struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxItems int           `mapstructure:"max_items"`
}

// Digest holds the pipeline settings.
type Digest struct {
	Watchlist         string `mapstructure:"watchlist"`
	LookbackHours     int    `mapstructure:"lookback_hours"`
	MaxAlternateNames int    `mapstructure:"max_alternate_names"`
	MaxConcurrent     int    `mapstructure:"max_concurrent"`
}

// Schedule holds cron expressions for the serve command. Empty disables the job.
type Schedule struct {
	IntradayCron string `mapstructure:"intraday_cron"`
	SignalCron   string `mapstructure:"signal_cron"`
	EODCron      string `mapstructure:"eod_cron"`
}

// Config holds the full configuration for the digest service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	NewsAPI      NewsAPI         `mapstructure:"newsapi"`
	Gemini       Gemini          `mapstructure:"gemini"`
	Telegram     Telegram        `mapstructure:"telegram"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	GoogleNews   GoogleNews      `mapstructure:"google_news"`
	Fetcher      Fetcher         `mapstructure:"fetcher"`
	Digest       Digest          `mapstructure:"digest"`
	Schedule     Schedule        `mapstructure:"schedule"`
}

// Defaults returns the default value of every known key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                             "stock-news-digest",
		"logger.level":                         "info",
		"logger.encoding":                      "json",
		"database.host":                        "localhost",
		"database.port":                        5432,
		"database.user":                        "postgres",
		"database.password":                    "",
		"database.name":                        "stock_digest",
		"database.ssl_mode":                    "disable",
		"database.time_zone":                   "UTC",
		"redis.host":                           "",
		"redis.port":                           6379,
		"redis.password":                       "",
		"redis.db":                             0,
		"redis.pool_size":                      5,
		"api.host":                             "",
		"api.port":                             0,
		"newsapi.api_key":                      "",
		"newsapi.base_url":                     "https://newsapi.org/v2/everything",
		"newsapi.max_request_per_minute":       60,
		"gemini.api_key":                       "",
		"gemini.model":                         common.DefaultGeminiModel,
		"gemini.max_request_per_minute":        15,
		"gemini.timeout":                       "60s",
		"telegram.bot_token":                   "",
		"telegram.chat_id":                     0,
		"telegram.poll_interval":               "1s",
		"telegram.error_backoff":               "2s",
		"yahoo_finance.rss_url_templates":      []string{"https://feeds.finance.yahoo.com/rss/2.0/headline?s={ticker}&region=US&lang=en-US", "https://finance.yahoo.com/rss/headline?s={ticker}"},
		"yahoo_finance.search_url":             "https://query2.finance.yahoo.com/v1/finance/search",
		"yahoo_finance.chart_url":              "https://query1.finance.yahoo.com/v8/finance/chart",
		"yahoo_finance.max_request_per_minute": 60,
		"google_news.base_url":                 "https://news.google.com/rss/search",
		"fetcher.timeout":                      "15s",
		"fetcher.max_items":                    common.MaxFetchItems,
		"digest.watchlist":                     "",
		"digest.lookback_hours":                common.DefaultLookbackHours,
		"digest.max_alternate_names":           2,
		"digest.max_concurrent":                1,
		"schedule.intraday_cron":               "",
		"schedule.signal_cron":                 "",
		"schedule.eod_cron":                    "",
	}
}

// Tickers returns the configured watchlist, upper-cased and de-duplicated.
func (c *Config) Tickers() []string {
	return utils.ParseTickers(c.Digest.Watchlist)
}

// Normalize replaces zero or out-of-range values with safe defaults.
func (c *Config) Normalize() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = common.DefaultGeminiModel
	}
	if c.Gemini.Timeout <= 0 {
		c.Gemini.Timeout = 60 * time.Second
	}
	if c.Digest.LookbackHours <= 0 {
		c.Digest.LookbackHours = common.DefaultLookbackHours
	}
	if c.Digest.LookbackHours > common.MaxLookbackHours {
		c.Digest.LookbackHours = common.MaxLookbackHours
	}
	if c.Digest.MaxAlternateNames < 0 {
		c.Digest.MaxAlternateNames = 0
	}
	if c.Digest.MaxConcurrent <= 0 {
		c.Digest.MaxConcurrent = 1
	}
	if c.Fetcher.Timeout <= 0 {
		c.Fetcher.Timeout = 15 * time.Second
	}
	if c.Fetcher.MaxItems <= 0 || c.Fetcher.MaxItems > common.MaxFetchItems {
		c.Fetcher.MaxItems = common.MaxFetchItems
	}
	if c.Telegram.PollInterval <= 0 {
		c.Telegram.PollInterval = time.Second
	}
	if c.Telegram.ErrorBackoff <= 0 {
		c.Telegram.ErrorBackoff = 2 * time.Second
	}
}

// Load loads the digest configuration from the given path and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}
