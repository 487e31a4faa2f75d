package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang-stock-digest/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, common.DefaultGeminiModel, cfg.Gemini.Model)
	assert.Equal(t, common.DefaultLookbackHours, cfg.Digest.LookbackHours)
	assert.Equal(t, common.MaxFetchItems, cfg.Fetcher.MaxItems)
	assert.Equal(t, 15*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, time.Second, cfg.Telegram.PollInterval)
	assert.Len(t, cfg.YahooFinance.RSSURLTemplates, 2)
	assert.Empty(t, cfg.Schedule.IntradayCron)
}

func TestLoadReadsFileAndEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")
	t.Setenv("DIGEST_WATCHLIST", "nvda, amd")

	path := writeConfig(t, `
telegram:
  bot_token: token-from-file
  chat_id: 42
digest:
  watchlist: AAPL
  lookback_hours: 24
  max_alternate_names: 1
schedule:
  eod_cron: "15 16 * * 1-5"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", cfg.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Tickers())
	assert.Equal(t, 24, cfg.Digest.LookbackHours)
	assert.Equal(t, 1, cfg.Digest.MaxAlternateNames)
	assert.Equal(t, "15 16 * * 1-5", cfg.Schedule.EODCron)
}

func TestNormalize(t *testing.T) {
	cfg := Config{
		Digest:  Digest{LookbackHours: -1, MaxAlternateNames: -3, MaxConcurrent: 0},
		Fetcher: Fetcher{MaxItems: 500},
	}
	cfg.Normalize()

	assert.Equal(t, common.DefaultLookbackHours, cfg.Digest.LookbackHours)
	assert.Equal(t, 0, cfg.Digest.MaxAlternateNames)
	assert.Equal(t, 1, cfg.Digest.MaxConcurrent)
	assert.Equal(t, common.MaxFetchItems, cfg.Fetcher.MaxItems)
	assert.Equal(t, 60*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Telegram.ErrorBackoff)
}

func TestNormalizeCapsLookback(t *testing.T) {
	cfg := Config{Digest: Digest{LookbackHours: 3_000_000}}
	cfg.Normalize()
	assert.Equal(t, common.MaxLookbackHours, cfg.Digest.LookbackHours)
}

func TestTickers(t *testing.T) {
	cfg := Config{Digest: Digest{Watchlist: " aapl,MSFT,,aapl , tsla "}}
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, cfg.Tickers())

	assert.Empty(t, (&Config{}).Tickers())
}
