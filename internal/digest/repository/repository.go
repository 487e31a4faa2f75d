package repository

import (
	"context"
	"time"

	"golang-stock-digest/internal/entity"

	"golang.org/x/time/rate"
)

// HeadlineFetcher is one headline source. Fetch never fails: any network, parse or empty
// condition yields an empty slice so the caller can fall through to the next source.
type HeadlineFetcher interface {
	Name() string
	Enabled() bool
	Fetch(ctx context.Context, query entity.SearchQuery, since time.Time) []entity.HeadlineItem
}

// LLMRepository returns raw model text for a JSON-producing prompt.
type LLMRepository interface {
	Enabled() bool
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
}

// SymbolRepository resolves alternate company names for a ticker.
type SymbolRepository interface {
	LookupNames(ctx context.Context, ticker string) ([]string, error)
}

// QuoteRepository fetches end-of-day prices.
type QuoteRepository interface {
	GetQuote(ctx context.Context, ticker string) (*entity.PriceQuote, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func newRequestLimiter(maxRequestPerMinute int) *rate.Limiter {
	if maxRequestPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxRequestPerMinute)), 1)
}
