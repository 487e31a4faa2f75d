package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"

	"golang.org/x/time/rate"
)

type quoteRepository struct {
	chartURL       string
	client         *http.Client
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	timeout        time.Duration
}

// NewQuoteRepository creates a Yahoo Finance chart client used by the end-of-day summary.
func NewQuoteRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	return &quoteRepository{
		chartURL:       cfg.YahooFinance.ChartURL,
		client:         &http.Client{},
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.YahooFinance.MaxRequestPerMinute),
		timeout:        cfg.Fetcher.Timeout,
	}
}

func (r *quoteRepository) GetQuote(ctx context.Context, ticker string) (*entity.PriceQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")
	params.Set("includePrePost", "true")

	apiURL := fmt.Sprintf("%s/%s?%s", r.chartURL, url.PathEscape(ticker), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to chart API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response from chart API: %d", resp.StatusCode)
	}

	var body dto.YahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s - %s", body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", ticker)
	}

	meta := body.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	return &entity.PriceQuote{
		Ticker:        ticker,
		Last:          meta.RegularMarketPrice,
		PreviousClose: prev,
		PostMarket:    meta.PostMarketPrice,
		Available:     true,
	}, nil
}
