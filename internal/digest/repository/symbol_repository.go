package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/pkg/logger"

	"golang.org/x/time/rate"
)

type symbolRepository struct {
	searchURL      string
	client         *http.Client
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	timeout        time.Duration
}

// NewSymbolRepository creates a Yahoo Finance symbol search client.
func NewSymbolRepository(cfg *config.Config, log *logger.Logger) SymbolRepository {
	return &symbolRepository{
		searchURL:      cfg.YahooFinance.SearchURL,
		client:         &http.Client{},
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.YahooFinance.MaxRequestPerMinute),
		timeout:        cfg.Fetcher.Timeout,
	}
}

// LookupNames returns the short and long names of the quote whose symbol matches ticker exactly.
func (r *symbolRepository) LookupNames(ctx context.Context, ticker string) ([]string, error) {
	if r.searchURL == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", ticker)
	params.Set("quotesCount", "5")
	params.Set("newsCount", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to symbol search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response from symbol search: %d", resp.StatusCode)
	}

	var body dto.YahooSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	var names []string
	for _, q := range body.Quotes {
		if !strings.EqualFold(q.Symbol, ticker) {
			continue
		}
		for _, n := range []string{q.ShortName, q.LongName} {
			n = strings.TrimSpace(n)
			if n != "" && !containsFold(names, n) {
				names = append(names, n)
			}
		}
		break
	}
	return names, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
