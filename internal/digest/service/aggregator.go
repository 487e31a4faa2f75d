package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"
)

// Aggregator fans tickers out over the headline sources and merges the results.
type Aggregator interface {
	Aggregate(ctx context.Context, tickers []string, lookback time.Duration) []entity.HeadlineItem
}

type aggregator struct {
	queries       QueryBuilder
	fetchers      []repository.HeadlineFetcher
	log           *logger.Logger
	maxConcurrent int
}

// NewAggregator creates an Aggregator. Fetchers are tried in the given order for every ticker
// and the first one returning at least one item wins.
func NewAggregator(queries QueryBuilder, fetchers []repository.HeadlineFetcher, log *logger.Logger, maxConcurrent int) Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &aggregator{
		queries:       queries,
		fetchers:      fetchers,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

func (a *aggregator) Aggregate(ctx context.Context, tickers []string, lookback time.Duration) []entity.HeadlineItem {
	tickers = uniqueTickers(tickers)
	if len(tickers) == 0 {
		return nil
	}
	since := utils.TimeNowUTC().Add(-lookback)

	// one slot per ticker so the merge order never depends on scheduling
	results := make([][]entity.HeadlineItem, len(tickers))
	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		if !utils.ShouldContinue(ctx, a.log) {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		i, ticker := i, ticker
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.fetchTicker(ctx, ticker, since)
		})
	}
	wg.Wait()

	var merged []entity.HeadlineItem
	for _, items := range results {
		merged = append(merged, items...)
	}
	return Dedupe(merged)
}

func (a *aggregator) fetchTicker(ctx context.Context, ticker string, since time.Time) []entity.HeadlineItem {
	query := a.queries.Build(ctx, ticker)
	for _, f := range a.fetchers {
		if !f.Enabled() {
			continue
		}
		items := f.Fetch(ctx, query, since)
		if len(items) == 0 {
			a.log.DebugContext(ctx, "Source returned no items", logger.StringField("source", f.Name()), logger.StringField("ticker", query.DisplayTicker))
			continue
		}
		for i := range items {
			items[i].Ticker = query.DisplayTicker
		}
		a.log.DebugContext(ctx, "Fetched headlines",
			logger.StringField("source", f.Name()),
			logger.StringField("ticker", query.DisplayTicker),
			logger.IntField("count", len(items)),
		)
		return items
	}
	return nil
}

// Dedupe drops repeated headlines keeping the first occurrence. Items are keyed by trimmed URL,
// or by lower-cased title when the URL is empty.
func Dedupe(items []entity.HeadlineItem) []entity.HeadlineItem {
	seenURL := make(map[string]bool)
	seenTitle := make(map[string]bool)
	out := make([]entity.HeadlineItem, 0, len(items))
	for _, it := range items {
		if u := strings.TrimSpace(it.URL); u != "" {
			if seenURL[u] {
				continue
			}
			seenURL[u] = true
		} else {
			t := strings.ToLower(strings.TrimSpace(it.Title))
			if seenTitle[t] {
				continue
			}
			seenTitle[t] = true
		}
		out = append(out, it)
	}
	return out
}

func uniqueTickers(tickers []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
