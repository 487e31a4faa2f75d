package repository

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"
)

const defaultYahooSource = "Yahoo Finance"

type yahooRSSRepository struct {
	templates []string
	client    *http.Client
	logger    *logger.Logger
	timeout   time.Duration
	maxItems  int
}

// NewYahooRSSRepository creates the primary RSS fetcher. Each template is tried in order with
// {ticker} substituted; the first feed that yields at least one item wins.
func NewYahooRSSRepository(cfg *config.Config, log *logger.Logger) HeadlineFetcher {
	return &yahooRSSRepository{
		templates: cfg.YahooFinance.RSSURLTemplates,
		client:    &http.Client{},
		logger:    log,
		timeout:   cfg.Fetcher.Timeout,
		maxItems:  cfg.Fetcher.MaxItems,
	}
}

func (r *yahooRSSRepository) Name() string {
	return "yahoo_rss"
}

func (r *yahooRSSRepository) Enabled() bool {
	return len(r.templates) > 0
}

func (r *yahooRSSRepository) Fetch(ctx context.Context, query entity.SearchQuery, _ time.Time) []entity.HeadlineItem {
	for _, tmpl := range r.templates {
		feedURL := strings.ReplaceAll(tmpl, "{ticker}", url.QueryEscape(query.Ticker))
		items := r.fetchFeed(ctx, feedURL, query.Ticker)
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func (r *yahooRSSRepository) fetchFeed(ctx context.Context, feedURL, ticker string) []entity.HeadlineItem {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	feed, err := fetchRSS(ctx, r.client, feedURL)
	if err != nil {
		r.logger.DebugContext(ctx, "Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("url", feedURL))
		return nil
	}

	feedSource := utils.CleanHeadline(feed.Title)
	if feedSource == "" {
		feedSource = defaultYahooSource
	}

	var items []entity.HeadlineItem
	for _, e := range feed.Items {
		if len(items) >= r.maxItems {
			break
		}
		if e == nil {
			continue
		}
		title := utils.CleanHeadline(e.Title)
		link := itemLink(e)
		if title == "" || link == "" {
			continue
		}
		// an item's own <source> names the publisher better than the feed title
		source := itemSource(e)
		if source == "" {
			source = feedSource
		}
		items = append(items, entity.HeadlineItem{
			Ticker:      ticker,
			Title:       title,
			Source:      source,
			URL:         link,
			PublishedAt: strings.TrimSpace(e.PubDate),
		})
	}
	return items
}
