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

type googleNewsRepository struct {
	baseURL  string
	client   *http.Client
	logger   *logger.Logger
	timeout  time.Duration
	maxItems int
}

// NewGoogleNewsRepository creates the secondary search RSS fetcher keyed by the expanded query.
func NewGoogleNewsRepository(cfg *config.Config, log *logger.Logger) HeadlineFetcher {
	return &googleNewsRepository{
		baseURL:  cfg.GoogleNews.BaseURL,
		client:   &http.Client{},
		logger:   log,
		timeout:  cfg.Fetcher.Timeout,
		maxItems: cfg.Fetcher.MaxItems,
	}
}

func (r *googleNewsRepository) Name() string {
	return "google_news_rss"
}

func (r *googleNewsRepository) Enabled() bool {
	return r.baseURL != ""
}

func (r *googleNewsRepository) Fetch(ctx context.Context, query entity.SearchQuery, _ time.Time) []entity.HeadlineItem {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query.Query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	feedURL := r.baseURL + "?" + params.Encode()

	feed, err := fetchRSS(ctx, r.client, feedURL)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to fetch RSS feed", logger.ErrorField(err), logger.StringField("url", feedURL))
		return nil
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
		items = append(items, entity.HeadlineItem{
			Ticker:      query.Ticker,
			Title:       title,
			Source:      itemSource(e),
			URL:         link,
			PublishedAt: strings.TrimSpace(e.PubDate),
		})
	}
	return items
}
