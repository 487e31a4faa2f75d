package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"

	"golang.org/x/time/rate"
)

type newsAPIRepository struct {
	cfg            config.NewsAPI
	client         *http.Client
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	timeout        time.Duration
	maxItems       int
}

// NewNewsAPIRepository creates the keyword-search fetcher. It is disabled without an API key.
func NewNewsAPIRepository(cfg *config.Config, log *logger.Logger) HeadlineFetcher {
	return &newsAPIRepository{
		cfg:            cfg.NewsAPI,
		client:         &http.Client{},
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.NewsAPI.MaxRequestPerMinute),
		timeout:        cfg.Fetcher.Timeout,
		maxItems:       cfg.Fetcher.MaxItems,
	}
}

func (r *newsAPIRepository) Name() string {
	return "newsapi"
}

func (r *newsAPIRepository) Enabled() bool {
	return strings.TrimSpace(r.cfg.APIKey) != ""
}

func (r *newsAPIRepository) Fetch(ctx context.Context, query entity.SearchQuery, since time.Time) []entity.HeadlineItem {
	if !r.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.logger.WarnContext(ctx, "Failed to wait for request limit", logger.ErrorField(err), logger.StringField("source", r.Name()))
		return nil
	}

	params := url.Values{}
	params.Set("q", query.Query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(r.maxItems))
	params.Set("from", utils.FormatISO(since))
	params.Set("apiKey", r.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to create new http request", logger.ErrorField(err), logger.StringField("ticker", query.Ticker))
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to send request to NewsAPI", logger.ErrorField(err), logger.StringField("ticker", query.Ticker))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Received non-OK response from NewsAPI", logger.IntField("status_code", resp.StatusCode), logger.StringField("ticker", query.Ticker))
		return nil
	}

	var body dto.NewsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.logger.WarnContext(ctx, "Failed to decode response body", logger.ErrorField(err), logger.StringField("ticker", query.Ticker))
		return nil
	}
	if body.Status != "" && body.Status != "ok" {
		r.logger.WarnContext(ctx, "NewsAPI returned an error status", logger.StringField("code", body.Code), logger.StringField("message", body.Message))
		return nil
	}

	items := make([]entity.HeadlineItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if len(items) >= r.maxItems {
			break
		}
		title := utils.CleanHeadline(a.Title)
		link := strings.TrimSpace(a.URL)
		if title == "" || link == "" {
			continue
		}
		items = append(items, entity.HeadlineItem{
			Ticker:      query.Ticker,
			Title:       title,
			Source:      utils.CleanHeadline(a.Source.Name),
			URL:         link,
			PublishedAt: a.PublishedAt,
		})
	}
	return items
}
