package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang-stock-digest/pkg/utils"

	"github.com/mmcdole/gofeed/rss"
)

// fetchRSS downloads and parses an RSS 2.0 feed. The raw rss parser is used instead of the
// universal one because it keeps each item's <source> publisher.
func fetchRSS(ctx context.Context, client *http.Client, feedURL string) (*rss.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch feed: status %d", resp.StatusCode)
	}

	feed, err := (&rss.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

// itemSource returns the cleaned <source> title of an item, or "".
func itemSource(item *rss.Item) string {
	if item == nil || item.Source == nil {
		return ""
	}
	return utils.CleanHeadline(item.Source.Title)
}

func itemLink(item *rss.Item) string {
	return strings.TrimSpace(item.Link)
}
