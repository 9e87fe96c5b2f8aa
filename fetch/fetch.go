// Package fetch retrieves syndication feed documents over HTTP and parses
// them into the items the crawler classifies.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"headlines/models"

	"github.com/mmcdole/gofeed"
)

const userAgent = "headlines/1.0 (+https://github.com/thomasbrueggemann/headlines)"

// Fetcher retrieves items from RSS and Atom feeds.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given HTTP timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves and parses one feed document. Items are returned in
// document order; entries missing guid, title or link are passed through
// unfiltered and left for the crawler to skip.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]models.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parser := gofeed.NewParser()
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]models.FeedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, models.FeedItem{
			GUID:  entry.GUID,
			Title: entry.Title,
			Link:  entry.Link,
		})
	}

	return items, nil
}
