package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

// FetchConfig holds the static fetch tunables.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// DefaultFetchConfig returns the static fetch defaults.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent: page.DefaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Fetcher retrieves raw page markup over plain HTTP. Discovery and
// pagination work on markup alone, so they never need a browser session.
type Fetcher struct {
	cfg FetchConfig
}

// NewFetcher creates a Fetcher, filling zero config fields with defaults.
func NewFetcher(cfg FetchConfig) *Fetcher {
	def := DefaultFetchConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	return &Fetcher{cfg: cfg}
}

// Fetch returns the markup at targetURL.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(colly.UserAgent(f.cfg.UserAgent))
	c.SetRequestTimeout(f.cfg.Timeout)

	var markup string
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		markup = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(targetURL); err != nil {
		return "", fmt.Errorf("failed to visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return markup, nil
}

// Loader adapts the Fetcher to the snapshot page's loader hook, backing the
// static scrape mode.
func (f *Fetcher) Loader() func(ctx context.Context, url string) (string, error) {
	return f.Fetch
}
