package crawler

import (
	"context"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
)

// markupFetcher is the fetch seam; tests stub it with canned markup.
type markupFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config holds the crawl planning tunables.
type Config struct {
	Discovery  DiscoveryConfig
	Pagination PaginationConfig
	Fetch      FetchConfig

	// MaxCategories caps how many discovered categories are expanded.
	// Zero means all of them.
	MaxCategories int

	// Delay spaces consecutive fetches.
	Delay time.Duration
}

// DefaultConfig returns the crawl planning defaults.
func DefaultConfig() Config {
	return Config{
		Discovery:  DefaultDiscoveryConfig(),
		Pagination: DefaultPaginationConfig(),
		Fetch:      DefaultFetchConfig(),
		Delay:      2 * time.Second,
	}
}

// Crawler turns a storefront homepage into the ordered list of listing
// pages a scrape run should visit: discover categories, expand each through
// its pagination, deduplicate across all of them.
type Crawler struct {
	cfg        Config
	fetcher    markupFetcher
	discoverer *Discoverer
	paginator  *Paginator
}

// New creates a Crawler fetching over plain HTTP.
func New(cfg Config) *Crawler {
	return newWith(cfg, NewFetcher(cfg.Fetch))
}

func newWith(cfg Config, f markupFetcher) *Crawler {
	return &Crawler{
		cfg:        cfg,
		fetcher:    f,
		discoverer: NewDiscoverer(cfg.Discovery),
		paginator:  NewPaginator(cfg.Pagination),
	}
}

// DiscoverCategories fetches the homepage and extracts category links. A
// failed fetch degrades to the homepage itself, so a run always has a page
// to scrape.
func (c *Crawler) DiscoverCategories(ctx context.Context, homepageURL string) []Category {
	logger.Info("discovering categories", "url", homepageURL)

	markup, err := c.fetcher.Fetch(ctx, homepageURL)
	if err != nil {
		logger.Warn("homepage fetch failed, using it as the only category", "url", homepageURL, "error", err)
		return []Category{{URL: homepageURL, Name: "All Products"}}
	}
	return c.discoverer.Discover(markup, homepageURL)
}

// ExpandPagination fetches a category page and returns it together with any
// further pages its pagination links to. A failed fetch degrades to the
// category page alone.
func (c *Crawler) ExpandPagination(ctx context.Context, categoryURL string) []string {
	markup, err := c.fetcher.Fetch(ctx, categoryURL)
	if err != nil {
		logger.Debug("category fetch failed, keeping first page only", "url", categoryURL, "error", err)
		return []string{categoryURL}
	}
	return c.paginator.PageURLs(markup, categoryURL)
}

// Plan produces the deduplicated, ordered page list for a full crawl of the
// site starting at homepageURL.
func (c *Crawler) Plan(ctx context.Context, homepageURL string) ([]string, error) {
	categories := c.DiscoverCategories(ctx, homepageURL)
	if c.cfg.MaxCategories > 0 && len(categories) > c.cfg.MaxCategories {
		categories = categories[:c.cfg.MaxCategories]
	}

	queue := NewURLQueue()
	var pages []string
	for i, cat := range categories {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if i > 0 {
			c.pause(ctx)
		}
		for _, pageURL := range c.ExpandPagination(ctx, cat.URL) {
			if queue.Add(pageURL) {
				pages = append(pages, pageURL)
			}
		}
	}

	logger.Info("crawl planned", "categories", len(categories), "pages", len(pages))
	return pages, nil
}

func (c *Crawler) pause(ctx context.Context) {
	if c.cfg.Delay <= 0 {
		return
	}
	t := time.NewTimer(c.cfg.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
