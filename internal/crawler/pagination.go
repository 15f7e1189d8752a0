package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
)

// PaginationConfig holds the next-page discovery tunables.
type PaginationConfig struct {
	// NextSelectors are tried in order for a "next page" affordance.
	NextSelectors []string

	// PageLinkSelector is the fallback scan for numbered page links.
	PageLinkSelector string

	// MaxPages caps the expanded page list per category, first page
	// included. Zero means no cap.
	MaxPages int
}

// DefaultPaginationConfig returns the pagination defaults.
func DefaultPaginationConfig() PaginationConfig {
	return PaginationConfig{
		NextSelectors: []string{
			"a[aria-label*='next' i]",
			"a[rel='next']",
			"a[class*='next' i]",
			"a[class*='pagination']",
			"[class*='pagination'] a",
			"a[href*='page=']",
		},
		PageLinkSelector: "a[href*='page']",
	}
}

// Paginator expands one category page into the list of its paginated pages.
type Paginator struct {
	cfg PaginationConfig
}

// NewPaginator creates a Paginator, filling zero config fields with
// defaults.
func NewPaginator(cfg PaginationConfig) *Paginator {
	def := DefaultPaginationConfig()
	if cfg.NextSelectors == nil {
		cfg.NextSelectors = def.NextSelectors
	}
	if cfg.PageLinkSelector == "" {
		cfg.PageLinkSelector = def.PageLinkSelector
	}
	return &Paginator{cfg: cfg}
}

// PageURLs returns the category page followed by any further pages found in
// its markup: the first working next-selector, else the numbered page links.
// All results are same-domain absolute URLs, deduplicated, in document
// order.
func (p *Paginator) PageURLs(markup, categoryURL string) []string {
	pages := []string{categoryURL}

	base, err := url.Parse(categoryURL)
	if err != nil {
		return pages
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Debug("pagination parse failed", "url", categoryURL, "error", err)
		return pages
	}

	seen := map[string]bool{normalizeURL(categoryURL): true}
	add := func(href string) bool {
		full := resolvePageLink(href, base)
		if full == "" || seen[normalizeURL(full)] {
			return false
		}
		if p.cfg.MaxPages > 0 && len(pages) >= p.cfg.MaxPages {
			return false
		}
		seen[normalizeURL(full)] = true
		pages = append(pages, full)
		return true
	}

	found := false
	for _, selector := range p.cfg.NextSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if href, ok := s.Attr("href"); ok && add(href) {
				found = true
			}
			return !found
		})
		if found {
			break
		}
	}

	if !found {
		doc.Find(p.cfg.PageLinkSelector).Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				add(href)
			}
		})
	}

	if len(pages) > 1 {
		logger.Debug("pagination expanded", "url", categoryURL, "pages", len(pages))
	}
	return pages
}

// resolvePageLink resolves a pagination href and rejects cross-domain and
// script links.
func resolvePageLink(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !link.IsAbs() {
		link = base.ResolveReference(link)
	}
	if link.Host != base.Host {
		return ""
	}
	link.Fragment = ""
	return link.String()
}
