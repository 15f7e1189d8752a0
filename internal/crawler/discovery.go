package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
)

// fallbackLinkPattern scans raw markup for category-shaped hrefs when no
// selector produced anything, catching links assembled by scripts the parser
// never sees attached to navigation.
var fallbackLinkPattern = regexp.MustCompile(`href=["']([^"']*/(?:product|category|department|aisle|brand|p)/[^"']*)["']`)

// Category is one discovered listing entry point.
type Category struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// DiscoveryConfig holds the category discovery tunables.
type DiscoveryConfig struct {
	// Selectors are tried in order; the first one that yields links wins.
	// Ordered from site-specific href shapes down to generic navigation.
	Selectors []string

	// IncludePaths are the URL substrings that mark a listing link.
	IncludePaths []string

	// ExcludePaths reject utility pages that match an include by accident.
	ExcludePaths []string

	// FallbackLimit caps links taken from the raw-markup regex scan.
	FallbackLimit int
}

// DefaultDiscoveryConfig returns the discovery defaults.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Selectors: []string{
			"a[href*='/product/']",
			"a[href*='/category/']",
			"a[href*='/department/']",
			"a[href*='/aisle/']",
			"a[href*='/brand/']",
			"a[href*='/p/']",
			"[data-testid*='category'] a",
			"[data-testid*='department'] a",
			"[class*='Category'] a",
			"[class*='Department'] a",
			"[class*='Navigation'] a",
			"[class*='Menu'] a",
			"nav a",
			"[class*='category'] a",
			"[class*='department'] a",
			"[class*='nav'] a",
			"[class*='menu'] a",
		},
		IncludePaths: []string{
			"/product/", "/category/", "/department/", "/aisle/", "/p/", "/brand/",
		},
		ExcludePaths: []string{
			"/search", "/account", "/cart", "/checkout",
			"/login", "/register", "/help", "/about",
		},
		FallbackLimit: 50,
	}
}

// Discoverer finds category listing links in homepage markup.
type Discoverer struct {
	cfg DiscoveryConfig
}

// NewDiscoverer creates a Discoverer, filling zero config fields with
// defaults.
func NewDiscoverer(cfg DiscoveryConfig) *Discoverer {
	def := DefaultDiscoveryConfig()
	if cfg.Selectors == nil {
		cfg.Selectors = def.Selectors
	}
	if cfg.IncludePaths == nil {
		cfg.IncludePaths = def.IncludePaths
	}
	if cfg.ExcludePaths == nil {
		cfg.ExcludePaths = def.ExcludePaths
	}
	if cfg.FallbackLimit == 0 {
		cfg.FallbackLimit = def.FallbackLimit
	}
	return &Discoverer{cfg: cfg}
}

// Discover extracts category links from markup, falling back to a raw
// regex scan and finally to the base URL itself, so the caller always gets
// at least one page to scrape.
func (d *Discoverer) Discover(markup, baseURL string) []Category {
	base, err := url.Parse(baseURL)
	if err != nil {
		logger.Warn("invalid base URL for discovery", "base_url", baseURL, "error", err)
		return []Category{{URL: baseURL, Name: "All Products"}}
	}

	categories := d.fromSelectors(markup, base)
	if len(categories) == 0 {
		logger.Debug("no categories via selectors, scanning raw markup")
		categories = d.fromRawMarkup(markup, base)
	}
	if len(categories) == 0 {
		logger.Info("no categories found, falling back to the page itself", "url", baseURL)
		return []Category{{URL: baseURL, Name: "All Products"}}
	}

	logger.Info("categories discovered", "count", len(categories))
	return categories
}

func (d *Discoverer) fromSelectors(markup string, base *url.URL) []Category {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Debug("discovery parse failed", "error", err)
		return nil
	}

	seen := make(map[string]bool)
	for _, selector := range d.cfg.Selectors {
		var categories []Category
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			full := d.acceptLink(href, base)
			if full == "" || seen[full] {
				return
			}
			seen[full] = true
			categories = append(categories, Category{
				URL:  full,
				Name: categoryName(strings.TrimSpace(s.Text()), full),
			})
		})
		if len(categories) > 0 {
			logger.Debug("categories found", "selector", selector, "count", len(categories))
			return categories
		}
	}
	return nil
}

func (d *Discoverer) fromRawMarkup(markup string, base *url.URL) []Category {
	var categories []Category
	seen := make(map[string]bool)
	for _, m := range fallbackLinkPattern.FindAllStringSubmatch(markup, -1) {
		if len(categories) >= d.cfg.FallbackLimit {
			break
		}
		full := d.acceptLink(m[1], base)
		if full == "" || seen[full] {
			continue
		}
		seen[full] = true
		categories = append(categories, Category{URL: full, Name: categoryName("", full)})
	}
	return categories
}

// acceptLink resolves a href against the base and returns the absolute URL
// when it is a same-site listing link, or "" otherwise.
func (d *Discoverer) acceptLink(href string, base *url.URL) string {
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
	link.Fragment = ""
	if link.Host != base.Host {
		return ""
	}

	full := link.String()
	included := false
	for _, p := range d.cfg.IncludePaths {
		if strings.Contains(full, p) {
			included = true
			break
		}
	}
	if !included {
		return ""
	}
	for _, p := range d.cfg.ExcludePaths {
		if strings.Contains(full, p) {
			return ""
		}
	}
	return full
}

// categoryName prefers the link text and falls back to a title-cased
// rendition of the last path segment.
func categoryName(text, fullURL string) string {
	if text != "" {
		return text
	}
	slug := fullURL
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	name := titleCase(strings.ReplaceAll(slug, "-", " "))
	if name == "" {
		return "Category"
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
