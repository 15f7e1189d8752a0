// Package locate finds product-like DOM nodes using a cascade of structural
// queries, from explicit product attributes down to broad image+link scans.
package locate

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

// pricePattern matches standard currency-formatted substrings like $12.99.
var pricePattern = regexp.MustCompile(`\$[\d,]+\.?\d*`)

// Config holds the locator cascade tunables.
type Config struct {
	// Selectors is the cascade, ordered from most specific to most
	// generic. Matches from every tier are accumulated, not first-wins.
	Selectors []string

	// CategoryExclusions are URL substrings marking non-product links.
	// Inherently site-specific; tuned, not proven.
	CategoryExclusions []string

	// SiteDomain scopes the link escalation tier to the target site.
	// Empty accepts any domain.
	SiteDomain string

	// PriceThreshold, LinkThreshold, StructureThreshold and BroadThreshold
	// trigger the escalation tiers when fewer unique candidates than the
	// threshold have accumulated. Looser scans are expensive, so they only
	// run when the tight ones came up short. A negative threshold disables
	// its tier; zero means the default.
	PriceThreshold     int
	LinkThreshold      int
	StructureThreshold int
	BroadThreshold     int

	// PriceScanLimit caps how many price-bearing elements are climbed.
	PriceScanLimit int

	// CardAncestorSelector is the "card/tile/item"-like ancestor a price
	// element climbs to.
	CardAncestorSelector string

	// StructureWindow caps how many generic containers are examined.
	StructureWindow int

	// StructureLimit caps how many structure-tier candidates are added.
	StructureLimit int

	// MinSize rejects containers smaller than this in either dimension,
	// filtering out icons and decorations.
	MinSize float64

	// BroadLimit caps the last-resort broad scan.
	BroadLimit int
}

// DefaultConfig returns the locator defaults.
func DefaultConfig() Config {
	return Config{
		Selectors: []string{
			"[data-testid*='product' i]",
			"[data-product-id]",
			"[data-product-sku]",
			"[data-product-code]",
			"div[class*='product-card' i]",
			"div[class*='product-tile' i]",
			"div[class*='product-item' i]",
			"div[class*='ProductCard']",
			"div[class*='ProductTile']",
			"div[class*='ProductItem']",
			"article[class*='product' i]",
			"li[class*='product' i]",
			"div[class*='grid-item' i]",
			"a[href*='/product/']",
			"a[href*='/p/']",
			"[class*='card'][class*='product']",
			"[class*='tile'][class*='product']",
			"[itemtype*='Product']",
		},
		CategoryExclusions:   []string{"/category/", "/department/", "/shop/"},
		PriceThreshold:       10,
		LinkThreshold:        50,
		StructureThreshold:   30,
		BroadThreshold:       20,
		PriceScanLimit:       100,
		CardAncestorSelector: "[class*='card' i], [class*='tile' i], [class*='item' i]",
		StructureWindow:      500,
		StructureLimit:       100,
		MinSize:              100,
		BroadLimit:           200,
	}
}

// Locator runs the selector cascade over a loaded page.
type Locator struct {
	cfg Config
}

// NewLocator creates a Locator, filling zero config fields with defaults.
func NewLocator(cfg Config) *Locator {
	def := DefaultConfig()
	if cfg.Selectors == nil {
		cfg.Selectors = def.Selectors
	}
	if cfg.CategoryExclusions == nil {
		cfg.CategoryExclusions = def.CategoryExclusions
	}
	if cfg.PriceThreshold == 0 {
		cfg.PriceThreshold = def.PriceThreshold
	}
	if cfg.LinkThreshold == 0 {
		cfg.LinkThreshold = def.LinkThreshold
	}
	if cfg.StructureThreshold == 0 {
		cfg.StructureThreshold = def.StructureThreshold
	}
	if cfg.BroadThreshold == 0 {
		cfg.BroadThreshold = def.BroadThreshold
	}
	if cfg.PriceScanLimit == 0 {
		cfg.PriceScanLimit = def.PriceScanLimit
	}
	if cfg.CardAncestorSelector == "" {
		cfg.CardAncestorSelector = def.CardAncestorSelector
	}
	if cfg.StructureWindow == 0 {
		cfg.StructureWindow = def.StructureWindow
	}
	if cfg.StructureLimit == 0 {
		cfg.StructureLimit = def.StructureLimit
	}
	if cfg.MinSize == 0 {
		cfg.MinSize = def.MinSize
	}
	if cfg.BroadLimit == 0 {
		cfg.BroadLimit = def.BroadLimit
	}
	return &Locator{cfg: cfg}
}

// CategoryExclusions returns the effective category-link exclusion list,
// shared with pass-level record filtering.
func (l *Locator) CategoryExclusions() []string {
	return l.cfg.CategoryExclusions
}

// nodeSet deduplicates element handles by node identity. Valid only within a
// single pass over a single page snapshot.
type nodeSet struct {
	els []page.Element
}

func (s *nodeSet) add(el page.Element) bool {
	for _, e := range s.els {
		if e.SameNode(el) {
			return false
		}
	}
	s.els = append(s.els, el)
	return true
}

func (s *nodeSet) len() int { return len(s.els) }

// Locate returns an ordered, node-deduplicated list of candidate elements.
// All cascade tiers contribute; the escalation tiers run only when the
// accumulated count is below their thresholds.
func (l *Locator) Locate(ctx context.Context, p page.Page) []page.Element {
	found := &nodeSet{}

	for _, sel := range l.cfg.Selectors {
		els, err := p.QueryAll(ctx, sel)
		if err != nil {
			logger.Debug("candidate query failed", "selector", sel, "error", err)
			continue
		}
		added := 0
		for _, el := range els {
			if !l.acceptTierMatch(el) {
				continue
			}
			if found.add(el) {
				added++
			}
		}
		if added > 0 {
			logger.Debug("candidates found", "selector", sel, "added", added, "total", found.len())
		}
	}

	if found.len() < l.cfg.PriceThreshold {
		l.escalatePriceContainers(ctx, p, found)
	}
	if found.len() < l.cfg.LinkThreshold {
		l.escalateProductLinks(ctx, p, found)
	}
	if found.len() < l.cfg.StructureThreshold {
		l.escalateStructure(ctx, p, found)
	}
	if found.len() < l.cfg.BroadThreshold {
		l.escalateBroad(ctx, p, found)
	}

	logger.Info("candidates located", "count", found.len())
	return found.els
}

// acceptTierMatch requires product evidence: an image descendant plus either
// non-trivial text or a currency substring, and no category link.
func (l *Locator) acceptTierMatch(el page.Element) bool {
	if l.isCategoryLink(candidateHref(el)) {
		return false
	}
	if _, hasImg := el.Query("img"); !hasImg {
		return false
	}
	text := strings.TrimSpace(el.Text())
	return text != "" || pricePattern.MatchString(el.Text())
}

// escalatePriceContainers finds price-bearing elements and climbs each to its
// nearest card/tile/item-like ancestor.
func (l *Locator) escalatePriceContainers(ctx context.Context, p page.Page, found *nodeSet) {
	els, err := p.QueryAll(ctx, "[class*='price' i], span, strong, b, p")
	if err != nil {
		logger.Debug("price container scan failed", "error", err)
		return
	}
	scanned := 0
	for _, el := range els {
		if scanned >= l.cfg.PriceScanLimit {
			break
		}
		if !pricePattern.MatchString(el.Text()) && !strings.Contains(strings.ToLower(el.Attr("class")), "price") {
			continue
		}
		scanned++
		if parent, ok := el.Closest(l.cfg.CardAncestorSelector); ok {
			found.add(parent)
		}
	}
	logger.Debug("price container escalation", "scanned", scanned, "total", found.len())
}

// escalateProductLinks scans hyperlinks for product evidence: product-path
// hrefs directly, and any site-domain link holding an image plus meaningful
// text or a price.
func (l *Locator) escalateProductLinks(ctx context.Context, p page.Page, found *nodeSet) {
	direct, err := p.QueryAll(ctx, "a[href*='/product/'], a[href*='/p/']")
	if err == nil {
		for _, link := range direct {
			if l.isCategoryLink(link.Attr("href")) {
				continue
			}
			found.add(link)
		}
	}

	links, err := p.QueryAll(ctx, "a")
	if err != nil {
		return
	}
	for _, link := range links {
		href := link.Attr("href")
		if href == "" || l.isCategoryLink(href) {
			continue
		}
		if !l.sameSite(href) {
			continue
		}
		if _, hasImg := link.Query("img"); !hasImg {
			continue
		}
		text := strings.TrimSpace(link.Text())
		if len(text) > 5 || pricePattern.MatchString(link.Text()) {
			found.add(link)
		}
	}
	logger.Debug("product link escalation", "total", found.len())
}

// sameSite reports whether an href stays on the target site. Relative hrefs
// resolve against the current page, so they always qualify.
func (l *Locator) sameSite(href string) bool {
	if l.cfg.SiteDomain == "" {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	if u.Host == "" {
		return u.Scheme == ""
	}
	return strings.Contains(u.Hostname(), l.cfg.SiteDomain)
}

// escalateStructure scans generic block containers for image+text+link
// structure, bounded to a fixed window and a minimum rendered size.
func (l *Locator) escalateStructure(ctx context.Context, p page.Page, found *nodeSet) {
	els, err := p.QueryAll(ctx, "div, article, section, li")
	if err != nil {
		return
	}
	if len(els) > l.cfg.StructureWindow {
		els = els[:l.cfg.StructureWindow]
	}

	added := 0
	for _, el := range els {
		if added >= l.cfg.StructureLimit {
			break
		}
		if _, hasImg := el.Query("img"); !hasImg {
			continue
		}
		link, hasLink := el.Query("a")
		if !hasLink {
			continue
		}
		if l.isCategoryLink(link.Attr("href")) {
			continue
		}
		text := strings.TrimSpace(el.Text())
		if len(text) <= 10 && !pricePattern.MatchString(el.Text()) {
			continue
		}
		size := el.Size()
		if size.Width <= l.cfg.MinSize || size.Height <= l.cfg.MinSize {
			continue
		}
		if found.add(el) {
			added++
		}
	}
	logger.Debug("structure escalation", "added", added, "total", found.len())
}

// escalateBroad is the last resort: any element with image+text+link, or
// price+text, hard-capped.
func (l *Locator) escalateBroad(ctx context.Context, p page.Page, found *nodeSet) {
	els, err := p.QueryAll(ctx, "div, article, li, a")
	if err != nil {
		return
	}
	added := 0
	for _, el := range els {
		if added >= l.cfg.BroadLimit {
			break
		}
		text := strings.TrimSpace(el.Text())
		if len(text) <= 10 {
			continue
		}
		_, hasImg := el.Query("img")
		_, hasLink := el.Query("a")
		isLink := el.Tag() == "a"
		hasPrice := pricePattern.MatchString(el.Text())
		if (hasImg && (hasLink || isLink)) || hasPrice {
			if found.add(el) {
				added++
			}
		}
	}
	logger.Debug("broad escalation", "added", added, "total", found.len())
}

func (l *Locator) isCategoryLink(href string) bool {
	if href == "" {
		return false
	}
	for _, pat := range l.cfg.CategoryExclusions {
		if strings.Contains(href, pat) {
			return true
		}
	}
	return false
}

// candidateHref resolves the link a candidate is associated with: the
// candidate itself when it is an anchor, otherwise its first descendant link.
func candidateHref(el page.Element) string {
	if el.Tag() == "a" {
		return el.Attr("href")
	}
	if link, ok := el.Query("a"); ok {
		return link.Attr("href")
	}
	return ""
}
