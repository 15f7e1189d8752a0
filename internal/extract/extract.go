package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

var (
	// priceStd matches the standard currency form: $12.99, $1,299.
	priceStd = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	// priceSpaced tolerates a space after the symbol: $ 12.99.
	priceSpaced = regexp.MustCompile(`\$\s*[\d,]+\.?\d*`)
	// priceReversed matches amount-then-symbol: 12.99 $.
	priceReversed = regexp.MustCompile(`[\d,]+\.?\d*\s*\$`)

	// purePrice rejects text that is nothing but a price.
	purePrice = regexp.MustCompile(`^\$[\d,]+\.?\d*$`)
	// pricePrefix rejects lines that open with a price.
	pricePrefix = regexp.MustCompile(`^\$[\d,]+\.?\d*`)

	// bgImage pulls the URL out of a background-image declaration.
	bgImage = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)
)

// Config holds the field extraction tunables.
type Config struct {
	// BaseURL is the site origin relative URLs are normalized against.
	BaseURL string

	// SiteDomain constrains hyperlinks to the target site. Derived from
	// BaseURL when empty.
	SiteDomain string

	// TitleSelectors are scanned in priority order for title text.
	TitleSelectors []string

	// TitleNoise terms disqualify a text from being a title.
	TitleNoise []string

	// FallbackNoise holds full UI phrases rejected by the raw text-line
	// fallback. Kept separate from TitleNoise because bare terms like
	// "view" or "shop" appear inside real product names.
	FallbackNoise []string

	// TitleMaxLen truncates accepted titles.
	TitleMaxLen int

	// PriceSelectors are scanned in priority order for price text.
	PriceSelectors []string

	// ImageAttrs is the attribute priority order for image sources,
	// direct source first, then lazy-load variants.
	ImageAttrs []string

	// ImageDenylist terms mark placeholder and chrome images.
	ImageDenylist []string
}

// DefaultConfig returns the extraction defaults.
func DefaultConfig() Config {
	return Config{
		TitleSelectors: []string{
			"h1", "h2", "h3", "h4", "h5", "h6",
			"[data-testid*='title' i]",
			"[data-testid*='name' i]",
			"[class*='title' i]",
			"[class*='name' i]",
			"[aria-label]",
			"[class*='heading' i]",
			"[class*='label' i]",
		},
		TitleNoise:    []string{"price", "add to cart", "buy now", "view", "shop", "category"},
		FallbackNoise: []string{"view details", "shop now", "learn more", "add to cart", "buy now"},
		TitleMaxLen:   150,
		PriceSelectors: []string{
			"[data-testid*='price' i]",
			"[class*='price' i]",
			"[aria-label*='price' i]",
			"[class*='cost' i]",
			"[class*='amount' i]",
			"[class*='value' i]",
		},
		ImageAttrs: []string{
			"src", "data-src", "data-lazy-src", "data-original",
			"data-image", "data-img", "data-product-image",
		},
		ImageDenylist: []string{"placeholder", "logo", "icon", "sprite", "1x1", "blank"},
	}
}

// Extractor produces a Record from one candidate element. It never fails:
// fields that no strategy can fill stay empty.
type Extractor struct {
	cfg  Config
	base *url.URL
}

// NewExtractor creates an Extractor, filling zero config fields with
// defaults and deriving the site domain from the base URL when unset.
func NewExtractor(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.TitleSelectors == nil {
		cfg.TitleSelectors = def.TitleSelectors
	}
	if cfg.TitleNoise == nil {
		cfg.TitleNoise = def.TitleNoise
	}
	if cfg.FallbackNoise == nil {
		cfg.FallbackNoise = def.FallbackNoise
	}
	if cfg.TitleMaxLen == 0 {
		cfg.TitleMaxLen = def.TitleMaxLen
	}
	if cfg.PriceSelectors == nil {
		cfg.PriceSelectors = def.PriceSelectors
	}
	if cfg.ImageAttrs == nil {
		cfg.ImageAttrs = def.ImageAttrs
	}
	if cfg.ImageDenylist == nil {
		cfg.ImageDenylist = def.ImageDenylist
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			logger.Warn("invalid base URL, relative URLs will not resolve", "base_url", cfg.BaseURL, "error", err)
		} else {
			base = u
			if cfg.SiteDomain == "" {
				cfg.SiteDomain = strings.TrimPrefix(u.Hostname(), "www.")
			}
		}
	}
	return &Extractor{cfg: cfg, base: base}
}

// Extract runs every field's strategy chain over the candidate.
func (x *Extractor) Extract(el page.Element) Record {
	return Record{
		Title:     x.title(el),
		Price:     x.price(el),
		ImageURL:  x.image(el),
		Hyperlink: x.hyperlink(el),
	}
}

// first runs strategies in order and returns the first non-empty value.
func first(strategies ...func() string) string {
	for _, s := range strategies {
		if v := s(); v != "" {
			return v
		}
	}
	return ""
}

// hyperlink: the candidate's own href, then its first descendant link, then
// any site-domain descendant link, then a URL fished out of an inline click
// handler.
func (x *Extractor) hyperlink(el page.Element) string {
	return first(
		func() string {
			if el.Tag() != "a" {
				return ""
			}
			return x.acceptLink(el.Attr("href"))
		},
		func() string {
			link, ok := el.Query("a")
			if !ok {
				return ""
			}
			return x.acceptLink(link.Attr("href"))
		},
		func() string {
			for _, link := range el.QueryAll("a") {
				if v := x.acceptLink(link.Attr("href")); v != "" {
					return v
				}
			}
			return ""
		},
		func() string {
			onclick := el.Attr("onclick")
			if onclick == "" || x.cfg.SiteDomain == "" {
				return ""
			}
			re := regexp.MustCompile(`["']([^"']*` + regexp.QuoteMeta(x.cfg.SiteDomain) + `[^"']*)["']`)
			if m := re.FindStringSubmatch(onclick); m != nil {
				return m[1]
			}
			return ""
		},
	)
}

// acceptLink normalizes an href and requires a site-domain match.
func (x *Extractor) acceptLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	abs := x.absolute(href)
	if abs == "" {
		return ""
	}
	if x.cfg.SiteDomain != "" && !strings.Contains(abs, x.cfg.SiteDomain) {
		return ""
	}
	return abs
}

// title: hinted descendants, then the candidate's own text line by line,
// then link text, then accessible-name and tooltip attributes.
func (x *Extractor) title(el page.Element) string {
	return first(
		func() string {
			for _, sel := range x.cfg.TitleSelectors {
				for _, hinted := range el.QueryAll(sel) {
					t := strings.TrimSpace(hinted.Text())
					if x.validTitle(t) {
						return x.truncate(t)
					}
				}
			}
			return ""
		},
		func() string {
			for _, line := range strings.Split(el.Text(), "\n") {
				line = strings.TrimSpace(line)
				if !titleSized(line) {
					continue
				}
				if pricePrefix.MatchString(line) || x.noisyLine(line) {
					continue
				}
				if len(strings.Fields(line)) < 2 {
					continue
				}
				return x.truncate(line)
			}
			return ""
		},
		func() string {
			if el.Tag() != "a" {
				return ""
			}
			t := strings.TrimSpace(el.Text())
			if !titleSized(t) || purePrice.MatchString(t) {
				return ""
			}
			return x.truncate(t)
		},
		func() string {
			if t := el.Attr("aria-label"); titleSized(t) {
				return x.truncate(t)
			}
			return ""
		},
		func() string {
			if t := el.Attr("title"); titleSized(t) {
				return x.truncate(t)
			}
			return ""
		},
	)
}

// titleSized bounds title lengths in characters, not bytes, so multi-byte
// names are measured the same as ASCII ones.
func titleSized(t string) bool {
	n := utf8.RuneCountInString(t)
	return n >= 5 && n <= 200
}

func (x *Extractor) validTitle(t string) bool {
	if !titleSized(t) {
		return false
	}
	if purePrice.MatchString(t) {
		return false
	}
	return !x.noisy(t)
}

func (x *Extractor) noisy(t string) bool {
	lower := strings.ToLower(t)
	for _, term := range x.cfg.TitleNoise {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (x *Extractor) noisyLine(t string) bool {
	lower := strings.ToLower(t)
	for _, phrase := range x.cfg.FallbackNoise {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (x *Extractor) truncate(t string) string {
	r := []rune(t)
	if len(r) > x.cfg.TitleMaxLen {
		return string(r[:x.cfg.TitleMaxLen])
	}
	return t
}

// price: hinted descendants, then the candidate's full text with
// progressively looser patterns, then raw markup, then every descendant.
func (x *Extractor) price(el page.Element) string {
	return first(
		func() string {
			for _, sel := range x.cfg.PriceSelectors {
				for _, hinted := range el.QueryAll(sel) {
					if m := priceStd.FindString(hinted.Text()); m != "" {
						return m
					}
				}
			}
			return ""
		},
		func() string {
			text := el.Text()
			for _, re := range []*regexp.Regexp{priceStd, priceSpaced, priceReversed} {
				if m := re.FindString(text); m != "" {
					return strings.TrimSpace(m)
				}
			}
			return ""
		},
		func() string {
			return priceStd.FindString(el.HTML())
		},
		func() string {
			for _, child := range el.QueryAll("*") {
				if m := priceStd.FindString(child.Text()); m != "" {
					return m
				}
			}
			return ""
		},
	)
}

// image: descendant img tags by attribute priority, then picture sources,
// then the largest rendered image, then an inline background-image.
func (x *Extractor) image(el page.Element) string {
	return first(
		func() string {
			for _, img := range el.QueryAll("img") {
				src := x.imgSource(img, x.cfg.ImageAttrs)
				if src == "" {
					continue
				}
				abs := x.absolute(src)
				if abs != "" && !x.denylisted(abs) {
					return abs
				}
			}
			return ""
		},
		func() string {
			for _, source := range el.QueryAll("picture img, picture source") {
				src := x.imgSource(source, []string{"src", "data-src", "srcset"})
				if src == "" {
					continue
				}
				abs := x.absolute(src)
				if abs != "" && !x.denylisted(abs) {
					return abs
				}
			}
			return ""
		},
		func() string {
			// Larger images are more likely to be the product shot.
			best := ""
			bestArea := 0.0
			for _, img := range el.QueryAll("img") {
				src := x.imgSource(img, []string{"src", "data-src", "data-lazy-src"})
				if src == "" || x.denylisted(src) {
					continue
				}
				size := img.Size()
				area := size.Width * size.Height
				if best == "" || area > bestArea {
					best = src
					bestArea = area
				}
			}
			return x.absolute(best)
		},
		func() string {
			if m := bgImage.FindStringSubmatch(el.Attr("style")); m != nil {
				return x.absolute(m[1])
			}
			return ""
		},
	)
}

// imgSource picks the first usable attribute value and keeps the first URL
// of a comma-delimited responsive source list.
func (x *Extractor) imgSource(img page.Element, attrs []string) string {
	var src string
	for _, attr := range attrs {
		v := strings.TrimSpace(img.Attr(attr))
		if v != "" && v != "null" && v != "undefined" {
			src = v
			break
		}
	}
	if src == "" {
		return ""
	}
	if strings.Contains(src, ",") {
		src = strings.TrimSpace(strings.Split(src, ",")[0])
		src = strings.Split(src, " ")[0]
	}
	return src
}

func (x *Extractor) denylisted(src string) bool {
	lower := strings.ToLower(src)
	for _, term := range x.cfg.ImageDenylist {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// absolute resolves a possibly relative URL against the site origin.
func (x *Extractor) absolute(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if x.base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return x.base.ResolveReference(ref).String()
}
