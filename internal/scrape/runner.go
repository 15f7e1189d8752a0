package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/locate"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/scroll"
)

// Config aggregates the tunables of every pipeline stage for one page visit.
type Config struct {
	// URL is the page to scrape.
	URL string

	// MaxProducts caps extraction per pass. Zero means unlimited.
	MaxProducts int

	// ReadyTimeout bounds the initial page-ready wait.
	ReadyTimeout time.Duration

	// SettleWait is the extra wait after navigation, blocking warnings and
	// major stage transitions, giving dynamic content time to attach.
	SettleWait time.Duration

	// PassWait separates the two extraction passes.
	PassWait time.Duration

	Scroll   scroll.Config
	Carousel scroll.CarouselConfig
	Locator  locate.Config
	Extract  extract.Config
}

// DefaultRunConfig returns pipeline-level defaults.
func DefaultRunConfig() Config {
	return Config{
		ReadyTimeout: 30 * time.Second,
		SettleWait:   5 * time.Second,
		PassWait:     3 * time.Second,
	}
}

// Runner owns one scrape run over one live page session. The page is used
// strictly sequentially and the Runner never closes it; session lifecycle
// belongs to the caller.
type Runner struct {
	cfg       Config
	page      page.Page
	settler   *scroll.Settler
	revealer  *scroll.Revealer
	locator   *locate.Locator
	extractor *extract.Extractor
	acc       *Accumulator

	siteDomain string
	exclusions []string
}

// NewRunner wires the pipeline stages. The site domain and base URL for link
// scoping are derived from the target URL unless set explicitly.
func NewRunner(p page.Page, cfg Config) (*Runner, error) {
	def := DefaultRunConfig()
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = def.ReadyTimeout
	}
	if cfg.SettleWait == 0 {
		cfg.SettleWait = def.SettleWait
	}
	if cfg.PassWait == 0 {
		cfg.PassWait = def.PassWait
	}

	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL %q: %w", cfg.URL, err)
	}
	if cfg.Extract.BaseURL == "" {
		cfg.Extract.BaseURL = target.Scheme + "://" + target.Host
	}
	if cfg.Extract.SiteDomain == "" {
		cfg.Extract.SiteDomain = strings.TrimPrefix(target.Hostname(), "www.")
	}
	if cfg.Locator.SiteDomain == "" {
		cfg.Locator.SiteDomain = cfg.Extract.SiteDomain
	}

	r := &Runner{
		cfg:        cfg,
		page:       p,
		settler:    scroll.NewSettler(cfg.Scroll),
		revealer:   scroll.NewRevealer(cfg.Carousel),
		locator:    locate.NewLocator(cfg.Locator),
		extractor:  extract.NewExtractor(cfg.Extract),
		acc:        NewAccumulator(),
		siteDomain: cfg.Extract.SiteDomain,
	}
	r.exclusions = r.locator.CategoryExclusions()
	return r, nil
}

// Records returns everything accumulated so far. Used to flush partial
// results on interrupt or a late failure.
func (r *Runner) Records() []extract.Record {
	return r.acc.Records()
}

// Run executes the full pipeline: navigate, settle, reveal carousels, then
// two extraction passes reconciled through the accumulator. Page-level
// anomalies (not ready, blocking indicators, odd-looking content) are logged
// and the run pushes on; only navigation failure is fatal.
func (r *Runner) Run(ctx context.Context) ([]extract.Record, error) {
	logger.Info("starting scrape", "url", r.cfg.URL)

	if err := r.page.Navigate(ctx, r.cfg.URL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", r.cfg.URL, err)
	}
	if err := r.page.WaitReady(ctx, r.cfg.ReadyTimeout); err != nil {
		logger.Warn("page-ready wait failed, continuing anyway", "error", err)
	}

	if html, err := r.page.HTML(ctx); err == nil {
		if indicator := DetectBlocking(html); indicator != "" {
			logger.Warn("possible blocking detected, trying to continue", "indicator", indicator)
			wait(ctx, r.cfg.SettleWait)
		}
	}
	wait(ctx, r.cfg.SettleWait)

	// A small nudge before the settle loop; some pages defer everything
	// until the first scroll.
	if err := r.page.ScrollTo(ctx, 0, 100); err != nil {
		logger.Debug("initial nudge failed", "error", err)
	}

	r.settler.Settle(ctx, r.page)
	wait(ctx, r.cfg.SettleWait)
	if err := ctx.Err(); err != nil {
		return r.acc.Records(), err
	}

	r.revealer.Reveal(ctx, r.page)
	r.extraScrollPass(ctx)
	if err := ctx.Err(); err != nil {
		return r.acc.Records(), err
	}

	r.checkPageShape(ctx)

	added := r.acc.Merge(r.pass(ctx))
	logger.Info("first pass complete", "added", len(added), "total", r.acc.Len())

	// Second pass catches elements that finished rendering only after the
	// first snapshot.
	wait(ctx, r.cfg.PassWait)
	if err := r.page.ScrollToBottom(ctx, false); err == nil {
		wait(ctx, r.cfg.PassWait)
	}
	if err := r.page.ScrollTo(ctx, 0, 0); err == nil {
		wait(ctx, r.cfg.PassWait)
	}
	if err := ctx.Err(); err != nil {
		return r.acc.Records(), err
	}

	added = r.acc.Merge(r.pass(ctx))
	logger.Info("second pass complete", "added", len(added), "total", r.acc.Len())

	return r.acc.Records(), nil
}

// pass runs one locate+extract cycle with local first-seen dedup. Records
// without product evidence or with category hyperlinks are dropped here,
// before they ever reach the accumulator.
func (r *Runner) pass(ctx context.Context) []extract.Record {
	els := r.locator.Locate(ctx, r.page)
	if r.cfg.MaxProducts > 0 && len(els) > r.cfg.MaxProducts {
		els = els[:r.cfg.MaxProducts]
	}

	seen := make(map[string]struct{}, len(els))
	var records []extract.Record
	for i, el := range els {
		if ctx.Err() != nil {
			break
		}
		rec := r.extractor.Extract(el)
		if !rec.HasEvidence() {
			if i < 5 {
				logger.Debug("candidate skipped, no essential data", "index", i)
			}
			continue
		}
		if r.isCategoryLink(rec.Hyperlink) {
			if i < 5 {
				logger.Debug("candidate skipped, category link", "index", i, "hyperlink", rec.Hyperlink)
			}
			continue
		}
		key := rec.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}
	logger.Debug("pass extracted", "candidates", len(els), "records", len(records))
	return records
}

// extraScrollPass bounces bottom-top-bottom once more to catch stragglers.
func (r *Runner) extraScrollPass(ctx context.Context) {
	if err := r.page.ScrollToBottom(ctx, false); err != nil {
		return
	}
	wait(ctx, r.cfg.PassWait)
	if err := r.page.ScrollTo(ctx, 0, 0); err != nil {
		return
	}
	wait(ctx, r.cfg.PassWait)
	if err := r.page.ScrollToBottom(ctx, false); err != nil {
		return
	}
	wait(ctx, r.cfg.PassWait)
}

// checkPageShape logs warnings for pages that do not look like product
// listings or that started blocking mid-run. Advisory only.
func (r *Runner) checkPageShape(ctx context.Context) {
	html, err := r.page.HTML(ctx)
	if err != nil {
		return
	}
	current := r.page.CurrentURL(ctx)
	if !LooksLikeProductListing(current, html, r.siteDomain) {
		logger.Warn("page does not look like a product listing, continuing anyway",
			"url", current, "title", r.page.Title(ctx))
	}
	if indicator := DetectBlocking(html); indicator != "" {
		logger.Warn("blocking detected after scrolling, products may be missing", "indicator", indicator)
	}
}

func (r *Runner) isCategoryLink(href string) bool {
	if href == "" {
		return false
	}
	for _, pat := range r.exclusions {
		if strings.Contains(href, pat) {
			return true
		}
	}
	return false
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
