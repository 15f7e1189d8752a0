// Package scroll drives a page's scroll position until lazily rendered
// content stops materializing, then exhausts horizontal carousels.
package scroll

import (
	"context"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

// Config holds the vertical settling tunables.
type Config struct {
	// Increment is how far each step advances the vertical offset.
	Increment float64

	// Pause is the settle interval after each step.
	Pause time.Duration

	// MaxSteps caps the settle loop regardless of convergence.
	MaxSteps int

	// StallLimit is how many consecutive unproductive steps trigger
	// escalation.
	StallLimit int

	// InitialOffset is scrolled to before the loop to kick off the first
	// round of lazy loads.
	InitialOffset float64

	// InitialPause follows the initial offset scroll.
	InitialPause time.Duration

	// ContentSelector counts content-bearing elements as the second
	// convergence signal. Document height alone can plateau while images
	// are still attaching.
	ContentSelector string

	// LoadMoreSelectors locate "load more" affordances clicked
	// opportunistically during settling.
	LoadMoreSelectors []string

	// SweepSteps and SweepStride control the coarse upward sweep after
	// convergence, re-triggering viewport-entry lazy loaders.
	SweepSteps  int
	SweepStride float64

	// SweepPause follows each upward sweep step.
	SweepPause time.Duration
}

// DefaultConfig returns the settling defaults.
func DefaultConfig() Config {
	return Config{
		Increment:       800,
		Pause:           2 * time.Second,
		MaxSteps:        100,
		StallLimit:      5,
		InitialOffset:   500,
		InitialPause:    3 * time.Second,
		ContentSelector: "img",
		LoadMoreSelectors: []string{
			"button[class*='load-more' i]",
			"a[class*='load-more' i]",
			"[aria-label*='load more' i]",
			"[aria-label*='show more' i]",
		},
		SweepSteps:  5,
		SweepStride: 1000,
		SweepPause:  time.Second,
	}
}

// Settler drives vertical scrolling until the page stops producing content.
type Settler struct {
	cfg Config
}

// NewSettler creates a Settler, filling zero config fields with defaults.
func NewSettler(cfg Config) *Settler {
	def := DefaultConfig()
	if cfg.Increment == 0 {
		cfg.Increment = def.Increment
	}
	if cfg.Pause == 0 {
		cfg.Pause = def.Pause
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.StallLimit == 0 {
		cfg.StallLimit = def.StallLimit
	}
	if cfg.InitialOffset == 0 {
		cfg.InitialOffset = def.InitialOffset
	}
	if cfg.InitialPause == 0 {
		cfg.InitialPause = def.InitialPause
	}
	if cfg.ContentSelector == "" {
		cfg.ContentSelector = def.ContentSelector
	}
	if cfg.LoadMoreSelectors == nil {
		cfg.LoadMoreSelectors = def.LoadMoreSelectors
	}
	if cfg.SweepSteps == 0 {
		cfg.SweepSteps = def.SweepSteps
	}
	if cfg.SweepStride == 0 {
		cfg.SweepStride = def.SweepStride
	}
	if cfg.SweepPause == 0 {
		cfg.SweepPause = def.SweepPause
	}
	return &Settler{cfg: cfg}
}

// Settle scrolls the page until neither document height nor content count
// grows, escalating through bottom and smooth scrolls before declaring
// convergence. Individual scroll or query failures count as unproductive
// steps, never as errors. Returns the number of steps taken.
func (s *Settler) Settle(ctx context.Context, p page.Page) int {
	logger.Info("settling page", "max_steps", s.cfg.MaxSteps)

	lastHeight := p.ScrollHeight(ctx)
	lastCount := 0
	heightStreak := 0
	contentStreak := 0
	steps := 0

	if err := p.ScrollTo(ctx, 0, s.cfg.InitialOffset); err != nil {
		logger.Debug("initial scroll failed", "error", err)
	}
	sleep(ctx, s.cfg.InitialPause)
	logger.Debug("initial content count", "count", s.contentCount(ctx, p))

	for steps < s.cfg.MaxSteps && ctx.Err() == nil {
		off := p.ScrollOffset(ctx)
		if err := p.ScrollTo(ctx, 0, off.Y+s.cfg.Increment); err != nil {
			logger.Debug("scroll step failed", "step", steps, "error", err)
		}
		sleep(ctx, s.cfg.Pause)

		s.clickLoadMore(ctx, p)

		newHeight := p.ScrollHeight(ctx)
		count := s.contentCount(ctx, p)
		if count > lastCount {
			lastCount = count
			contentStreak = 0
			if steps%10 == 0 {
				logger.Debug("content still growing", "step", steps, "count", count)
			}
		} else {
			contentStreak++
		}

		if newHeight == lastHeight {
			heightStreak++
			if heightStreak >= s.cfg.StallLimit {
				var done bool
				newHeight, done = s.escalate(ctx, p, lastHeight, contentStreak)
				if done {
					logger.Info("no more content loading", "steps", steps)
					break
				}
				heightStreak = 0
				contentStreak = 0
			}
		} else {
			heightStreak = 0
			contentStreak = 0
		}

		lastHeight = newHeight
		steps++
	}

	s.finalSweep(ctx, p)
	logger.Info("settling complete", "steps", steps, "content_count", lastCount)
	return steps
}

// escalate force-scrolls to the absolute bottom, then retries with smooth
// behavior. Convergence is declared only when height stays flat through both
// attempts and the content count has also stalled.
func (s *Settler) escalate(ctx context.Context, p page.Page, lastHeight float64, contentStreak int) (float64, bool) {
	if err := p.ScrollToBottom(ctx, false); err != nil {
		logger.Debug("bottom scroll failed", "error", err)
	}
	sleep(ctx, 2*s.cfg.Pause)
	h := p.ScrollHeight(ctx)
	if h != lastHeight {
		return h, false
	}

	if err := p.ScrollToBottom(ctx, true); err != nil {
		logger.Debug("smooth scroll failed", "error", err)
	}
	sleep(ctx, 2*s.cfg.Pause)
	h = p.ScrollHeight(ctx)
	if h == lastHeight && contentStreak >= s.cfg.StallLimit {
		return h, true
	}
	return h, false
}

// finalSweep does one last bottom scroll, then steps back toward the top in
// coarse decrements so viewport-entry loaders above the fold get a chance to
// fire.
func (s *Settler) finalSweep(ctx context.Context, p page.Page) {
	if err := p.ScrollToBottom(ctx, false); err != nil {
		logger.Debug("final bottom scroll failed", "error", err)
	}
	sleep(ctx, 2*s.cfg.Pause)

	for i := 0; i < s.cfg.SweepSteps; i++ {
		pos := p.ScrollHeight(ctx) - float64(i)*s.cfg.SweepStride
		if pos <= 0 {
			break
		}
		if err := p.ScrollTo(ctx, 0, pos); err != nil {
			logger.Debug("sweep scroll failed", "error", err)
		}
		sleep(ctx, s.cfg.SweepPause)
	}
}

func (s *Settler) contentCount(ctx context.Context, p page.Page) int {
	els, err := p.QueryAll(ctx, s.cfg.ContentSelector)
	if err != nil {
		logger.Debug("content count failed", "error", err)
		return 0
	}
	return len(els)
}

// clickLoadMore clicks the first visible "load more" affordance, if any.
func (s *Settler) clickLoadMore(ctx context.Context, p page.Page) {
	for _, sel := range s.cfg.LoadMoreSelectors {
		els, err := p.QueryAll(ctx, sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if !el.Visible() {
				continue
			}
			el.ScrollIntoView()
			if err := el.Click(); err != nil {
				continue
			}
			logger.Debug("clicked load-more affordance", "selector", sel)
			sleep(ctx, s.cfg.Pause)
			return
		}
	}
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) {
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
