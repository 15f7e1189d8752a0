package scroll

import (
	"context"
	"strings"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

// CarouselConfig holds the horizontal reveal tunables.
type CarouselConfig struct {
	// ContainerSelectors locate candidate carousel containers by class,
	// test id, or inline overflow styling.
	ContainerSelectors []string

	// ArrowSelector locates "next/right" affordance controls.
	ArrowSelector string

	// AncestorSelector maps an arrow control to its scrollable container.
	AncestorSelector string

	// MaxArrowClicks bounds the arrow-clicking loop per container.
	MaxArrowClicks int

	// EndTolerance is how close to max scroll counts as "at the end".
	EndTolerance float64

	// StepFraction of the visible width is scrolled per programmatic step.
	StepFraction float64

	// MaxScrollSteps bounds the programmatic scrolling loop.
	MaxScrollSteps int

	// SweepFraction of the visible width is the stride of the final
	// deterministic sweep.
	SweepFraction float64

	// Pause follows each click or scroll.
	Pause time.Duration
}

// DefaultCarouselConfig returns the carousel reveal defaults.
func DefaultCarouselConfig() CarouselConfig {
	return CarouselConfig{
		ContainerSelectors: []string{
			"[class*='carousel' i]",
			"[class*='slider' i]",
			"[class*='scroll' i][class*='horizontal' i]",
			"[style*='overflow-x']",
			"[style*='overflow: auto']",
			"[style*='overflow: scroll']",
			"[data-testid*='carousel' i]",
			"[data-testid*='slider' i]",
		},
		ArrowSelector: "button[aria-label*='next' i], button[aria-label*='right' i], " +
			"button[class*='arrow' i], button[class*='next' i], " +
			"[class*='arrow-right' i], [class*='carousel-next' i], [class*='slider-next' i]",
		AncestorSelector: "[class*='carousel' i], [class*='slider' i], [style*='overflow']",
		MaxArrowClicks:   20,
		EndTolerance:     10,
		StepFraction:     0.9,
		MaxScrollSteps:   10,
		SweepFraction:    0.8,
		Pause:            300 * time.Millisecond,
	}
}

// Revealer exhausts horizontally scrollable containers so carousel-mounted
// products exist in the DOM before extraction. Runs once, after vertical
// settling.
type Revealer struct {
	cfg CarouselConfig
}

// NewRevealer creates a Revealer, filling zero config fields with defaults.
func NewRevealer(cfg CarouselConfig) *Revealer {
	def := DefaultCarouselConfig()
	if cfg.ContainerSelectors == nil {
		cfg.ContainerSelectors = def.ContainerSelectors
	}
	if cfg.ArrowSelector == "" {
		cfg.ArrowSelector = def.ArrowSelector
	}
	if cfg.AncestorSelector == "" {
		cfg.AncestorSelector = def.AncestorSelector
	}
	if cfg.MaxArrowClicks == 0 {
		cfg.MaxArrowClicks = def.MaxArrowClicks
	}
	if cfg.EndTolerance == 0 {
		cfg.EndTolerance = def.EndTolerance
	}
	if cfg.StepFraction == 0 {
		cfg.StepFraction = def.StepFraction
	}
	if cfg.MaxScrollSteps == 0 {
		cfg.MaxScrollSteps = def.MaxScrollSteps
	}
	if cfg.SweepFraction == 0 {
		cfg.SweepFraction = def.SweepFraction
	}
	if cfg.Pause == 0 {
		cfg.Pause = def.Pause
	}
	return &Revealer{cfg: cfg}
}

// Reveal finds every horizontal carousel and scrolls each through its full
// range. A single container's failure is logged and skipped.
func (r *Revealer) Reveal(ctx context.Context, p page.Page) {
	carousels := r.discover(ctx, p)
	logger.Info("revealing carousels", "count", len(carousels))

	for i, c := range carousels {
		if ctx.Err() != nil {
			return
		}
		r.revealOne(ctx, p, c, i+1)
	}
}

// discover collects containers that are actually horizontally scrollable,
// plus the scrollable ancestors of any "next" arrows, deduplicated by node
// identity.
func (r *Revealer) discover(ctx context.Context, p page.Page) []page.Element {
	var found []page.Element
	add := func(el page.Element) {
		for _, f := range found {
			if f.SameNode(el) {
				return
			}
		}
		found = append(found, el)
	}

	for _, sel := range r.cfg.ContainerSelectors {
		els, err := p.QueryAll(ctx, sel)
		if err != nil {
			logger.Debug("carousel query failed", "selector", sel, "error", err)
			continue
		}
		for _, el := range els {
			if !horizontallyScrollable(el) {
				continue
			}
			if el.ScrollWidth() > el.ClientWidth() {
				add(el)
			}
		}
	}

	arrows, err := p.QueryAll(ctx, r.cfg.ArrowSelector)
	if err != nil {
		return found
	}
	for _, btn := range arrows {
		if anc, ok := btn.Closest(r.cfg.AncestorSelector); ok {
			add(anc)
		}
	}
	return found
}

// horizontallyScrollable checks computed overflow first, then inline style
// hints for parsed documents without computed styles.
func horizontallyScrollable(el page.Element) bool {
	switch el.Style("overflow-x") {
	case "auto", "scroll":
		return true
	}
	style := strings.ToLower(el.Attr("style"))
	return strings.Contains(style, "overflow-x") ||
		strings.Contains(style, "overflow: auto") ||
		strings.Contains(style, "overflow: scroll")
}

func (r *Revealer) revealOne(ctx context.Context, p page.Page, el page.Element, idx int) {
	el.ScrollIntoView()
	sleep(ctx, r.cfg.Pause)

	maxScroll := el.ScrollWidth() - el.ClientWidth()
	if maxScroll <= 0 {
		return
	}

	clicks := r.clickArrows(ctx, p, el, maxScroll)
	if clicks > 0 {
		logger.Debug("carousel arrows clicked", "carousel", idx, "clicks", clicks)
	}

	// Programmatic scrolling as a backstop for containers whose arrows did
	// not exist or stopped early.
	step := el.ClientWidth() * r.cfg.StepFraction
	cur := el.ScrollLeft()
	for i := 0; cur < maxScroll && i < r.cfg.MaxScrollSteps; i++ {
		target := cur + step
		if target > maxScroll {
			target = maxScroll
		}
		el.SetScrollLeft(target)
		sleep(ctx, r.cfg.Pause)

		actual := el.ScrollLeft()
		if actual == cur {
			break
		}
		cur = actual
	}

	// Final deterministic sweep: some renderers only mount children near
	// the current offset, so every visual page must have been visible once.
	sweep := el.ClientWidth() * r.cfg.SweepFraction
	if sweep > 0 {
		for pos := 0.0; pos < maxScroll; pos += sweep {
			el.SetScrollLeft(pos)
			sleep(ctx, r.cfg.Pause)
		}
	}
	logger.Debug("carousel revealed", "carousel", idx, "max_scroll", maxScroll)
}

// clickArrows clicks the container's "next" affordance until it stops moving
// the scroll position or the end is reached.
func (r *Revealer) clickArrows(ctx context.Context, p page.Page, el page.Element, maxScroll float64) int {
	arrows := el.QueryAll(r.cfg.ArrowSelector)
	if len(arrows) == 0 {
		// Arrows are often siblings of the scrollable container rather
		// than children.
		pageArrows, err := p.QueryAll(ctx, r.cfg.ArrowSelector)
		if err == nil {
			for _, btn := range pageArrows {
				if anc, ok := btn.Closest(r.cfg.AncestorSelector); ok && anc.SameNode(el) {
					arrows = append(arrows, btn)
				}
			}
		}
	}

	clicks := 0
	last := el.ScrollLeft()
	for clicks < r.cfg.MaxArrowClicks && ctx.Err() == nil {
		clicked := false
		for _, arrow := range arrows {
			if !arrow.Visible() {
				continue
			}
			if err := arrow.Click(); err != nil {
				continue
			}
			sleep(ctx, r.cfg.Pause)
			clicked = true
			break
		}
		if !clicked {
			break
		}

		cur := el.ScrollLeft()
		if cur == last {
			break
		}
		last = cur
		clicks++

		if cur >= maxScroll-r.cfg.EndTolerance {
			break
		}
	}
	return clicks
}
