package scroll

import (
	"context"
	"testing"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

func fastCarouselConfig() CarouselConfig {
	cfg := DefaultCarouselConfig()
	cfg.Pause = time.Millisecond
	return cfg
}

func newCarouselSnapshot(t *testing.T, markup string) *page.Snapshot {
	t.Helper()
	s, err := page.NewSnapshot(markup, "https://shop.example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func TestReveal_ScrollsCarouselThroughFullRange(t *testing.T) {
	s := newCarouselSnapshot(t, `<html><body>
		<div class="product-carousel" style="overflow-x: scroll">
			<img src="1.jpg">
		</div>
	</body></html>`)

	ctx := context.Background()
	containers, _ := s.QueryAll(ctx, ".product-carousel")
	s.SetMetrics(containers[0], page.ElementMetrics{ScrollWidth: 1000, ClientWidth: 400})

	var maxSeen float64
	s.OnElementScroll = func(el page.Element, left float64) {
		if left > maxSeen {
			maxSeen = left
		}
		if left >= 500 {
			s.AppendBodyHTML(`<img src="hidden-slide.jpg">`)
		}
	}

	NewRevealer(fastCarouselConfig()).Reveal(ctx, s)

	if maxSeen != 600 {
		t.Errorf("expected carousel scrolled to max offset 600, got %g", maxSeen)
	}
	imgs, _ := s.QueryAll(ctx, "img")
	if len(imgs) < 2 {
		t.Error("expected content mounted near the far end to be revealed")
	}
}

func TestReveal_SkipsNonScrollableContainer(t *testing.T) {
	s := newCarouselSnapshot(t, `<html><body>
		<div class="hero-carousel" style="overflow-x: hidden"><img src="1.jpg"></div>
	</body></html>`)

	var scrolled bool
	s.OnElementScroll = func(el page.Element, left float64) { scrolled = true }

	NewRevealer(fastCarouselConfig()).Reveal(context.Background(), s)
	if scrolled {
		t.Error("container without scrollable width should not be scrolled")
	}
}

func TestReveal_ClicksNextArrow(t *testing.T) {
	s := newCarouselSnapshot(t, `<html><body>
		<div class="deals-slider" style="overflow-x: auto">
			<img src="1.jpg">
			<button aria-label="Next slide">&gt;</button>
		</div>
	</body></html>`)

	ctx := context.Background()
	containers, _ := s.QueryAll(ctx, ".deals-slider")
	carousel := containers[0]
	s.SetMetrics(carousel, page.ElementMetrics{ScrollWidth: 1000, ClientWidth: 400})

	clicks := 0
	s.OnClick = func(el page.Element) {
		clicks++
		carousel.SetScrollLeft(carousel.ScrollLeft() + 200)
	}

	NewRevealer(fastCarouselConfig()).Reveal(ctx, s)

	// 0 -> 200 -> 400 -> 600 hits max-scroll minus tolerance after 3 clicks.
	if clicks != 3 {
		t.Errorf("expected 3 arrow clicks to reach the end, got %d", clicks)
	}
}

func TestReveal_ArrowStoppedWhenScrollStuck(t *testing.T) {
	s := newCarouselSnapshot(t, `<html><body>
		<div class="promo-carousel" style="overflow-x: auto">
			<button class="carousel-next">&gt;</button>
		</div>
	</body></html>`)

	ctx := context.Background()
	containers, _ := s.QueryAll(ctx, ".promo-carousel")
	s.SetMetrics(containers[0], page.ElementMetrics{ScrollWidth: 1000, ClientWidth: 400})

	// Clicks that never move the scroll position must stop after one try.
	clicks := 0
	s.OnClick = func(el page.Element) { clicks++ }

	NewRevealer(fastCarouselConfig()).Reveal(ctx, s)
	if clicks != 1 {
		t.Errorf("expected a single ineffective click before giving up, got %d", clicks)
	}
}

func TestReveal_DiscoversContainerFromArrowAncestor(t *testing.T) {
	// The container carries no overflow styling at all, so only the arrow
	// ancestry walk can find it.
	s := newCarouselSnapshot(t, `<html><body>
		<div class="featured-slider">
			<img src="1.jpg">
			<button aria-label="next items">&gt;</button>
		</div>
	</body></html>`)

	ctx := context.Background()
	containers, _ := s.QueryAll(ctx, ".featured-slider")
	carousel := containers[0]
	s.SetMetrics(carousel, page.ElementMetrics{ScrollWidth: 800, ClientWidth: 400})

	var maxSeen float64
	s.OnElementScroll = func(el page.Element, left float64) {
		if left > maxSeen {
			maxSeen = left
		}
	}

	NewRevealer(fastCarouselConfig()).Reveal(ctx, s)
	if maxSeen != 400 {
		t.Errorf("expected arrow-discovered carousel scrolled to 400, got %g", maxSeen)
	}
}
