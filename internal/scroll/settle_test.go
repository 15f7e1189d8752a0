package scroll

import (
	"context"
	"testing"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

// fastConfig keeps settle tests quick.
func fastConfig() Config {
	return Config{
		Increment:     800,
		Pause:         time.Millisecond,
		MaxSteps:      50,
		StallLimit:    5,
		InitialOffset: 500,
		InitialPause:  time.Millisecond,
		SweepPause:    time.Millisecond,
	}
}

func TestSettle_PlateauTerminates(t *testing.T) {
	s, err := page.NewSnapshot(`<html><body>
		<img src="a.jpg"><img src="b.jpg">
	</body></html>`, "https://shop.example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	s.SetScrollHeight(1200)

	settler := NewSettler(fastConfig())
	steps := settler.Settle(context.Background(), s)
	if steps >= 50 {
		t.Fatalf("expected convergence before max steps, took %d", steps)
	}
	if steps < 5 {
		t.Errorf("expected at least one full stall streak before convergence, took %d", steps)
	}
}

func TestSettle_GrowingPageKeepsScrolling(t *testing.T) {
	s, err := page.NewSnapshot(`<html><body><img src="0.jpg"></body></html>`, "https://shop.example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	s.SetScrollHeight(1000)

	// Grow the document on the first few scrolls the way a lazy loader
	// would, then go quiet.
	growths := 0
	s.OnScroll = func(snap *page.Snapshot, off page.Offset) {
		if growths < 3 && off.Y >= snap.ScrollHeight(context.Background())-900 {
			growths++
			snap.AppendBodyHTML(`<img src="more.jpg">`)
			snap.SetScrollHeight(snap.ScrollHeight(context.Background()) + 1000)
		}
	}

	settler := NewSettler(fastConfig())
	settler.Settle(context.Background(), s)

	imgs, _ := s.QueryAll(context.Background(), "img")
	if len(imgs) != 4 {
		t.Errorf("expected all lazy content to load, got %d images", len(imgs))
	}
}

func TestSettle_ClicksLoadMore(t *testing.T) {
	s, err := page.NewSnapshot(`<html><body>
		<img src="a.jpg">
		<button class="load-more-btn">Load More</button>
	</body></html>`, "https://shop.example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	s.SetScrollHeight(800)

	clicked := 0
	s.OnClick = func(el page.Element) {
		clicked++
		s.AppendBodyHTML(`<img src="late.jpg">`)
	}

	settler := NewSettler(fastConfig())
	settler.Settle(context.Background(), s)

	if clicked == 0 {
		t.Fatal("expected load-more affordance to be clicked")
	}
	imgs, _ := s.QueryAll(context.Background(), "img")
	if len(imgs) < 2 {
		t.Errorf("expected load-more content to appear, got %d images", len(imgs))
	}
}

func TestSettle_ContextCancelled(t *testing.T) {
	s, err := page.NewSnapshot(`<html><body><img src="a.jpg"></body></html>`, "https://shop.example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	settler := NewSettler(fastConfig())
	if steps := settler.Settle(ctx, s); steps != 0 {
		t.Errorf("expected no steps under cancelled context, got %d", steps)
	}
}

func TestNewSettler_FillsDefaults(t *testing.T) {
	settler := NewSettler(Config{})
	if settler.cfg.Increment != 800 {
		t.Errorf("expected default increment 800, got %g", settler.cfg.Increment)
	}
	if settler.cfg.StallLimit != 5 {
		t.Errorf("expected default stall limit 5, got %d", settler.cfg.StallLimit)
	}
	if settler.cfg.ContentSelector != "img" {
		t.Errorf("expected default content selector img, got %q", settler.cfg.ContentSelector)
	}
}
