package page

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
)

// Browser drives a headless Chrome tab over the DevTools protocol. It
// implements Page. One Browser owns one tab; all calls are sequential.
type Browser struct {
	cfg         Config
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	closed      bool
}

// NewBrowser starts a Chrome instance and opens a tab.
func NewBrowser(cfg Config) (*Browser, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.NavTimeout == 0 {
		cfg.NavTimeout = DefaultConfig().NavTimeout
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = DefaultConfig().OpTimeout
	}
	if cfg.WindowWidth == 0 || cfg.WindowHeight == 0 {
		cfg.WindowWidth = DefaultConfig().WindowWidth
		cfg.WindowHeight = DefaultConfig().WindowHeight
	}

	var opts []chromedp.ExecAllocatorOption
	if cfg.Stealth {
		opts = append(chromedp.DefaultExecAllocatorOptions[:], stealthAllocatorOptions(cfg)...)
	} else {
		opts = append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		)
	}

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	opts = append(opts, chromedp.UserAgent(cfg.UserAgent))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	logger.Debug("browser created",
		"stealth", cfg.Stealth,
		"headless", cfg.Headless,
		"chrome_path", chromePath)

	return &Browser{
		cfg:         cfg,
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
	}, nil
}

// run executes chromedp actions on the tab, bounded by the given timeout and
// by the caller's context.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(b.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL, injecting the stealth script first when enabled.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	actions := []chromedp.Action{}
	if b.cfg.Stealth {
		actions = append(actions, injectStealthScript())
	}
	actions = append(actions, chromedp.Navigate(url))

	logger.Debug("navigating", "url", url, "stealth", b.cfg.Stealth)
	if err := b.run(ctx, b.cfg.NavTimeout, actions...); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitReady blocks until the document body exists or the timeout elapses.
func (b *Browser) WaitReady(ctx context.Context, timeout time.Duration) error {
	if timeout == 0 {
		timeout = b.cfg.NavTimeout
	}
	// WaitVisible has a bug causing infinite polling, WaitReady is reliable.
	if err := b.run(ctx, timeout, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("page not ready: %w", err)
	}
	return nil
}

// QueryAll returns handles for every element matching the CSS selector.
func (b *Browser) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	nodes, err := b.nodes(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &browserElement{b: b, node: n})
	}
	return els, nil
}

// ScrollTo sets the window scroll position.
func (b *Browser) ScrollTo(ctx context.Context, x, y float64) error {
	js := fmt.Sprintf("window.scrollTo(%g, %g)", x, y)
	return b.run(ctx, b.cfg.OpTimeout, chromedp.Evaluate(js, nil))
}

// ScrollToBottom scrolls to the full document height.
func (b *Browser) ScrollToBottom(ctx context.Context, smooth bool) error {
	js := "window.scrollTo(0, document.body.scrollHeight)"
	if smooth {
		js = "window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})"
	}
	return b.run(ctx, b.cfg.OpTimeout, chromedp.Evaluate(js, nil))
}

// ScrollOffset returns the current window scroll position.
func (b *Browser) ScrollOffset(ctx context.Context) Offset {
	var off Offset
	js := "({x: window.pageXOffset, y: window.pageYOffset})"
	if err := b.run(ctx, b.cfg.OpTimeout, chromedp.Evaluate(js, &off)); err != nil {
		logger.Debug("scroll offset read failed", "error", err)
	}
	return off
}

// ScrollHeight returns the total document height.
func (b *Browser) ScrollHeight(ctx context.Context) float64 {
	var h float64
	if err := b.run(ctx, b.cfg.OpTimeout, chromedp.Evaluate("document.body.scrollHeight", &h)); err != nil {
		logger.Debug("scroll height read failed", "error", err)
	}
	return h
}

// CurrentURL returns the tab's current location.
func (b *Browser) CurrentURL(ctx context.Context) string {
	var u string
	if err := b.run(ctx, b.cfg.OpTimeout, chromedp.Location(&u)); err != nil {
		logger.Debug("location read failed", "error", err)
	}
	return u
}

// Title returns the document title.
func (b *Browser) Title(ctx context.Context) string {
	var t string
	if err := b.run(ctx, b.cfg.OpTimeout, chromedp.Title(&t)); err != nil {
		logger.Debug("title read failed", "error", err)
	}
	return t
}

// HTML returns the full serialized document.
func (b *Browser) HTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, b.cfg.OpTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return html, nil
}

// Eval executes JavaScript in the page and unmarshals the result into out.
func (b *Browser) Eval(ctx context.Context, js string, out any) error {
	return b.run(ctx, b.cfg.OpTimeout, chromedp.Evaluate(js, out))
}

// Close shuts down the tab and the Chrome process.
func (b *Browser) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancelTab()
	b.cancelAlloc()
	return nil
}
