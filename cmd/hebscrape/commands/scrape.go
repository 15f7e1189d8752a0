package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/crawler"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/export"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/locate"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/scrape"
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/scroll"
)

// scrapeOptions aggregates every flag the scrape command accepts; it is
// validated as a whole before anything touches the network.
type scrapeOptions struct {
	URL    string `validate:"required,url"`
	Mode   string `validate:"oneof=dynamic static"`
	Format string `validate:"oneof=json jsonl csv yaml"`
	Output string

	Discover      bool
	MaxCategories int `validate:"gte=0"`
	MaxProducts   int `validate:"gte=0"`

	Headless   bool
	Stealth    bool
	ChromePath string
	Timeout    time.Duration `validate:"gt=0"`

	ScrollIncrement float64       `validate:"gt=0"`
	ScrollPause     time.Duration `validate:"gt=0"`
	MaxScrollSteps  int           `validate:"gt=0"`
	StallLimit      int           `validate:"gt=0"`
	CarouselClicks  int           `validate:"gt=0"`
	SettleWait      time.Duration `validate:"gt=0"`
	PassWait        time.Duration `validate:"gt=0"`
	PageDelay       time.Duration `validate:"gte=0"`

	ExcludePaths []string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape product listings from one or more pages",
	Long: `Scrape product data from dynamic listing pages.

By default the target URL is scraped directly with a headless browser.
With --discover the target is treated as a homepage: category links are
collected from it first and every category (plus its pagination) is
scraped in turn.

Examples:
  # One category page, JSON to stdout
  hebscrape scrape -u "https://www.heb.com/category/snacks"

  # Whole-site crawl, partial results saved on Ctrl-C
  hebscrape scrape -u "https://www.heb.com" --discover -o products.json

  # Tune the scroll loop for a slow site
  hebscrape scrape -u "https://example.com/shop" \
      --scroll-pause 4s --stall-limit 8 --max-scroll-steps 200`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Target
	flags.StringP("url", "u", "", "page or homepage URL to scrape (required)")
	flags.Bool("discover", false, "treat the URL as a homepage and discover categories first")
	flags.Int("max-categories", 0, "max discovered categories to scrape (0=all)")
	flags.Int("max-products", 0, "max candidates examined per extraction pass (0=unlimited)")

	// Output
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, csv, yaml")

	// Browser
	flags.String("mode", "dynamic", "page mode: dynamic (browser) or static (plain fetch)")
	flags.Bool("headless", true, "run the browser headless")
	flags.Bool("stealth", false, "enable anti-bot detection evasion")
	flags.String("chrome-path", "", "path to the Chrome binary (default: auto-detect)")
	flags.Duration("timeout", 60*time.Second, "navigation timeout")

	// Scroll settling
	flags.Float64("scroll-increment", 800, "pixels per scroll step")
	flags.Duration("scroll-pause", 2*time.Second, "pause between scroll steps")
	flags.Int("max-scroll-steps", 100, "hard cap on scroll steps per page")
	flags.Int("stall-limit", 5, "unproductive steps before scroll escalation")
	flags.Int("carousel-clicks", 20, "max arrow clicks per carousel")

	// Pacing
	flags.Duration("settle-wait", 5*time.Second, "wait after navigation and major stages")
	flags.Duration("pass-wait", 3*time.Second, "wait between the two extraction passes")
	flags.Duration("page-delay", 2*time.Second, "delay between pages in a crawl")

	// Filtering
	flags.StringSlice("exclude-path", nil, "URL substrings marking category links to drop (default: /category/, /department/, /shop/)")

	_ = scrapeCmd.MarkFlagRequired("url")
}

func collectOptions(cmd *cobra.Command) scrapeOptions {
	flags := cmd.Flags()
	var opts scrapeOptions
	opts.URL, _ = flags.GetString("url")
	opts.Discover, _ = flags.GetBool("discover")
	opts.MaxCategories, _ = flags.GetInt("max-categories")
	opts.MaxProducts, _ = flags.GetInt("max-products")
	opts.Output, _ = flags.GetString("output")
	opts.Format, _ = flags.GetString("format")
	opts.Mode, _ = flags.GetString("mode")
	opts.Headless, _ = flags.GetBool("headless")
	opts.Stealth, _ = flags.GetBool("stealth")
	opts.ChromePath, _ = flags.GetString("chrome-path")
	opts.Timeout, _ = flags.GetDuration("timeout")
	opts.ScrollIncrement, _ = flags.GetFloat64("scroll-increment")
	opts.ScrollPause, _ = flags.GetDuration("scroll-pause")
	opts.MaxScrollSteps, _ = flags.GetInt("max-scroll-steps")
	opts.StallLimit, _ = flags.GetInt("stall-limit")
	opts.CarouselClicks, _ = flags.GetInt("carousel-clicks")
	opts.SettleWait, _ = flags.GetDuration("settle-wait")
	opts.PassWait, _ = flags.GetDuration("pass-wait")
	opts.PageDelay, _ = flags.GetDuration("page-delay")
	opts.ExcludePaths, _ = flags.GetStringSlice("exclude-path")
	return opts
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	opts := collectOptions(cmd)
	if err := validator.New().Struct(opts); err != nil {
		logError("invalid options: %v", err)
		return fmt.Errorf("invalid options: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Page session
	p, closePage, err := newPage(opts)
	if err != nil {
		logger.Error("failed to start page session", "mode", opts.Mode, "error", err)
		return err
	}
	defer closePage()

	// Pages to visit
	pages := []string{opts.URL}
	if opts.Discover {
		c := crawler.New(crawler.Config{
			Fetch:         crawler.FetchConfig{Timeout: opts.Timeout},
			MaxCategories: opts.MaxCategories,
			Delay:         opts.PageDelay,
		})
		pages, err = c.Plan(ctx, opts.URL)
		if err != nil {
			logger.Warn("crawl planning interrupted", "error", err)
		}
		if len(pages) == 0 {
			pages = []string{opts.URL}
		}
	}

	collected := scrape.NewAccumulator()
	interrupted := false

	for i, pageURL := range pages {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		if i > 0 && opts.PageDelay > 0 {
			pause(ctx, opts.PageDelay)
		}

		runner, err := scrape.NewRunner(p, runConfig(opts, pageURL))
		if err != nil {
			logger.Error("skipping page", "url", pageURL, "error", err)
			continue
		}
		records, err := runner.Run(ctx)
		added := collected.Merge(records)
		logger.Info("page done", "url", pageURL, "new_products", len(added), "total", collected.Len())
		if err != nil {
			if ctx.Err() != nil {
				interrupted = true
				break
			}
			logger.Error("page failed", "url", pageURL, "error", err)
		}
	}

	if interrupted {
		logInfo("\nInterrupted. Saving %s products scraped so far...",
			humanize.Comma(int64(collected.Len())))
	}

	if err := writeResults(opts, collected.Records()); err != nil {
		return err
	}
	printSummary(collected.Records(), len(pages))

	if interrupted {
		return context.Canceled
	}
	return nil
}

// newPage builds the page session for the chosen mode. Static mode runs the
// whole pipeline over plainly fetched markup; nothing lazy-loads there, but
// the locator and extractor still apply.
func newPage(opts scrapeOptions) (page.Page, func(), error) {
	if opts.Mode == "static" {
		f := crawler.NewFetcher(crawler.FetchConfig{Timeout: opts.Timeout})
		snap := &page.Snapshot{Loader: f.Loader()}
		return snap, func() {}, nil
	}

	b, err := page.NewBrowser(page.Config{
		Headless:   opts.Headless,
		Stealth:    opts.Stealth,
		ChromePath: opts.ChromePath,
		NavTimeout: opts.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return b, func() { _ = b.Close() }, nil
}

func runConfig(opts scrapeOptions, pageURL string) scrape.Config {
	return scrape.Config{
		URL:         pageURL,
		MaxProducts: opts.MaxProducts,
		SettleWait:  opts.SettleWait,
		PassWait:    opts.PassWait,
		Scroll: scroll.Config{
			Increment:  opts.ScrollIncrement,
			Pause:      opts.ScrollPause,
			MaxSteps:   opts.MaxScrollSteps,
			StallLimit: opts.StallLimit,
		},
		Carousel: scroll.CarouselConfig{
			MaxArrowClicks: opts.CarouselClicks,
		},
		Locator: locate.Config{
			CategoryExclusions: opts.ExcludePaths,
		},
	}
}

func writeResults(opts scrapeOptions, records []extract.Record) error {
	out := os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", opts.Output, "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	writer, err := export.NewWriter(out, export.Format(opts.Format))
	if err != nil {
		logger.Error("failed to create output writer", "format", opts.Format, "error", err)
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		logger.Error("failed to write output", "error", err)
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	if opts.Output != "" {
		logInfo("Data saved to %s", opts.Output)
	}
	return nil
}

// printSummary reports totals, per-field coverage and a short preview.
func printSummary(records []extract.Record, pages int) {
	total := len(records)
	logInfo("\nScraping summary")
	logInfo("  Pages visited:  %s", humanize.Comma(int64(pages)))
	logInfo("  Unique products: %s", humanize.Comma(int64(total)))
	if total == 0 {
		logInfo("  No products found. The site structure may have changed.")
		return
	}

	var titles, prices, images, links int
	for _, r := range records {
		if r.Title != "" {
			titles++
		}
		if r.Price != "" {
			prices++
		}
		if r.ImageURL != "" {
			images++
		}
		if r.Hyperlink != "" {
			links++
		}
	}
	logInfo("  Titles:     %d/%d (%d%%)", titles, total, titles*100/total)
	logInfo("  Prices:     %d/%d (%d%%)", prices, total, prices*100/total)
	logInfo("  Images:     %d/%d (%d%%)", images, total, images*100/total)
	logInfo("  Hyperlinks: %d/%d (%d%%)", links, total, links*100/total)

	preview := records
	if len(preview) > 5 {
		preview = preview[:5]
	}
	logInfo("\nSample products (first %d):", len(preview))
	for i, r := range preview {
		logInfo("  %d. %s", i+1, orNA(r.Title))
		logInfo("     Price: %s  Image: %s", orNA(r.Price), orNA(shorten(r.ImageURL, 70)))
		logInfo("     Link:  %s", orNA(shorten(r.Hyperlink, 70)))
	}
	if total > 5 {
		logInfo("  ... and %s more products", humanize.Comma(int64(total-5)))
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
