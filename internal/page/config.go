package page

import "time"

// DefaultUserAgent mimics a recent desktop Chrome to blend in with regular
// traffic.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Config holds browser session settings.
type Config struct {
	// UserAgent overrides the browser's user agent string.
	UserAgent string

	// Headless runs Chrome without a visible window.
	Headless bool

	// Stealth applies anti-detection flags and injects the fingerprint
	// patch script before page scripts run.
	Stealth bool

	// NavTimeout bounds page navigation.
	NavTimeout time.Duration

	// OpTimeout bounds individual DOM operations (query, read, click).
	OpTimeout time.Duration

	// ChromePath overrides automatic Chrome binary discovery.
	ChromePath string

	// WindowWidth and WindowHeight set the browser viewport.
	WindowWidth  int
	WindowHeight int
}

// DefaultConfig returns sensible browser defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:    DefaultUserAgent,
		Headless:     true,
		Stealth:      true,
		NavTimeout:   60 * time.Second,
		OpTimeout:    15 * time.Second,
		WindowWidth:  1920,
		WindowHeight: 1080,
	}
}
