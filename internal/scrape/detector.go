package scrape

import "strings"

// blockingIndicators are content keywords that mark anti-bot interstitials
// and load failures.
var blockingIndicators = []string{
	"ad blocker",
	"antivirus software",
	"vpn",
	"firewall",
	"could not load",
	"access denied",
	"blocked",
	"bot detected",
}

// productIndicators are content keywords expected on a product listing.
var productIndicators = []string{
	"product",
	"price",
	"$",
	"add to cart",
	"buy now",
}

// DetectBlocking checks page content for blocking indicators and returns the
// first one found, or "" when the page looks clean.
func DetectBlocking(html string) string {
	lower := strings.ToLower(html)
	for _, indicator := range blockingIndicators {
		if strings.Contains(lower, indicator) {
			return indicator
		}
	}
	return ""
}

// LooksLikeProductListing reports whether the current URL and page content
// plausibly belong to a product listing: a recognizable path or site domain,
// plus at least two product indicators in the markup.
func LooksLikeProductListing(currentURL, html, siteDomain string) bool {
	lowerURL := strings.ToLower(currentURL)
	urlOK := strings.Contains(lowerURL, "/product") ||
		strings.Contains(lowerURL, "/category") ||
		strings.Contains(lowerURL, "/department") ||
		strings.Contains(lowerURL, "/aisle") ||
		(siteDomain != "" && strings.Contains(lowerURL, siteDomain))
	if !urlOK {
		return false
	}

	lower := strings.ToLower(html)
	found := 0
	for _, indicator := range productIndicators {
		if strings.Contains(lower, indicator) {
			found++
		}
	}
	return found >= 2
}
