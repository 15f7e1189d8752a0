package scrape

import "testing"

func TestDetectBlocking_FindsIndicator(t *testing.T) {
	html := `<html><body><h1>Access Denied</h1><p>Please disable your VPN.</p></body></html>`
	if got := DetectBlocking(html); got != "vpn" && got != "access denied" {
		t.Fatalf("expected a blocking indicator, got %q", got)
	}
}

func TestDetectBlocking_CleanPage(t *testing.T) {
	html := `<html><body><div class="product-card">Milk $2.99</div></body></html>`
	if got := DetectBlocking(html); got != "" {
		t.Fatalf("clean page flagged as blocking: %q", got)
	}
}

func TestLooksLikeProductListing(t *testing.T) {
	listing := `<html><body><div class="product">Cereal</div><span class="price">$3.49</span></body></html>`
	if !LooksLikeProductListing("https://shop.example.com/aisle/cereal", listing, "shop.example.com") {
		t.Fatal("real listing not recognized")
	}
}

func TestLooksLikeProductListing_WrongURL(t *testing.T) {
	listing := `<html><body><div class="product">Cereal $3.49</div></body></html>`
	if LooksLikeProductListing("https://other.example.net/blog", listing, "shop.example.com") {
		t.Fatal("foreign URL accepted as listing")
	}
}

func TestLooksLikeProductListing_NoIndicators(t *testing.T) {
	page := `<html><body><article>Company history and press releases.</article></body></html>`
	if LooksLikeProductListing("https://shop.example.com/about-us-page", page, "shop.example.com") {
		t.Fatal("content without product indicators accepted")
	}
}
