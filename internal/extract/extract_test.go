package extract

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/page"
)

func testExtractor() *Extractor {
	return NewExtractor(Config{BaseURL: "https://www.shop.example.com"})
}

// candidate parses markup and returns the first element matching sel.
func candidate(t *testing.T, markup, sel string) page.Element {
	t.Helper()
	s, err := page.NewSnapshot(markup, "https://www.shop.example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	els, err := s.QueryAll(context.Background(), sel)
	if err != nil || len(els) == 0 {
		t.Fatalf("no candidate for %q", sel)
	}
	return els[0]
}

func TestExtract_FullCard(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card">
			<a href="/product/whole-milk">
				<img src="/images/milk.jpg">
				<span class="product-title">Whole Milk 1 Gallon</span>
				<span class="price">$3.49</span>
			</a>
		</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Title != "Whole Milk 1 Gallon" {
		t.Errorf("title: got %q", rec.Title)
	}
	if rec.Price != "$3.49" {
		t.Errorf("price: got %q", rec.Price)
	}
	if rec.ImageURL != "https://www.shop.example.com/images/milk.jpg" {
		t.Errorf("image: got %q", rec.ImageURL)
	}
	if rec.Hyperlink != "https://www.shop.example.com/product/whole-milk" {
		t.Errorf("hyperlink: got %q", rec.Hyperlink)
	}
}

func TestExtract_PriceOnlyText(t *testing.T) {
	// A candidate whose only text is a price must yield no title but keep
	// the price.
	el := candidate(t, `<html><body><div class="card">$12.99</div></body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Title != "" {
		t.Errorf("expected no title from pure price text, got %q", rec.Title)
	}
	if rec.Price != "$12.99" {
		t.Errorf("price: got %q", rec.Price)
	}
}

func TestExtract_TitleFromTextLines(t *testing.T) {
	el := candidate(t, `<html><body><div class="card">$4.99
Organic Bananas Bunch
In Stock</div></body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Title != "Organic Bananas Bunch" {
		t.Errorf("expected first valid multi-word line, got %q", rec.Title)
	}
}

func TestExtract_TitleSkipsUINoise(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card" aria-label="Organic Fuji Apples 3lb">
			<span class="product-title">Shop Now Deals</span>
		</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Title != "Organic Fuji Apples 3lb" {
		t.Errorf("expected fallback to accessible name, got %q", rec.Title)
	}
}

func TestExtract_TitleTruncated(t *testing.T) {
	long := strings.Repeat("Very Long Product Name ", 10) // 230 chars
	el := candidate(t, `<html><body>
		<div class="card"><h2>`+long[:180]+`</h2></div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if len(rec.Title) != 150 {
		t.Errorf("expected title truncated to 150 chars, got %d", len(rec.Title))
	}
}

func TestExtract_PriceSpacedAndReversedForms(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   string
	}{
		{"spaced", `<div class="card">Special offer $ 7.99 only</div>`, "$ 7.99"},
		{"reversed", `<div class="card">Special offer 7.99 $ only</div>`, "7.99 $"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			el := candidate(t, "<html><body>"+tc.markup+"</body></html>", ".card")
			if rec := testExtractor().Extract(el); rec.Price != tc.want {
				t.Errorf("price: got %q, want %q", rec.Price, tc.want)
			}
		})
	}
}

func TestExtract_PriceFromRawMarkup(t *testing.T) {
	// Price hidden in an attribute-bearing fragment that never renders as
	// element text.
	el := candidate(t, `<html><body>
		<div class="card"><template>$6.49</template></div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Price != "$6.49" {
		t.Errorf("expected price from inner markup, got %q", rec.Price)
	}
}

func TestExtract_HyperlinkRejectsForeignDomain(t *testing.T) {
	el := candidate(t, `<html><body>
		<a class="card" href="https://tracker.example.net/out">Sponsored Thing Here</a>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Hyperlink != "" {
		t.Errorf("expected foreign-domain link rejected, got %q", rec.Hyperlink)
	}
}

func TestExtract_HyperlinkFromDescendant(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card"><a href="/product/eggs-12ct">Large Eggs</a></div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Hyperlink != "https://www.shop.example.com/product/eggs-12ct" {
		t.Errorf("hyperlink: got %q", rec.Hyperlink)
	}
}

func TestExtract_HyperlinkFromClickHandler(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card" onclick="window.location='https://www.shop.example.com/product/bread'">Artisan Bread</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Hyperlink != "https://www.shop.example.com/product/bread" {
		t.Errorf("hyperlink: got %q", rec.Hyperlink)
	}
}

func TestExtract_ImageLazyLoadAttrPriority(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card">
			<img src="/assets/placeholder.gif">
			<img data-src="/images/cheese.jpg">
		</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.ImageURL != "https://www.shop.example.com/images/cheese.jpg" {
		t.Errorf("expected denylisted image skipped, got %q", rec.ImageURL)
	}
}

func TestExtract_ImageSrcsetFirstURL(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card">
			<img data-src="/images/ham-small.jpg 1x, /images/ham-large.jpg 2x">
		</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.ImageURL != "https://www.shop.example.com/images/ham-small.jpg" {
		t.Errorf("expected first srcset URL, got %q", rec.ImageURL)
	}
}

func TestExtract_ImageFromBackgroundStyle(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card" style="background-image: url('/images/promo.jpg')">Seasonal Special Produce</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.ImageURL != "https://www.shop.example.com/images/promo.jpg" {
		t.Errorf("expected background image, got %q", rec.ImageURL)
	}
}

func TestRecord_HasEvidence(t *testing.T) {
	if (Record{Hyperlink: "https://shop.example.com/product/x"}).HasEvidence() {
		t.Error("hyperlink alone is not product evidence")
	}
	if !(Record{Price: "$1.00"}).HasEvidence() {
		t.Error("price is product evidence")
	}
	if (Record{}).HasEvidence() {
		t.Error("empty record has no evidence")
	}
}

func TestRecord_DedupKey(t *testing.T) {
	r := Record{Title: "Brand X Cereal 12oz", Hyperlink: "https://shop.example.com/product/cereal"}
	if r.DedupKey() != r.Hyperlink {
		t.Error("hyperlink must win as dedup key")
	}
	r.Hyperlink = ""
	if r.DedupKey() != "Brand X Cereal 12oz" {
		t.Error("title must be the fallback dedup key")
	}
}

func TestExtract_HyperlinkRelativeAfterForeignDescendant(t *testing.T) {
	el := candidate(t, `<html><body>
		<div class="card">
			<a href="https://ads.example.net/promo">Sponsored Promo Here</a>
			<a href="/items/alpha-bar">Alpha Granola Bar</a>
		</div>
	</body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Hyperlink != "https://www.shop.example.com/items/alpha-bar" {
		t.Errorf("expected relative link resolved against the site, got %q", rec.Hyperlink)
	}
}

func TestExtract_TitleTruncatesOnCharacters(t *testing.T) {
	x := NewExtractor(Config{BaseURL: "https://www.shop.example.com", TitleMaxLen: 8})
	el := candidate(t, `<html><body>
		<div class="card"><h2>Jalapeño Poppers Party Tray</h2></div>
	</body></html>`, ".card")

	rec := x.Extract(el)
	if !utf8.ValidString(rec.Title) {
		t.Fatalf("truncated title is not valid UTF-8: %q", rec.Title)
	}
	if rec.Title != "Jalapeño" {
		t.Errorf("expected an 8-character cut after the multi-byte rune, got %q", rec.Title)
	}
}

func TestExtract_TitleBoundsCountCharacters(t *testing.T) {
	// 197 characters but 206 bytes, so a byte-counted bound would reject it.
	long := strings.TrimSpace(strings.Repeat("Jalapeño Poppers Tray ", 9))
	el := candidate(t, `<html><body><div class="card"><h2>`+long+`</h2></div></body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Title == "" {
		t.Fatal("expected the long multi-byte title to pass the length bound")
	}
	if n := utf8.RuneCountInString(rec.Title); n != 150 {
		t.Errorf("expected 150-character title, got %d", n)
	}
}

func TestExtract_TitleFallbackKeepsNamesWithUIWords(t *testing.T) {
	el := candidate(t, `<html><body><div class="card">View Details
$8.99
Mountain View Coffee 12oz</div></body></html>`, ".card")

	rec := testExtractor().Extract(el)
	if rec.Title != "Mountain View Coffee 12oz" {
		t.Errorf("expected name containing a bare UI word to survive the text fallback, got %q", rec.Title)
	}
}
