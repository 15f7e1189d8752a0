package crawler

import (
	"fmt"
	"sync"
	"testing"
)

func TestURLQueue_AddAndPopFIFO(t *testing.T) {
	q := NewURLQueue()
	urls := []string{
		"https://shop.example.com/aisle/dairy",
		"https://shop.example.com/aisle/bakery",
		"https://shop.example.com/aisle/produce",
	}
	for _, u := range urls {
		if !q.Add(u) {
			t.Fatalf("Add(%q) returned false for a new URL", u)
		}
	}
	for i, want := range urls {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() empty at index %d", i)
		}
		if got != want {
			t.Fatalf("Pop() = %q, want %q", got, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop() on drained queue returned ok")
	}
}

func TestURLQueue_RejectsDuplicates(t *testing.T) {
	q := NewURLQueue()
	q.Add("https://shop.example.com/aisle/dairy")

	if q.Add("https://shop.example.com/aisle/dairy") {
		t.Fatal("duplicate URL accepted")
	}
	if q.Add("https://shop.example.com/aisle/dairy/") {
		t.Fatal("trailing-slash variant accepted")
	}
	if q.Add("https://shop.example.com/aisle/dairy#top") {
		t.Fatal("fragment variant accepted")
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 queued URL, got %d", q.Len())
	}
}

func TestURLQueue_RejectsInvalidURL(t *testing.T) {
	q := NewURLQueue()
	if q.Add("://invalid") {
		t.Fatal("unparseable URL accepted")
	}
}

func TestURLQueue_Seen(t *testing.T) {
	q := NewURLQueue()
	q.Add("https://shop.example.com/aisle/dairy")
	q.Pop()

	if !q.Seen("https://shop.example.com/aisle/dairy") {
		t.Fatal("popped URL forgotten")
	}
	if q.Seen("https://shop.example.com/aisle/frozen") {
		t.Fatal("never-queued URL reported seen")
	}
}

func TestURLQueue_ConcurrentAccess(t *testing.T) {
	q := NewURLQueue()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Add(fmt.Sprintf("https://shop.example.com/page%d", n%10))
			q.Pop()
			q.Seen("https://shop.example.com/page0")
		}(i)
	}
	wg.Wait()
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://shop.example.com/page#section", "https://shop.example.com/page"},
		{"https://shop.example.com/page/", "https://shop.example.com/page"},
		{"https://shop.example.com/", "https://shop.example.com/"},
		{"://invalid", ""},
	}
	for _, tt := range tests {
		if got := normalizeURL(tt.input); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsSameDomain(t *testing.T) {
	tests := []struct {
		url1, url2 string
		want       bool
	}{
		{"https://shop.example.com/a", "https://shop.example.com/b", true},
		{"http://shop.example.com/", "https://shop.example.com/", true},
		{"https://shop.example.com/", "https://other.example.net/", false},
		{"https://www.shop.example.com/", "https://shop.example.com/", false},
		{"://invalid", "https://shop.example.com/", false},
	}
	for _, tt := range tests {
		if got := IsSameDomain(tt.url1, tt.url2); got != tt.want {
			t.Errorf("IsSameDomain(%q, %q) = %v, want %v", tt.url1, tt.url2, got, tt.want)
		}
	}
}
