// Package crawler discovers category listing pages from a storefront
// homepage and expands each category through its pagination, producing the
// ordered set of page URLs a scrape run visits.
package crawler

import (
	"net/url"
	"sync"
)

// URLQueue is a FIFO of page URLs with visited-set deduplication. URLs are
// normalized before comparison, so fragment and trailing-slash variants of
// an already queued page are rejected.
type URLQueue struct {
	mu      sync.Mutex
	queue   []string
	visited map[string]bool
}

// NewURLQueue creates an empty queue.
func NewURLQueue() *URLQueue {
	return &URLQueue{visited: make(map[string]bool)}
}

// Add queues a URL unless it was seen before. Returns whether it was queued.
func (q *URLQueue) Add(rawURL string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	normalized := normalizeURL(rawURL)
	if normalized == "" {
		return false
	}
	if q.visited[normalized] {
		return false
	}
	q.visited[normalized] = true
	q.queue = append(q.queue, normalized)
	return true
}

// Pop removes and returns the oldest queued URL.
func (q *URLQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return "", false
	}
	u := q.queue[0]
	q.queue = q.queue[1:]
	return u, true
}

// Len returns the number of queued URLs.
func (q *URLQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Seen reports whether a URL was ever queued.
func (q *URLQueue) Seen(rawURL string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.visited[normalizeURL(rawURL)]
}

// normalizeURL strips the fragment and any trailing slash so trivially
// different spellings of the same page compare equal. Returns "" for
// unparseable input.
func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parsed.Fragment = ""
	if len(parsed.Path) > 1 && parsed.Path[len(parsed.Path)-1] == '/' {
		parsed.Path = parsed.Path[:len(parsed.Path)-1]
	}
	return parsed.String()
}

// IsSameDomain reports whether two URLs share a host.
func IsSameDomain(url1, url2 string) bool {
	p1, err := url.Parse(url1)
	if err != nil {
		return false
	}
	p2, err := url.Parse(url2)
	if err != nil {
		return false
	}
	return p1.Host == p2.Host
}
