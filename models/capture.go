package models

import "sync"

// CaptureSet collects network request URLs observed during a single page
// visit. Each fetch owns an independent set for its lifetime: a set is empty
// at fetch start by construction and is never shared across visits, so
// concurrent fetches cannot corrupt each other's attribution.
//
// Insertion is idempotent and insertion order is preserved so the extraction
// pipeline sees captures in arrival order. Safe for concurrent use: the
// hijack router's goroutine inserts while the pipeline reads.
type CaptureSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewCaptureSet returns a fresh, empty capture set.
func NewCaptureSet() *CaptureSet {
	return &CaptureSet{seen: make(map[string]struct{})}
}

// Add records a URL. Duplicates are ignored.
func (c *CaptureSet) Add(url string) {
	if url == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[url]; ok {
		return
	}
	c.seen[url] = struct{}{}
	c.order = append(c.order, url)
}

// Snapshot returns the captured URLs in arrival order.
func (c *CaptureSet) Snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of distinct captured URLs.
func (c *CaptureSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
