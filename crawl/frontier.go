package crawl

import (
	"sync"

	"github.com/fwojciec/linkcrawl"
)

// Compile-time interface verification.
var _ linkcrawl.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO queue of URLs waiting to be visited.
// A URL can be queued at most once at a time; popping it makes it
// eligible to be pushed again.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu     sync.Mutex
	queued map[string]struct{}
	queue  []string
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queued: make(map[string]struct{}),
	}
}

// Push appends a URL to the back of the queue.
// Returns false if the URL is already queued.
func (f *Frontier) Push(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.queued[url]; ok {
		return false
	}
	f.queued[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop removes and returns the URL at the front of the queue.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	delete(f.queued, url)
	return url, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Contains returns true if the URL is currently queued.
func (f *Frontier) Contains(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.queued[url]
	return ok
}

// VisitedSet records URLs that loaded successfully.
// It only grows for the lifetime of a crawl.
// It is safe for concurrent use by multiple goroutines.
type VisitedSet struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add marks the URL as visited.
// Returns false if it was already visited.
func (v *VisitedSet) Add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	return true
}

// Contains returns true if the URL has been visited.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.urls[url]
	return ok
}

// Len returns the number of visited URLs.
func (v *VisitedSet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.urls)
}
