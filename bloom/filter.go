// Package bloom provides link deduplication backed by Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter remembers links that have already been seen.
//
// A Bloom filter answers first sightings without consulting the exact set;
// its positives are confirmed against the set, so Seen never reports a link
// it has not recorded. It is safe for concurrent use by multiple goroutines.
type Filter struct {
	mu   sync.Mutex
	f    *bloom.BloomFilter
	seen map[string]struct{}
}

// NewFilter creates a new Filter whose Bloom filter is sized for n expected
// links with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f:    bloom.NewWithEstimates(n, fpRate),
		seen: make(map[string]struct{}),
	}
}

// Seen records the link and reports whether it was recorded before.
func (f *Filter) Seen(link string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.f.TestAndAddString(link) {
		if _, ok := f.seen[link]; ok {
			return true
		}
	}
	f.seen[link] = struct{}{}
	return false
}

// Len returns the number of distinct links recorded.
func (f *Filter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
