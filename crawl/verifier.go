package crawl

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/bloom"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the default number of simultaneous status checks.
	DefaultConcurrency = 16

	// checkOnceExpectedLinks sizes the check-once Bloom filter.
	checkOnceExpectedLinks = 100000
	// checkOnceFalsePositiveRate is the rate at which the Bloom filter
	// defers to the exact set.
	checkOnceFalsePositiveRate = 0.001
)

// Verifier runs status checks on a bounded pool of workers.
//
// Dispatch and Wait must be called from the same goroutine; the crawl loop
// is the only producer. Dispatch blocks only while the pool is saturated.
type Verifier struct {
	checker  linkcrawl.StatusChecker
	reporter linkcrawl.Reporter

	concurrency int
	once        *bloom.Filter

	group   errgroup.Group
	checked atomic.Int64
	broken  atomic.Int64
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithConcurrency sets the maximum number of in-flight status checks.
// Defaults to DefaultConcurrency; values below 1 are ignored.
func WithConcurrency(n int) VerifierOption {
	return func(v *Verifier) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithCheckOnce skips links that were already checked earlier in the run.
func WithCheckOnce() VerifierOption {
	return func(v *Verifier) {
		v.once = bloom.NewFilter(checkOnceExpectedLinks, checkOnceFalsePositiveRate)
	}
}

// NewVerifier creates a Verifier that checks links with checker and hands
// each outcome to reporter.
func NewVerifier(checker linkcrawl.StatusChecker, reporter linkcrawl.Reporter, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		checker:     checker,
		reporter:    reporter,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.group.SetLimit(v.concurrency)
	return v
}

// Dispatch schedules one status check per link.
// Outcomes are reported asynchronously and in no particular order.
func (v *Verifier) Dispatch(ctx context.Context, links []string) {
	for _, link := range links {
		if v.once != nil && v.once.Seen(link) {
			continue
		}
		v.group.Go(func() error {
			v.reporter.LinkChecked(v.check(ctx, link))
			return nil
		})
	}
}

// Wait blocks until every dispatched check has completed.
func (v *Verifier) Wait() {
	_ = v.group.Wait()
}

// Checked returns the number of completed checks.
func (v *Verifier) Checked() int {
	return int(v.checked.Load())
}

// Distinct returns the number of distinct links dispatched under
// WithCheckOnce, or zero when every occurrence is checked.
func (v *Verifier) Distinct() int {
	if v.once == nil {
		return 0
	}
	return v.once.Len()
}

// Broken returns the number of completed checks that were not a plain 200.
func (v *Verifier) Broken() int {
	return int(v.broken.Load())
}

func (v *Verifier) check(ctx context.Context, link string) linkcrawl.LinkStatus {
	code, err := v.checker.CheckStatus(ctx, link)
	status := linkcrawl.LinkStatus{URL: link, StatusCode: code, Err: err}

	v.checked.Add(1)
	if !status.OK() {
		v.broken.Add(1)
	}
	return status
}
