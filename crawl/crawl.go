// Package crawl provides same-origin crawling orchestration.
// It walks a site's internal link graph one page at a time through a
// single browser page and verifies every discovered link concurrently.
package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Crawler walks a site starting from a seed URL.
//
// Page is owned exclusively by the Crawler for the duration of a run and
// is used strictly sequentially. Verifier only ever sees link strings.
type Crawler struct {
	Page     linkcrawl.Page
	Verifier *Verifier
	Reporter linkcrawl.Reporter
	Logger   *slog.Logger

	// Sitemaps, if set, seeds the frontier with same-origin sitemap URLs.
	Sitemaps linkcrawl.SitemapService

	// RetryDelays are waited between navigation attempts. Nil means a
	// single attempt per URL.
	RetryDelays []time.Duration

	// MaxPages stops the crawl after that many pages loaded. Zero means no limit.
	MaxPages int
}

// Run creates a session for seed and crawls it until the frontier is empty.
// The returned error is non-nil only when the seed URL is unusable.
func (c *Crawler) Run(ctx context.Context, seed string) (*linkcrawl.Summary, error) {
	session, err := NewSession(seed)
	if err != nil {
		return nil, err
	}
	return c.Crawl(ctx, session)
}

// Crawl processes the session's frontier in FIFO order until it is empty,
// MaxPages pages have loaded, or ctx is canceled. It waits for all status
// checks to complete before reporting the summary.
//
// Failures of individual pages are reported and never abort the crawl.
func (c *Crawler) Crawl(ctx context.Context, session *Session) (*linkcrawl.Summary, error) {
	logger := c.logger().With("session", session.ID)
	logger.Info("crawl started", "seed", session.Seed, "origin", session.Origin)

	if c.Sitemaps != nil {
		c.seedFromSitemaps(ctx, session, logger)
	}

	var summary linkcrawl.Summary
	begin := time.Now()

	for ctx.Err() == nil {
		if c.MaxPages > 0 && summary.Visited >= c.MaxPages {
			logger.Info("page limit reached", "max_pages", c.MaxPages, "queued", session.Frontier.Len())
			break
		}

		current, ok := session.Frontier.Pop()
		if !ok {
			break
		}

		// A URL may have been queued again before its first visit completed.
		if session.Visited.Contains(current) {
			continue
		}

		if err := c.visit(ctx, session, logger, current, &summary); err != nil {
			summary.Failed++
			c.handleError(ctx, logger, current, err)
		}
	}

	c.Verifier.Wait()
	summary.Checked = c.Verifier.Checked()
	summary.Broken = c.Verifier.Broken()

	logger.Info("crawl finished",
		"visited", summary.Visited,
		"failed", summary.Failed,
		"checked", summary.Checked,
		"broken", summary.Broken,
		"distinct", c.Verifier.Distinct(),
		"duration", time.Since(begin),
	)
	c.Reporter.Finished(summary)

	return &summary, nil
}

// visit loads a single URL, enqueues its internal links and dispatches
// all of its links for status checks.
func (c *Crawler) visit(ctx context.Context, session *Session, logger *slog.Logger, pageURL string, summary *linkcrawl.Summary) error {
	if err := NavigateWithRetry(ctx, pageURL, c.Page.Navigate, logger, c.RetryDelays); err != nil {
		return err
	}

	session.Visited.Add(pageURL)
	summary.Visited++
	c.Reporter.PageStarted(pageURL)

	links, err := ExtractLinks(ctx, c.Page, pageURL)
	if err != nil {
		return err
	}

	for _, link := range links {
		session.Enqueue(link)
	}

	c.Verifier.Dispatch(ctx, links)
	return nil
}

// handleError classifies a per-page failure, logs it and reports it.
// No per-page error is fatal to the crawl.
func (c *Crawler) handleError(ctx context.Context, logger *slog.Logger, pageURL string, err error) {
	switch {
	case ctx.Err() != nil:
		logger.Debug("page abandoned", "url", pageURL, "err", err)
	case linkcrawl.ErrorCode(err) == linkcrawl.ENAVIGATION:
		logger.Warn("page failed to load", "url", pageURL, "reason", linkcrawl.ErrorMessage(err))
	default:
		logger.Error("page failed", "url", pageURL, "code", linkcrawl.ErrorCode(err), "err", err)
	}
	c.Reporter.PageFailed(pageURL, err)
}

// seedFromSitemaps pushes same-origin sitemap URLs behind the seed.
// Discovery failures are logged and otherwise ignored.
func (c *Crawler) seedFromSitemaps(ctx context.Context, session *Session, logger *slog.Logger) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, session.Seed)
	if err != nil {
		logger.Warn("sitemap discovery failed", "url", session.Seed, "err", err)
		return
	}

	added := 0
	for _, u := range urls {
		if session.Enqueue(u) {
			added++
		}
	}
	logger.Info("sitemap seeded frontier", "found", len(urls), "added", added)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
