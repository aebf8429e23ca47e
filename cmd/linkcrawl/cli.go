package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/crawl"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL          string        `arg:"" optional:"" help:"Starting URL (prompted for when omitted)"`
	Concurrency  int           `short:"c" default:"16" help:"Maximum simultaneous link checks"`
	CheckTimeout time.Duration `default:"30s" help:"Timeout per link check (0 disables)"`
	NavTimeout   time.Duration `default:"30s" help:"Timeout per page load"`
	Retries      int           `default:"0" help:"Extra attempts for pages that fail to load"`
	MaxPages     int           `default:"0" help:"Stop after this many pages (0 means no limit)"`
	NoBrowser    bool          `help:"Load pages over plain HTTP instead of headless Chrome"`
	Sitemap      bool          `help:"Also queue same-origin URLs listed in the site's sitemaps"`
	CheckOnce    bool          `help:"Check each distinct link once instead of once per page"`
	NoColor      bool          `help:"Disable colored output"`
	Verbose      bool          `short:"v" help:"Log debug details to stderr"`
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Browser  linkcrawl.Browser
	Page     linkcrawl.Page
	Checker  linkcrawl.StatusChecker
	Sitemaps linkcrawl.SitemapService
	Reporter linkcrawl.Reporter
}

// CrawlCmd crawls a single session.
type CrawlCmd struct {
	Session     *crawl.Session
	Concurrency int
	Retries     int
	MaxPages    int
	CheckOnce   bool
}

// Run crawls the session to completion. Per-page and per-link failures are
// reported through deps.Reporter and never returned.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	opts := []crawl.VerifierOption{crawl.WithConcurrency(c.Concurrency)}
	if c.CheckOnce {
		opts = append(opts, crawl.WithCheckOnce())
	}

	crawler := &crawl.Crawler{
		Page:        deps.Page,
		Verifier:    crawl.NewVerifier(deps.Checker, deps.Reporter, opts...),
		Reporter:    deps.Reporter,
		Logger:      deps.Logger,
		Sitemaps:    deps.Sitemaps,
		RetryDelays: crawl.RetryDelays(c.Retries),
		MaxPages:    c.MaxPages,
	}

	_, err := crawler.Crawl(deps.Ctx, c.Session)
	return err
}
