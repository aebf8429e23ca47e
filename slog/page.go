package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Ensure LoggingPage implements linkcrawl.Page.
var _ linkcrawl.Page = (*LoggingPage)(nil)

// LoggingPage wraps a Page with debug logging.
type LoggingPage struct {
	next   linkcrawl.Page
	logger *slog.Logger
}

// NewLoggingPage creates a new LoggingPage.
func NewLoggingPage(next linkcrawl.Page, logger *slog.Logger) *LoggingPage {
	return &LoggingPage{next: next, logger: logger}
}

// Navigate logs the URL being loaded and delegates to the wrapped page.
func (p *LoggingPage) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Navigate(ctx, url)
}

// AnchorHrefs logs the number of anchors found and delegates to the wrapped page.
func (p *LoggingPage) AnchorHrefs(ctx context.Context) (hrefs []string, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("anchors",
			"count", len(hrefs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.AnchorHrefs(ctx)
}
