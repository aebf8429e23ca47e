// Package slog provides log/slog decorators for linkcrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Ensure LoggingChecker implements linkcrawl.StatusChecker.
var _ linkcrawl.StatusChecker = (*LoggingChecker)(nil)

// LoggingChecker wraps a StatusChecker with debug logging.
type LoggingChecker struct {
	next   linkcrawl.StatusChecker
	logger *slog.Logger
}

// NewLoggingChecker creates a new LoggingChecker.
func NewLoggingChecker(next linkcrawl.StatusChecker, logger *slog.Logger) *LoggingChecker {
	return &LoggingChecker{next: next, logger: logger}
}

// CheckStatus delegates to the wrapped checker and logs the outcome.
func (c *LoggingChecker) CheckStatus(ctx context.Context, link string) (code int, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("check",
			"link", link,
			"status", code,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.CheckStatus(ctx, link)
}
