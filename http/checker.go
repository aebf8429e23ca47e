// Package http provides net/http implementations of the linkcrawl
// interfaces: a link status checker, a static (no JavaScript) browser
// and a sitemap reader used to seed crawls.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/linkcrawl"
)

const (
	// DefaultCheckTimeout bounds a single status check.
	DefaultCheckTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler to checked servers.
	DefaultUserAgent = "linkcrawl/1.0 (+https://github.com/fwojciec/linkcrawl)"

	// maxDrainBytes caps how much of a response body is read before the
	// connection is given back to the pool.
	maxDrainBytes = 64 << 10
)

// Ensure StatusChecker implements linkcrawl.StatusChecker at compile time.
var _ linkcrawl.StatusChecker = (*StatusChecker)(nil)

// StatusChecker reports the HTTP status code of a link by issuing a GET.
// Redirects are not followed: a 301 is reported as 301.
//
// StatusChecker is safe for concurrent use by multiple goroutines.
type StatusChecker struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// CheckerOption configures a StatusChecker.
type CheckerOption func(*StatusChecker)

// WithTimeout sets the per-check timeout. Zero disables it.
// Defaults to DefaultCheckTimeout.
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *StatusChecker) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every check.
func WithUserAgent(ua string) CheckerOption {
	return func(c *StatusChecker) {
		c.userAgent = ua
	}
}

// WithTransport replaces the client transport, for example to trust a test
// server's certificate.
func WithTransport(rt http.RoundTripper) CheckerOption {
	return func(c *StatusChecker) {
		c.client.Transport = rt
	}
}

// NewStatusChecker creates a new StatusChecker.
func NewStatusChecker(opts ...CheckerOption) *StatusChecker {
	c := &StatusChecker{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:   DefaultCheckTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client.Timeout = c.timeout
	return c
}

// CheckStatus GETs link and returns the response status code.
// Links that do not start with "http" (which covers https), and any request
// that produces no response, fail with an ETRANSPORT error.
func (c *StatusChecker) CheckStatus(ctx context.Context, link string) (int, error) {
	if !strings.HasPrefix(link, "http") {
		return 0, linkcrawl.Errorf(linkcrawl.ETRANSPORT, "unsupported protocol")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return 0, linkcrawl.Errorf(linkcrawl.ETRANSPORT, "%v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, linkcrawl.Errorf(linkcrawl.ETRANSPORT, "%s", transportReason(err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode, nil
}

// transportReason strips the method and URL that net/http prefixes to
// client errors, since the link is reported next to the reason anyway.
func transportReason(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
