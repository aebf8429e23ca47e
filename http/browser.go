package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/goquery"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultNavigationTimeout bounds a single page load.
	DefaultNavigationTimeout = 30 * time.Second

	// maxPageBytes caps the size of a loaded document.
	maxPageBytes = 10 << 20
)

// Ensure types implement the linkcrawl interfaces at compile time.
var (
	_ linkcrawl.Browser = (*Browser)(nil)
	_ linkcrawl.Page    = (*Page)(nil)
)

// Browser loads pages with plain HTTP requests. Unlike rod.Browser it does
// not execute JavaScript, so anchors created by scripts are not seen.
type Browser struct {
	client    *http.Client
	userAgent string
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithNavigationTimeout sets the timeout for each page load.
// Defaults to DefaultNavigationTimeout.
func WithNavigationTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		b.client.Timeout = d
	}
}

// WithBrowserUserAgent sets the User-Agent header sent with page loads.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithBrowserTransport replaces the client transport.
func WithBrowserTransport(rt http.RoundTripper) BrowserOption {
	return func(b *Browser) {
		b.client.Transport = rt
	}
}

// NewBrowser creates a new static Browser.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		client:    &http.Client{Timeout: DefaultNavigationTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewPage returns an empty page sharing the browser's client.
func (b *Browser) NewPage() (linkcrawl.Page, error) {
	return &Page{client: b.client, userAgent: b.userAgent}, nil
}

// Close is a no-op; http.Client needs no explicit cleanup.
func (b *Browser) Close() error {
	return nil
}

// Page holds the last document loaded over HTTP. It is not safe for
// concurrent use.
type Page struct {
	client    *http.Client
	userAgent string

	url  string // final URL after redirects
	body []byte // UTF-8 document
}

// Navigate GETs url and keeps the decoded body. Error statuses such as 404
// still count as a load, as they do in a real browser; only requests that
// produce no response fail, with an ENAVIGATION error.
func (p *Page) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "%v", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return context.Canceled
		}
		return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "%s", transportReason(err))
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "decoding %s: %v", url, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "reading %s: %v", url, err)
	}

	p.url = resp.Request.URL.String()
	p.body = body
	return nil
}

// AnchorHrefs returns the hrefs of every anchor in the loaded document,
// resolved against the document's final URL.
func (p *Page) AnchorHrefs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.url == "" {
		return nil, linkcrawl.Errorf(linkcrawl.ENAVIGATION, "no page loaded")
	}
	hrefs, err := goquery.ExtractHrefs(bytes.NewReader(p.body), p.url)
	if err != nil {
		return nil, fmt.Errorf("extracting anchors from %s: %w", p.url, err)
	}
	return hrefs, nil
}
