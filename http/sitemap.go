package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/linkcrawl"
)

// maxSitemapDepth bounds how deeply sitemap indexes may nest.
const maxSitemapDepth = 5

// Ensure SitemapService implements linkcrawl.SitemapService.
var _ linkcrawl.SitemapService = (*SitemapService)(nil)

// SitemapService lists the page URLs a site publishes in its sitemaps.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns every page URL listed in the sitemaps of baseURL's
// host, in document order and without duplicates. Sitemaps are located
// through robots.txt Sitemap directives, falling back to /sitemap.xml.
// A site without sitemaps yields an empty, non-nil slice.
//
// URLs are returned as listed; callers decide which ones are in scope.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "invalid base URL: %q", baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemaps, err := s.locate(ctx, root)
	if err != nil {
		return nil, err
	}

	w := &sitemapWalk{svc: s, visited: make(map[string]bool), listed: make(map[string]bool), urls: []string{}}
	for _, sm := range sitemaps {
		if err := w.read(ctx, sm, 0); err != nil {
			return nil, err
		}
	}
	return w.urls, nil
}

// locate returns the sitemap URLs for the site rooted at root.
func (s *SitemapService) locate(ctx context.Context, root *url.URL) ([]string, error) {
	robots := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if sitemaps, err := s.robotsSitemaps(ctx, robots); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	ok, err := s.exists(ctx, fallback)
	if err != nil {
		// Anything but cancellation means there is no sitemap to read.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return []string{fallback}, nil
}

// robotsSitemaps reads the Sitemap directives of a robots.txt file.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < len(directive) || !strings.EqualFold(line[:len(directive)], directive) {
			continue
		}
		if loc := strings.TrimSpace(line[len(directive):]); loc != "" {
			sitemaps = append(sitemaps, loc)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// sitemapWalk accumulates page URLs across a tree of sitemaps.
type sitemapWalk struct {
	svc     *SitemapService
	visited map[string]bool // sitemap documents already read
	listed  map[string]bool // page URLs already collected
	urls    []string
}

// read parses one sitemap document, following <sitemapindex> entries.
func (w *sitemapWalk) read(ctx context.Context, sitemapURL string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.visited[sitemapURL] || depth > maxSitemapDepth {
		return nil
	}
	w.visited[sitemapURL] = true

	body, err := w.svc.get(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		for _, child := range locs(root, "sitemap") {
			if err := w.read(ctx, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, page := range locs(root, "url") {
		if !w.listed[page] {
			w.listed[page] = true
			w.urls = append(w.urls, page)
		}
	}
	return nil
}

// locs returns the trimmed <loc> text of every tag child of root.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// get returns the body of a 200 response.
func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

// exists reports whether a HEAD request for target returns 200.
func (s *SitemapService) exists(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
