package crawl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/crawl"
	"github.com/fwojciec/linkcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSite serves a fixed link graph through a mock page.
type fakeSite struct {
	links   map[string][]string // page URL -> anchor hrefs
	broken  map[string]bool     // pages whose navigation fails
	current string

	mu        sync.Mutex
	navigated []string
}

func (s *fakeSite) page() *mock.Page {
	return &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error {
			s.mu.Lock()
			s.navigated = append(s.navigated, url)
			s.mu.Unlock()
			if s.broken[url] {
				return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "net::ERR_CONNECTION_REFUSED at %s", url)
			}
			if _, ok := s.links[url]; !ok {
				return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "net::ERR_NAME_NOT_RESOLVED at %s", url)
			}
			s.current = url
			return nil
		},
		AnchorHrefsFn: func(ctx context.Context) ([]string, error) {
			return s.links[s.current], nil
		},
	}
}

// recorder captures reporter events.
type recorder struct {
	mu       sync.Mutex
	started  []string
	failed   map[string]error
	checked  []string
	summary  *linkcrawl.Summary
	finished int
}

func newRecorder() *recorder {
	return &recorder{failed: make(map[string]error)}
}

func (r *recorder) reporter() *mock.Reporter {
	return &mock.Reporter{
		PageStartedFn: func(url string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.started = append(r.started, url)
		},
		PageFailedFn: func(url string, err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failed[url] = err
		},
		LinkCheckedFn: func(status linkcrawl.LinkStatus) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.checked = append(r.checked, status.URL)
		},
		FinishedFn: func(summary linkcrawl.Summary) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.summary = &summary
			r.finished++
		},
	}
}

func (r *recorder) checkedLinks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.checked...)
	sort.Strings(out)
	return out
}

func okChecker() *mock.StatusChecker {
	return &mock.StatusChecker{
		CheckStatusFn: func(ctx context.Context, link string) (int, error) {
			return 200, nil
		},
	}
}

func newCrawler(page linkcrawl.Page, checker linkcrawl.StatusChecker, rec *recorder) *crawl.Crawler {
	reporter := rec.reporter()
	return &crawl.Crawler{
		Page:     page,
		Verifier: crawl.NewVerifier(checker, reporter),
		Reporter: reporter,
	}
}

func TestCrawler_Run_EnqueuesInternalLinksAndChecksAll(t *testing.T) {
	t.Parallel()

	site := &fakeSite{links: map[string][]string{
		"https://example.com/":  {"/a", "/b", "https://other.com/x"},
		"https://example.com/a": {},
		"https://example.com/b": {},
	}}
	rec := newRecorder()
	c := newCrawler(site.page(), okChecker(), rec)

	summary, err := c.Run(context.Background(), "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/a",
		"https://example.com/b",
	}, site.navigated, "internal links visited in FIFO order, external never loaded")
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://other.com/x",
	}, rec.checkedLinks(), "internal and external links are all checked")
	assert.Equal(t, linkcrawl.Summary{Visited: 3, Checked: 3}, *summary)
}

func TestCrawler_Crawl_FrontierGainsOnlyInternalLinks(t *testing.T) {
	t.Parallel()

	site := &fakeSite{links: map[string][]string{
		"https://example.com/": {"https://example.com/a", "https://example.com/b", "https://other.com/x"},
	}}
	session, err := crawl.NewSession("https://example.com/")
	require.NoError(t, err)

	// Stop after the seed so the frontier can be inspected.
	rec := newRecorder()
	c := newCrawler(site.page(), okChecker(), rec)
	c.MaxPages = 1

	_, err = c.Crawl(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, 2, session.Frontier.Len())
	assert.True(t, session.Frontier.Contains("https://example.com/a"))
	assert.True(t, session.Frontier.Contains("https://example.com/b"))
	assert.False(t, session.Frontier.Contains("https://other.com/x"))
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://other.com/x",
	}, rec.checkedLinks())
}

func TestCrawler_Run_NavigationFailureIsIsolated(t *testing.T) {
	t.Parallel()

	site := &fakeSite{
		links: map[string][]string{
			"https://example.com/":     {"https://example.com/down", "https://example.com/ok"},
			"https://example.com/down": {},
			"https://example.com/ok":   {"https://example.com/"},
		},
		broken: map[string]bool{"https://example.com/down": true},
	}
	session, err := crawl.NewSession("https://example.com/")
	require.NoError(t, err)
	rec := newRecorder()
	c := newCrawler(site.page(), okChecker(), rec)

	summary, err := c.Crawl(context.Background(), session)

	require.NoError(t, err)
	assert.False(t, session.Visited.Contains("https://example.com/down"))
	assert.True(t, session.Visited.Contains("https://example.com/ok"), "crawl continues past a failed page")
	require.Contains(t, rec.failed, "https://example.com/down")
	assert.Equal(t, linkcrawl.ENAVIGATION, linkcrawl.ErrorCode(rec.failed["https://example.com/down"]))
	assert.NotContains(t, rec.started, "https://example.com/down", "no banner for a page that failed to load")
	assert.Equal(t, 2, summary.Visited)
	assert.Equal(t, 1, summary.Failed)
}

func TestCrawler_Run_ExtractionFailureKeepsPageVisited(t *testing.T) {
	t.Parallel()

	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error { return nil },
		AnchorHrefsFn: func(ctx context.Context) ([]string, error) {
			return nil, errors.New("execution context was destroyed")
		},
	}
	session, err := crawl.NewSession("https://example.com/")
	require.NoError(t, err)
	rec := newRecorder()
	c := newCrawler(page, okChecker(), rec)

	summary, err := c.Crawl(context.Background(), session)

	require.NoError(t, err)
	assert.True(t, session.Visited.Contains("https://example.com/"))
	assert.Contains(t, rec.failed, "https://example.com/")
	assert.Equal(t, 1, summary.Visited)
	assert.Equal(t, 1, summary.Failed)
}

func TestCrawler_Run_VisitsFullReachableGraph(t *testing.T) {
	t.Parallel()

	// A cyclic, fully connected same-origin graph with links back to
	// already visited pages and to external sites.
	site := &fakeSite{links: map[string][]string{
		"https://example.com/":         {"https://example.com/a", "https://example.com/b", "https://cdn.other.com/lib.js"},
		"https://example.com/a":        {"https://example.com/", "https://example.com/a/deep", "https://example.com/b"},
		"https://example.com/b":        {"https://example.com/a", "https://example.com/c"},
		"https://example.com/c":        {"https://example.com/", "mailto:hello@example.com"},
		"https://example.com/a/deep":   {"https://example.com/a/deeper"},
		"https://example.com/a/deeper": {"https://example.com/"},
	}}
	session, err := crawl.NewSession("https://example.com/")
	require.NoError(t, err)
	rec := newRecorder()

	// Check the disjointness invariant at every navigation.
	page := site.page()
	navigate := page.NavigateFn
	page.NavigateFn = func(ctx context.Context, url string) error {
		assert.False(t, session.Frontier.Contains(url), "URL being loaded must not be queued")
		assert.False(t, session.Visited.Contains(url), "URL being loaded must not be visited")
		return navigate(ctx, url)
	}
	c := newCrawler(page, okChecker(), rec)

	summary, err := c.Crawl(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, 0, session.Frontier.Len())
	assert.Equal(t, len(site.links), session.Visited.Len())
	for url := range site.links {
		assert.True(t, session.Visited.Contains(url), "%s should be visited", url)
	}
	assert.Len(t, site.navigated, len(site.links), "each page is loaded exactly once")
	assert.Equal(t, 12, summary.Checked, "every link on every page is checked")
	assert.Equal(t, 1, rec.finished)
}

func TestCrawler_Run_FlagsBrokenLinksWithoutAffectingCrawl(t *testing.T) {
	t.Parallel()

	site := &fakeSite{links: map[string][]string{
		"https://example.com/":  {"https://example.com/missing", "https://example.com/a"},
		"https://example.com/a": {},
	}}
	checker := &mock.StatusChecker{
		CheckStatusFn: func(ctx context.Context, link string) (int, error) {
			if link == "https://example.com/missing" {
				return 404, nil
			}
			return 200, nil
		},
	}
	rec := newRecorder()
	c := newCrawler(site.page(), checker, rec)

	summary, err := c.Run(context.Background(), "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Visited, "missing page is enqueued but fails to load")
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Broken)
}

func TestCrawler_Run_RetriesNavigation(t *testing.T) {
	t.Parallel()

	attempts := 0
	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error {
			attempts++
			if attempts < 3 {
				return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "timeout")
			}
			return nil
		},
		AnchorHrefsFn: func(ctx context.Context) ([]string, error) { return nil, nil },
	}
	rec := newRecorder()
	c := newCrawler(page, okChecker(), rec)
	c.RetryDelays = []time.Duration{time.Millisecond, time.Millisecond}

	summary, err := c.Run(context.Background(), "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, summary.Visited)
	assert.Empty(t, rec.failed)
}

func TestCrawler_Crawl_RetryLogsCarrySessionID(t *testing.T) {
	t.Parallel()

	attempts := 0
	page := &mock.Page{
		NavigateFn: func(ctx context.Context, url string) error {
			attempts++
			if attempts < 2 {
				return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "timeout")
			}
			return nil
		},
		AnchorHrefsFn: func(ctx context.Context) ([]string, error) { return nil, nil },
	}
	var logs bytes.Buffer
	rec := newRecorder()
	c := newCrawler(page, okChecker(), rec)
	c.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c.RetryDelays = []time.Duration{time.Millisecond}
	session, err := crawl.NewSession("https://example.com/")
	require.NoError(t, err)

	_, err = c.Crawl(context.Background(), session)

	require.NoError(t, err)
	var retries []string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "retry navigation") {
			retries = append(retries, line)
		}
	}
	require.Len(t, retries, 1)
	assert.Contains(t, retries[0], "session="+session.ID)
}

func TestCrawler_Run_SeedsFromSitemap(t *testing.T) {
	t.Parallel()

	site := &fakeSite{links: map[string][]string{
		"https://example.com/":       {},
		"https://example.com/orphan": {},
	}}
	rec := newRecorder()
	c := newCrawler(site.page(), okChecker(), rec)
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
			assert.Equal(t, "https://example.com/", baseURL)
			return []string{"https://example.com/", "https://example.com/orphan", "https://other.com/"}, nil
		},
	}

	summary, err := c.Run(context.Background(), "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/orphan"}, site.navigated)
	assert.Equal(t, 2, summary.Visited)
}

func TestCrawler_Run_SitemapFailureIsIgnored(t *testing.T) {
	t.Parallel()

	site := &fakeSite{links: map[string][]string{"https://example.com/": {}}}
	rec := newRecorder()
	c := newCrawler(site.page(), okChecker(), rec)
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string) ([]string, error) {
			return nil, errors.New("HTTP 500")
		},
	}

	summary, err := c.Run(context.Background(), "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Visited)
}

func TestCrawler_Run_InvalidSeed(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	c := newCrawler(&mock.Page{}, okChecker(), rec)

	_, err := c.Run(context.Background(), "not a url")

	require.Error(t, err)
	assert.Equal(t, linkcrawl.EINVALID, linkcrawl.ErrorCode(err))
	assert.Zero(t, rec.finished, "no crawl happens for an invalid seed")
}

func TestCrawler_Run_StopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	site := &fakeSite{links: map[string][]string{
		"https://example.com/":  {"https://example.com/a"},
		"https://example.com/a": {},
	}}
	page := site.page()
	navigate := page.NavigateFn
	page.NavigateFn = func(ctx context.Context, url string) error {
		err := navigate(ctx, url)
		cancel()
		return err
	}
	rec := newRecorder()
	c := newCrawler(page, okChecker(), rec)

	summary, err := c.Run(ctx, "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/"}, site.navigated)
	assert.Equal(t, 1, summary.Visited)
	assert.Equal(t, 1, rec.finished)
}
