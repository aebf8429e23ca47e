package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure types implement the linkcrawl interfaces at compile time.
var (
	_ linkcrawl.Browser = (*Browser)(nil)
	_ linkcrawl.Page    = (*Page)(nil)
)

const (
	// DefaultNavigationTimeout bounds a single page load including the idle wait.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultIdleTime is how long the network must stay quiet before a
	// navigation is considered complete.
	DefaultIdleTime = 500 * time.Millisecond
)

// anchorHrefsJS collects the resolved href of every anchor in the document.
// Anchors without an href resolve to an empty string.
const anchorHrefsJS = `() => Array.from(document.querySelectorAll('a'), a => typeof a.href === 'string' ? a.href : '')`

// Browser is a headless Chrome instance driven over the DevTools protocol.
//
// Browser is safe for concurrent use. Close is safe to call multiple times.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	navTimeout time.Duration
	idleTime   time.Duration
	headless   bool
	bin        string

	mu     sync.Mutex
	closed atomic.Bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithNavigationTimeout bounds each Navigate call. Zero disables the bound.
func WithNavigationTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.navTimeout = d
	}
}

// WithIdleTime sets how long the network must be idle after a load.
func WithIdleTime(d time.Duration) Option {
	return func(b *Browser) {
		b.idleTime = d
	}
}

// WithHeadless controls whether Chrome runs without a window. Defaults to true.
func WithHeadless(headless bool) Option {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithBin uses the Chrome binary at path instead of the one rod finds or downloads.
func WithBin(path string) Option {
	return func(b *Browser) {
		b.bin = path
	}
}

// Launch starts a headless Chrome and connects to it.
// Close must be called when the Browser is no longer needed.
//
// Returns an ESETUP error if Chrome cannot be found, launched or connected to.
func Launch(opts ...Option) (*Browser, error) {
	b := &Browser{
		navTimeout: DefaultNavigationTimeout,
		idleTime:   DefaultIdleTime,
		headless:   true,
	}
	for _, opt := range opts {
		opt(b)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(b.headless)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.ESETUP, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, linkcrawl.Errorf(linkcrawl.ESETUP, "connecting to browser: %v", err)
	}

	b.browser = browser
	b.launcher = l
	return b, nil
}

// NewPage opens a blank tab.
func (b *Browser) NewPage() (linkcrawl.Page, error) {
	if b.closed.Load() {
		return nil, linkcrawl.Errorf(linkcrawl.ESETUP, "browser closed")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Close may have won the race since the check above.
	if b.browser == nil {
		return nil, linkcrawl.Errorf(linkcrawl.ESETUP, "browser closed")
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.ESETUP, "opening page: %v", err)
	}
	return &Page{page: page, navTimeout: b.navTimeout, idleTime: b.idleTime}, nil
}

// Close shuts down Chrome and kills the launcher process.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

// Page is a single browser tab. It is not safe for concurrent use.
type Page struct {
	page       *rod.Page
	navTimeout time.Duration
	idleTime   time.Duration
}

// Navigate loads url and waits until the network has been idle for the
// configured idle time. Load failures are returned as ENAVIGATION errors;
// context errors are returned unchanged.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.navTimeout)
		defer cancel()
	}

	page := p.page.Context(ctx)
	wait := page.WaitRequestIdle(p.idleTime, nil, nil, nil)

	if err := page.Navigate(url); err != nil {
		return navigationError(ctx, url, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return navigationError(ctx, url, err)
	}
	return nil
}

// AnchorHrefs returns the resolved href of every anchor in the loaded document.
func (p *Page) AnchorHrefs(ctx context.Context) ([]string, error) {
	res, err := p.page.Context(ctx).Eval(anchorHrefsJS)
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.ENAVIGATION, "reading anchors: %v", err)
	}

	var hrefs []string
	if err := res.Value.Unmarshal(&hrefs); err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.ENAVIGATION, "decoding anchors: %v", err)
	}
	return hrefs, nil
}

// navigationError keeps caller cancellation distinguishable from load failures.
// A navigation timeout is a load failure.
func navigationError(ctx context.Context, url string, err error) error {
	if ctx.Err() == context.Canceled {
		return context.Canceled
	}
	if ctx.Err() == context.DeadlineExceeded {
		return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "navigation timeout at %s", url)
	}
	return linkcrawl.Errorf(linkcrawl.ENAVIGATION, "%v", err)
}
