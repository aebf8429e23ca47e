// Package console reports crawl progress as human-readable terminal lines.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/fwojciec/linkcrawl"
)

// Ensure Reporter implements linkcrawl.Reporter at compile time.
var _ linkcrawl.Reporter = (*Reporter)(nil)

// Reporter writes crawl events to a terminal. Healthy links are printed
// plainly; anything other than a 200 is printed in red.
//
// Reporter is safe for concurrent use; each event is written as a whole.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	red    *color.Color
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithColor forces red highlighting on or off. By default color follows
// fatih/color's terminal detection.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		if enabled {
			r.red.EnableColor()
		} else {
			r.red.DisableColor()
		}
	}
}

// NewReporter creates a Reporter writing events to out and page failures
// to errOut.
func NewReporter(out, errOut io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:    out,
		errOut: errOut,
		red:    color.New(color.FgRed),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageStarted prints the banner for a page that has loaded.
func (r *Reporter) PageStarted(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\nCurrently testing: %s\n\n", url)
}

// PageFailed prints a page that could not be loaded or explored.
func (r *Reporter) PageFailed(url string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.errOut, "Error occurred while accessing: %s %s\n", url, linkcrawl.Reason(err))
}

// LinkChecked prints the outcome of one status check.
func (r *Reporter) LinkChecked(status linkcrawl.LinkStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var line string
	switch {
	case status.Err != nil:
		line = r.red.Sprintf("Error: %s - Link: %s", linkcrawl.Reason(status.Err), status.URL)
	case status.OK():
		line = fmt.Sprintf("Status: %d - Link: %s", status.StatusCode, status.URL)
	default:
		line = r.red.Sprintf("Status: %d - Link: %s", status.StatusCode, status.URL)
	}
	fmt.Fprintln(r.out, line)
}

// Finished prints the final summary line.
func (r *Reporter) Finished(summary linkcrawl.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("Crawl finished: %d pages visited, %d failed, %d links checked, %d broken",
		summary.Visited, summary.Failed, summary.Checked, summary.Broken)
	if summary.Broken > 0 || summary.Failed > 0 {
		line = r.red.Sprint(line)
	}
	fmt.Fprintf(r.out, "\n%s\n", line)
}
