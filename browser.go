package linkcrawl

import "context"

// Browser is a launched browser engine.
// Launching happens in the implementation's constructor; a launch failure
// is reported with the ESETUP code.
type Browser interface {
	// NewPage opens a blank page.
	NewPage() (Page, error)

	// Close releases browser resources.
	// Must be called when the Browser is no longer needed.
	Close() error
}

// Page is a single browser tab that is reused across navigations.
// A Page is not safe for concurrent use; it is owned by one crawl at a time.
type Page interface {
	// Navigate loads the URL and waits until the network is quiescent.
	// Unreachable pages and timeouts are reported with the ENAVIGATION code.
	Navigate(ctx context.Context, url string) error

	// AnchorHrefs returns the resolved, absolute href of every anchor
	// element on the currently loaded page, in document order.
	AnchorHrefs(ctx context.Context) ([]string, error)
}
