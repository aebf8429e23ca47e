package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

// Compile-time interface verification.
var (
	_ linkcrawl.Browser = (*Browser)(nil)
	_ linkcrawl.Page    = (*Page)(nil)
)

// Browser is a mock implementation of linkcrawl.Browser.
type Browser struct {
	NewPageFn func() (linkcrawl.Page, error)
	CloseFn   func() error
}

func (b *Browser) NewPage() (linkcrawl.Page, error) {
	return b.NewPageFn()
}

func (b *Browser) Close() error {
	return b.CloseFn()
}

// Page is a mock implementation of linkcrawl.Page.
type Page struct {
	NavigateFn    func(ctx context.Context, url string) error
	AnchorHrefsFn func(ctx context.Context) ([]string, error)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.NavigateFn(ctx, url)
}

func (p *Page) AnchorHrefs(ctx context.Context) ([]string, error) {
	return p.AnchorHrefsFn(ctx)
}
