package crawl

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/linkcrawl"
)

// ExtractLinks returns the hyperlink targets of the page currently loaded
// in page. Pages report resolved hrefs; any relative href that slips
// through is resolved against pageURL, and anchors without a target are
// dropped. A page without links yields an empty, non-nil slice.
func ExtractLinks(ctx context.Context, page linkcrawl.Page, pageURL string) ([]string, error) {
	hrefs, err := page.AnchorHrefs(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		href = strings.TrimSpace(href)
		if href == "" {
			continue
		}
		links = append(links, absolute(href, pageURL))
	}
	return links, nil
}

// absolute returns href unchanged when it is already absolute or cannot
// be parsed, and resolved against pageURL otherwise.
func absolute(href, pageURL string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() {
		return href
	}
	resolved, err := ResolveLink(href, pageURL)
	if err != nil {
		return href
	}
	return resolved.String()
}
