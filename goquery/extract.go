// Package goquery extracts hyperlinks from HTML documents using goquery.
package goquery

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkcrawl"
)

// ExtractHrefs returns the href of every anchor in the document, in document
// order, resolved the way a browser resolves a.href: against the document's
// <base href> when present, otherwise against docURL. Fragments are kept and
// duplicates are not removed. An href that cannot be parsed is returned as
// written. Anchors without an href attribute are skipped.
func ExtractHrefs(r io.Reader, docURL string) ([]string, error) {
	base, err := url.Parse(docURL)
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "invalid document URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if declared := resolve(base, href); declared != nil {
			base = declared
		}
	}

	hrefs := []string{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if resolved := resolve(base, href); resolved != nil {
			hrefs = append(hrefs, resolved.String())
			return
		}
		hrefs = append(hrefs, href)
	})
	return hrefs, nil
}

// resolve resolves href against base, returning nil when href is not a URL.
func resolve(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	return base.ResolveReference(ref)
}
