package linkcrawl

import (
	"context"
	"net/http"
)

// StatusChecker observes the response code of a link.
type StatusChecker interface {
	// CheckStatus issues a single GET against the link and returns the
	// response status code. Transport failures (DNS, refused connections,
	// timeouts) are reported with the ETRANSPORT code.
	CheckStatus(ctx context.Context, link string) (statusCode int, err error)
}

// LinkStatus is the outcome of a single status check.
type LinkStatus struct {
	URL        string
	StatusCode int
	Err        error
}

// OK reports whether the link responded with exactly 200.
func (s LinkStatus) OK() bool {
	return s.Err == nil && s.StatusCode == http.StatusOK
}
