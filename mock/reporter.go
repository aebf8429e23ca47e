package mock

import (
	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.Reporter = (*Reporter)(nil)

// Reporter is a mock implementation of linkcrawl.Reporter.
// Nil function fields are treated as no-ops.
type Reporter struct {
	PageStartedFn func(url string)
	PageFailedFn  func(url string, err error)
	LinkCheckedFn func(status linkcrawl.LinkStatus)
	FinishedFn    func(summary linkcrawl.Summary)
}

func (r *Reporter) PageStarted(url string) {
	if r.PageStartedFn != nil {
		r.PageStartedFn(url)
	}
}

func (r *Reporter) PageFailed(url string, err error) {
	if r.PageFailedFn != nil {
		r.PageFailedFn(url, err)
	}
}

func (r *Reporter) LinkChecked(status linkcrawl.LinkStatus) {
	if r.LinkCheckedFn != nil {
		r.LinkCheckedFn(status)
	}
}

func (r *Reporter) Finished(summary linkcrawl.Summary) {
	if r.FinishedFn != nil {
		r.FinishedFn(summary)
	}
}
