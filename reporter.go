package linkcrawl

// Reporter receives human-facing crawl events.
// LinkChecked is called from status-check workers, so implementations
// must be safe for concurrent use.
type Reporter interface {
	// PageStarted is called once a page has loaded and is being tested.
	PageStarted(url string)

	// PageFailed is called when a page could not be loaded or explored.
	PageFailed(url string, err error)

	// LinkChecked is called for every completed status check.
	LinkChecked(status LinkStatus)

	// Finished is called once the frontier is exhausted and all status
	// checks have drained.
	Finished(summary Summary)
}

// Summary holds the counters of a finished crawl.
type Summary struct {
	Visited int
	Failed  int
	Checked int
	Broken  int
}
