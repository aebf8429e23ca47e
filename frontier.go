package linkcrawl

// URLFrontier holds discovered but not yet visited URLs.
// URLs are compared by exact string identity.
type URLFrontier interface {
	// Push adds a URL to the frontier.
	// Returns false if the URL is already queued.
	Push(url string) bool

	// Pop removes and returns the next URL.
	// Returns false if the frontier is empty.
	Pop() (string, bool)

	// Len returns the number of queued URLs.
	Len() int

	// Contains returns true if the URL is currently queued.
	Contains(url string) bool
}
