package crawl

import (
	"net/url"
	"strings"

	"github.com/fwojciec/linkcrawl"
	"github.com/google/uuid"
)

// Session is the state of a single crawl run.
type Session struct {
	ID       string
	Seed     string
	Origin   string
	Frontier *Frontier
	Visited  *VisitedSet
}

// NewSession validates the seed URL and returns a Session whose frontier
// holds only the seed. The seed must be an absolute http or https URL.
func NewSession(seed string) (*Session, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "seed URL required")
	}
	u, err := url.Parse(seed)
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "invalid seed URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "seed URL must use http or https: %q", seed)
	}
	origin := Origin(u)
	if origin == "" {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "seed URL has no host: %q", seed)
	}

	s := &Session{
		ID:       uuid.NewString(),
		Seed:     seed,
		Origin:   origin,
		Frontier: NewFrontier(),
		Visited:  NewVisitedSet(),
	}
	s.Frontier.Push(seed)
	return s, nil
}

// Enqueue adds an internal, unvisited link to the frontier.
// Returns false if the link was external, already visited or already queued.
func (s *Session) Enqueue(link string) bool {
	if !IsInternal(link, s.Seed) {
		return false
	}
	if s.Visited.Contains(link) {
		return false
	}
	return s.Frontier.Push(link)
}
