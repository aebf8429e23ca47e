package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.StatusChecker = (*StatusChecker)(nil)

// StatusChecker is a mock implementation of linkcrawl.StatusChecker.
type StatusChecker struct {
	CheckStatusFn func(ctx context.Context, link string) (int, error)
}

func (c *StatusChecker) CheckStatus(ctx context.Context, link string) (int, error) {
	return c.CheckStatusFn(ctx, link)
}
