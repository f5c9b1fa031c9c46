package service

import (
	"context"

	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"golang.org/x/sync/singleflight"
)

// CoalescingFetcher shares one in-flight fetch between concurrent callers
// asking for the same base. The shared fetch is detached from any single
// caller's context, so one caller giving up does not abort it for the rest.
type CoalescingFetcher struct {
	next  RateFetcher
	group singleflight.Group
}

// NewCoalescingFetcher wraps next.
func NewCoalescingFetcher(next RateFetcher) *CoalescingFetcher {
	return &CoalescingFetcher{next: next}
}

func (c *CoalescingFetcher) Fetch(ctx context.Context, base currency.Code) (core.RateTable, error) {
	ch := c.group.DoChan(base.String(), func() (any, error) {
		return c.next.Fetch(context.WithoutCancel(ctx), base)
	})
	select {
	case <-ctx.Done():
		return core.RateTable{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return core.RateTable{}, res.Err
		}
		return res.Val.(core.RateTable), nil
	}
}

var _ RateFetcher = (*CoalescingFetcher)(nil)
