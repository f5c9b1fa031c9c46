package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks every fetch until release is closed.
type gatedFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedFetcher) Fetch(ctx context.Context, base currency.Code) (core.RateTable, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return core.RateTable{}, ctx.Err()
	}
	return core.RateTable{Base: base, Rates: map[currency.Code]float64{"EUR": 0.85}}, nil
}

func TestCoalescingFetcher_SharesInFlightFetch(t *testing.T) {
	next := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	f := NewCoalescingFetcher(next)

	first := make(chan core.RateTable, 1)
	go func() {
		table, _ := f.Fetch(context.Background(), "USD")
		first <- table
	}()
	<-next.started

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := f.Fetch(context.Background(), "USD")
			assert.NoError(t, err)
			assert.InDelta(t, 0.85, table.Rates["EUR"], 0)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(next.release)
	wg.Wait()
	<-first

	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCoalescingFetcher_CallerCancelDoesNotAbortOthers(t *testing.T) {
	next := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	f := NewCoalescingFetcher(next)

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, "USD")
		cancelled <- err
	}()
	<-next.started

	other := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), "USD")
		other <- err
	}()

	cancel()
	require.ErrorIs(t, <-cancelled, context.Canceled)

	close(next.release)
	assert.NoError(t, <-other)
}
