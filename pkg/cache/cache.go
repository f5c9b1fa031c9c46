package cache

import (
	"context"

	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
)

// RateCache stores the latest RateTable per base currency.
//
// Read honours the TTL and treats expired entries as evicted. ReadStale
// ignores the TTL and is only meant for degraded reads after an upstream
// failure. Concurrent writers for the same base overwrite each other; the
// last write wins.
type RateCache interface {
	Read(ctx context.Context, base currency.Code) (core.RateTable, bool)
	ReadStale(ctx context.Context, base currency.Code) (core.RateTable, bool)
	Write(ctx context.Context, base currency.Code, table core.RateTable) error
}
