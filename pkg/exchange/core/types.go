package core

import (
	"maps"
	"time"

	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/shopspring/decimal"
)

// Source tags which stage of the retrieval chain produced a rate.
type Source string

const (
	SourceUpstream      Source = "upstream"
	SourceCache         Source = "cache"
	SourceCacheFallback Source = "cache-fallback"
	SourceFallback      Source = "fallback"
)

// ConversionRequest is a validated conversion query.
// Amount is nil when the caller did not supply one.
type ConversionRequest struct {
	From   currency.Code
	To     currency.Code
	Amount *decimal.Decimal
}

// RateTable is one upstream snapshot of all rates for a single base currency.
type RateTable struct {
	Base  currency.Code             `json:"base"`
	Rates map[currency.Code]float64 `json:"rates"`
	AsOf  time.Time                 `json:"as_of"`
}

// Rate returns the rate for target, if the table has one.
// Clone returns a copy whose Rates map is not shared with t.
func (t RateTable) Clone() RateTable {
	t.Rates = maps.Clone(t.Rates)
	return t
}

func (t RateTable) Rate(target currency.Code) (float64, bool) {
	r, ok := t.Rates[target]
	return r, ok
}

// CacheEntry pairs a stored table with the time it was written.
type CacheEntry struct {
	Table    RateTable `json:"table"`
	StoredAt time.Time `json:"stored_at"`
}

// FallbackRate is the result of a static table lookup.
// Defaulted is for logs and metrics only and never reaches a client payload.
type FallbackRate struct {
	Rate      float64
	Defaulted bool
}

// ConversionResult is the outcome of a successful conversion.
// ConvertedAmount is nil when the request carried no amount.
type ConversionResult struct {
	From            currency.Code
	To              currency.Code
	Rate            float64
	ConvertedAmount *decimal.Decimal
	Source          Source
	AsOf            time.Time
}
