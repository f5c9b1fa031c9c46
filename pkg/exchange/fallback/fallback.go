// Package fallback holds the static reference rates used when neither the
// cache nor the upstream provider can produce a rate.
package fallback

import (
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
)

// DefaultRate is substituted when no entry exists for a pair.
const DefaultRate = 1.0

// Table is an immutable from -> to -> rate mapping.
// Entries are not symmetric; a USD->EUR entry says nothing about EUR->USD.
type Table struct {
	rates map[currency.Code]map[currency.Code]float64
}

// New copies rates into a Table.
func New(rates map[currency.Code]map[currency.Code]float64) *Table {
	t := &Table{rates: make(map[currency.Code]map[currency.Code]float64, len(rates))}
	for from, targets := range rates {
		row := make(map[currency.Code]float64, len(targets))
		for to, r := range targets {
			row[to] = r
		}
		t.rates[from] = row
	}
	return t
}

// Default returns the built-in reference table.
func Default() *Table {
	return New(map[currency.Code]map[currency.Code]float64{
		"USD": {"EUR": 0.92, "GBP": 0.79, "JPY": 149.5, "CHF": 0.88, "CAD": 1.36, "AUD": 1.52, "INR": 83.1, "CNY": 7.24},
		"EUR": {"USD": 1.09, "GBP": 0.86, "JPY": 162.3, "CHF": 0.96},
		"GBP": {"USD": 1.27, "EUR": 1.17},
		"JPY": {"USD": 0.0067},
		"CAD": {"USD": 0.74},
	})
}

// Lookup returns the configured rate for from->to, or DefaultRate with
// Defaulted set when the pair has no entry.
func (t *Table) Lookup(from, to currency.Code) core.FallbackRate {
	if r, ok := t.rates[from][to]; ok {
		return core.FallbackRate{Rate: r}
	}
	return core.FallbackRate{Rate: DefaultRate, Defaulted: true}
}
