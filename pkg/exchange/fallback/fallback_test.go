package fallback

import (
	"testing"

	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/stretchr/testify/assert"
)

func TestLookup_Direct(t *testing.T) {
	fr := Default().Lookup("USD", "EUR")
	assert.InDelta(t, 0.92, fr.Rate, 1e-9)
	assert.False(t, fr.Defaulted)
}

func TestLookup_MissingPairDefaults(t *testing.T) {
	fr := Default().Lookup("GBP", "JPY")
	assert.InDelta(t, DefaultRate, fr.Rate, 1e-9)
	assert.True(t, fr.Defaulted)

	fr = Default().Lookup("XXX", "USD")
	assert.True(t, fr.Defaulted)
}

func TestLookup_NotInverted(t *testing.T) {
	table := New(map[currency.Code]map[currency.Code]float64{"USD": {"SEK": 10.5}})
	assert.False(t, table.Lookup("USD", "SEK").Defaulted)
	assert.True(t, table.Lookup("SEK", "USD").Defaulted)
}

func TestNew_CopiesInput(t *testing.T) {
	src := map[currency.Code]map[currency.Code]float64{"USD": {"EUR": 0.9}}
	table := New(src)
	src["USD"]["EUR"] = 2
	assert.InDelta(t, 0.9, table.Lookup("USD", "EUR").Rate, 1e-9)
}
