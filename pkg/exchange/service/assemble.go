package service

import (
	"time"

	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/shopspring/decimal"
)

// ConvertedPlaces is the number of fractional digits kept in a converted amount.
const ConvertedPlaces = 6

// Assemble builds the result for req at rate. The converted amount is
// rounded once, half away from zero, and left nil when req has no amount.
func Assemble(req core.ConversionRequest, rate float64, source core.Source, asOf time.Time) core.ConversionResult {
	res := core.ConversionResult{
		From:   req.From,
		To:     req.To,
		Rate:   rate,
		Source: source,
		AsOf:   asOf,
	}
	if req.Amount != nil {
		converted := req.Amount.Mul(decimal.NewFromFloat(rate)).Round(ConvertedPlaces)
		res.ConvertedAmount = &converted
	}
	return res
}
