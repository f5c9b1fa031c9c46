package exchange

import (
	"time"

	"github.com/amirasaad/fxrate/pkg/exchange/core"
)

// lastUpdatedLayout is ISO-8601 with millisecond precision.
const lastUpdatedLayout = "2006-01-02T15:04:05.000Z07:00"

// ConversionResponse is the success payload of GET /api/exchange/convert.
type ConversionResponse struct {
	Success         bool     `json:"success"`
	Rate            float64  `json:"rate"`
	ConvertedAmount *float64 `json:"convertedAmount"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	LastUpdated     string   `json:"lastUpdated"`
	Source          string   `json:"source"`
}

// ErrorResponse is the payload for rejected requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CurrenciesResponse lists the supported currency codes.
type CurrenciesResponse struct {
	Success    bool     `json:"success"`
	Currencies []string `json:"currencies"`
}

// ToResponse maps a result to its wire form.
func ToResponse(res core.ConversionResult) ConversionResponse {
	out := ConversionResponse{
		Success:     true,
		Rate:        res.Rate,
		From:        res.From.String(),
		To:          res.To.String(),
		LastUpdated: asOfOrNow(res.AsOf).UTC().Format(lastUpdatedLayout),
		Source:      string(res.Source),
	}
	if res.ConvertedAmount != nil {
		f := res.ConvertedAmount.InexactFloat64()
		out.ConvertedAmount = &f
	}
	return out
}

// asOfOrNow guards against zero timestamps from hand-built results.
func asOfOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
