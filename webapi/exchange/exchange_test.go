package exchange_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	infracache "github.com/amirasaad/fxrate/infra/cache"
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/amirasaad/fxrate/pkg/exchange/fallback"
	"github.com/amirasaad/fxrate/pkg/exchange/service"
	"github.com/amirasaad/fxrate/webapi/exchange"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	table core.RateTable
	err   error
	calls atomic.Int32
}

func (s *stubFetcher) Fetch(_ context.Context, base currency.Code) (core.RateTable, error) {
	s.calls.Add(1)
	if s.err != nil {
		return core.RateTable{}, s.err
	}
	t := s.table
	t.Base = base
	return t, nil
}

func newApp(t *testing.T, fetcher service.RateFetcher) *fiber.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(
		infracache.NewMemoryCache(time.Minute, time.Hour),
		fetcher,
		fallback.Default(),
		logger,
	)
	app := fiber.New()
	exchange.Routes(app, svc)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, map[string]any, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body, resp.Header.Get(exchange.RequestIDHeader)
}

func TestConvert_Upstream(t *testing.T) {
	asOf := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f := &stubFetcher{table: core.RateTable{
		Rates: map[currency.Code]float64{"EUR": 0.9},
		AsOf:  asOf,
	}}
	app := newApp(t, f)

	status, body, reqID := get(t, app, "/api/exchange/convert?from=usd&to=EUR&amount=100")
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 0.9, body["rate"], 1e-12)
	assert.InDelta(t, 90.0, body["convertedAmount"], 1e-9)
	assert.Equal(t, "USD", body["from"])
	assert.Equal(t, "EUR", body["to"])
	assert.Equal(t, "upstream", body["source"])
	assert.Equal(t, "2025-01-02T03:04:05.000Z", body["lastUpdated"])

	_, body, _ = get(t, app, "/api/exchange/convert?from=USD&to=EUR")
	assert.Equal(t, "cache", body["source"])
	assert.Nil(t, body["convertedAmount"])
	assert.Contains(t, body, "convertedAmount")
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestConvert_ValidationErrors(t *testing.T) {
	f := &stubFetcher{}
	app := newApp(t, f)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"unsupported", "from=USD&to=XYZ", "Currency XYZ is not supported."},
		{"missing from", "to=EUR", "Parameter 'from' is required."},
		{"negative", "from=USD&to=EUR&amount=-5", "Amount must not be negative."},
		{"empty amount", "from=USD&to=EUR&amount=", "Amount must be a plain decimal number without exponent notation."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, app, "/api/exchange/convert?"+tt.query)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.want, body["error"])
		})
	}
	assert.Zero(t, f.calls.Load())
}

func TestConvert_PairUnavailable(t *testing.T) {
	f := &stubFetcher{table: core.RateTable{
		Rates: map[currency.Code]float64{"GBP": 0.8},
		AsOf:  time.Now(),
	}}
	app := newApp(t, f)

	status, body, _ := get(t, app, "/api/exchange/convert?from=USD&to=EUR")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Exchange rate from USD to EUR not available.", body["error"])
}

func TestConvert_FallbackWhenUpstreamFails(t *testing.T) {
	f := &stubFetcher{err: errors.New("boom")}
	app := newApp(t, f)

	status, body, _ := get(t, app, "/api/exchange/convert?from=USD&to=EUR&amount=10")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "fallback", body["source"])
	assert.InDelta(t, 0.92, body["rate"], 1e-12)
	assert.InDelta(t, 9.2, body["convertedAmount"], 1e-9)
}

func TestConvert_NoCredentialServesStaticTable(t *testing.T) {
	app := newApp(t, nil)

	status, body, _ := get(t, app, "/api/exchange/convert?from=USD&to=EUR")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "fallback", body["source"])
}

func TestConvert_Identity(t *testing.T) {
	f := &stubFetcher{}
	app := newApp(t, f)

	status, body, _ := get(t, app, "/api/exchange/convert?from=EUR&to=eur&amount=12.5")
	assert.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 1.0, body["rate"], 0)
	assert.InDelta(t, 12.5, body["convertedAmount"], 0)
	assert.Equal(t, "upstream", body["source"])
	assert.Zero(t, f.calls.Load())
}

func TestConvert_IdentityWithoutCredentialIsFallback(t *testing.T) {
	app := newApp(t, nil)

	status, body, _ := get(t, app, "/api/exchange/convert?from=GBP&to=GBP&amount=3")
	assert.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 1.0, body["rate"], 0)
	assert.Equal(t, "fallback", body["source"])
}

func TestConvert_KeepsCallerRequestID(t *testing.T) {
	app := newApp(t, nil)
	req := httptest.NewRequest(fiber.MethodGet, "/api/exchange/convert?from=USD&to=EUR", nil)
	req.Header.Set(exchange.RequestIDHeader, "abc-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, "abc-123", resp.Header.Get(exchange.RequestIDHeader))
}

func TestCurrencies(t *testing.T) {
	app := newApp(t, nil)

	status, body, _ := get(t, app, "/api/exchange/currencies")
	assert.Equal(t, fiber.StatusOK, status)
	list, ok := body["currencies"].([]any)
	require.True(t, ok)
	assert.Len(t, list, len(currency.Supported()))
	assert.Contains(t, list, "USD")
}
