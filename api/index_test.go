package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ServesConversionWithoutCredential(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXCHANGE_RATE_API_KEY", "")
	t.Setenv("CACHE_BACKEND", "memory")

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/api/exchange/convert?from=USD&to=GBP&amount=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "fallback", body["source"])
	assert.InDelta(t, 7.9, body["convertedAmount"], 1e-9)

	// Second call reuses the app built by the first.
	rec = httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
