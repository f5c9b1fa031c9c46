package initializer

import (
	"fmt"
	"os"

	infracache "github.com/amirasaad/fxrate/infra/cache"
	"github.com/amirasaad/fxrate/infra/metrics"
	"github.com/amirasaad/fxrate/infra/provider/exchangerateapi"
	"github.com/amirasaad/fxrate/pkg/app"
	"github.com/amirasaad/fxrate/pkg/cache"
	"github.com/amirasaad/fxrate/pkg/config"
	"github.com/amirasaad/fxrate/pkg/exchange/fallback"
	"github.com/amirasaad/fxrate/pkg/exchange/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// InitializeDependencies builds the rate engine and its collaborators from cfg.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	logger := setupLogger(cfg.Log, os.Stdout)
	deps := &app.Deps{Config: cfg, Logger: logger}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(reg)
	deps.MetricsRegistry = reg

	up := cfg.Upstream
	var rateCache cache.RateCache
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := infracache.NewRedisCacheFromURL(
			cfg.Redis.URL,
			cfg.Redis.KeyPrefix,
			up.CacheTTL(),
			up.StaleRetention(),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis cache: %w", err)
		}
		deps.Closers = append(deps.Closers, rc)
		rateCache = rc
	default:
		rateCache = infracache.NewMemoryCache(up.CacheTTL(), up.StaleRetention())
	}
	logger.Info("Rate cache ready", "backend", cfg.Cache.Backend, "ttl", up.CacheTTL())

	// A nil fetcher routes every request to the static table.
	var fetcher service.RateFetcher
	if up.HasCredential() {
		client := exchangerateapi.New(exchangerateapi.Config{
			APIKey:      up.APIKey,
			BaseURL:     up.APIURL,
			Timeout:     up.Timeout(),
			Retries:     up.Retries,
			BackoffBase: up.BackoffBase(),
		}, logger, exchangerateapi.WithRecorder(recorder))
		fetcher = client
		if up.CoalesceFetches {
			fetcher = service.NewCoalescingFetcher(client)
		}
	} else {
		logger.Warn("No upstream API key configured; serving static fallback rates only")
	}

	deps.ExchangeService = service.New(
		rateCache,
		fetcher,
		fallback.Default(),
		logger,
		service.WithRecorder(recorder),
	)
	return deps, nil
}
