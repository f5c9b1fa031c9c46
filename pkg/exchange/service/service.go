package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/fxrate/infra/metrics"
	"github.com/amirasaad/fxrate/pkg/cache"
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/amirasaad/fxrate/pkg/exchange/query"
)

// RateFetcher retrieves a full rate table for a base currency.
type RateFetcher interface {
	Fetch(ctx context.Context, base currency.Code) (core.RateTable, error)
}

// FallbackTable resolves static reference rates.
type FallbackTable interface {
	Lookup(from, to currency.Code) core.FallbackRate
}

// Service resolves conversion requests through the fallback chain:
// fresh cache, upstream, stale cache, static table.
type Service struct {
	cache    cache.RateCache
	fetcher  RateFetcher
	fallback FallbackTable
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports served conversions to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithClock replaces time.Now for timestamps on identity and fallback results.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service. A nil fetcher means no upstream credential is
// configured; every non-identity request is then answered from the static table.
func New(
	rateCache cache.RateCache,
	fetcher RateFetcher,
	fallback FallbackTable,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cache:    rateCache,
		fetcher:  fetcher,
		fallback: fallback,
		logger:   logger,
		recorder: metrics.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpstreamEnabled reports whether an upstream fetcher is configured.
func (s *Service) UpstreamEnabled() bool {
	return s.fetcher != nil
}

// ConvertQuery validates raw parameters and converts. Invalid input is
// rejected before the cache or the upstream is consulted.
func (s *Service) ConvertQuery(ctx context.Context, params map[string]string) (core.ConversionResult, error) {
	req, err := query.Parse(params)
	if err != nil {
		s.logger.Debug("Rejected conversion query", "request_id", RequestID(ctx), "error", err)
		return core.ConversionResult{}, err
	}
	return s.Convert(ctx, req)
}

// Convert resolves a validated request. The only error it returns is a
// *core.PairUnavailableError; upstream failures are absorbed by the chain.
func (s *Service) Convert(ctx context.Context, req core.ConversionRequest) (core.ConversionResult, error) {
	log := s.logger.With("request_id", RequestID(ctx), "from", req.From, "to", req.To)

	if req.From == req.To {
		// With no upstream configured the result is tagged as a fallback.
		source := core.SourceUpstream
		if s.fetcher == nil {
			source = core.SourceFallback
		}
		res := core.ConversionResult{
			From:            req.From,
			To:              req.To,
			Rate:            1,
			ConvertedAmount: req.Amount,
			Source:          source,
			AsOf:            s.now().UTC(),
		}
		s.recorder.ConversionServed(res.Source, false)
		return res, nil
	}

	if s.fetcher == nil {
		return s.staticFallback(log, req, "no upstream credential"), nil
	}

	if table, ok := s.cache.Read(ctx, req.From); ok {
		if rate, ok := table.Rate(req.To); ok {
			log.Debug("Cache hit", "as_of", table.AsOf)
			return s.served(Assemble(req, rate, core.SourceCache, table.AsOf), false), nil
		}
	}

	table, err := s.fetcher.Fetch(ctx, req.From)
	if err == nil {
		if werr := s.cache.Write(ctx, req.From, table); werr != nil {
			log.Warn("Failed to cache upstream rates", "error", werr)
		}
		rate, ok := table.Rate(req.To)
		if !ok {
			log.Info("Upstream snapshot has no rate for pair")
			return core.ConversionResult{}, &core.PairUnavailableError{From: req.From, To: req.To}
		}
		return s.served(Assemble(req, rate, core.SourceUpstream, table.AsOf), false), nil
	}
	s.logUpstreamFailure(log, err)

	if table, ok := s.cache.ReadStale(ctx, req.From); ok {
		if rate, ok := table.Rate(req.To); ok {
			log.Warn("Serving stale cached rate after upstream failure", "as_of", table.AsOf)
			return s.served(Assemble(req, rate, core.SourceCacheFallback, table.AsOf), false), nil
		}
	}

	return s.staticFallback(log, req, "upstream failed"), nil
}

func (s *Service) staticFallback(log *slog.Logger, req core.ConversionRequest, reason string) core.ConversionResult {
	fr := s.fallback.Lookup(req.From, req.To)
	log.Warn("Serving static fallback rate", "reason", reason, "rate", fr.Rate, "defaulted", fr.Defaulted)
	return s.served(Assemble(req, fr.Rate, core.SourceFallback, s.now().UTC()), fr.Defaulted)
}

func (s *Service) served(res core.ConversionResult, defaulted bool) core.ConversionResult {
	s.recorder.ConversionServed(res.Source, defaulted)
	return res
}

func (s *Service) logUpstreamFailure(log *slog.Logger, err error) {
	var ue *core.UpstreamError
	if errors.As(err, &ue) && ue.Permanent() {
		log.Error("Upstream fetch failed permanently", "status", ue.Status, "error", err)
		return
	}
	log.Warn("Upstream fetch failed", "error", err)
}
