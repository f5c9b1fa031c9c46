// Package exchangerateapi fetches latest-rate snapshots from
// exchangerate-api.com (v6 "latest/<BASE>" endpoint).
package exchangerateapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/fxrate/infra/metrics"
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultBaseURL     = "https://v6.exchangerate-api.com/v6"
	DefaultTimeout     = 8 * time.Second
	DefaultRetries     = 1
	DefaultBackoffBase = 200 * time.Millisecond

	resultSuccess = "success"
)

// Config holds the fetcher settings resolved at start-up.
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
}

// latestResponse is the v6 payload.
// See: https://www.exchangerate-api.com/docs/standard-requests
type latestResponse struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

type outcome int

const (
	succeeded outcome = iota
	retryable
	fatal
)

func (o outcome) String() string {
	switch o {
	case succeeded:
		return metrics.OutcomeSuccess
	case retryable:
		return metrics.OutcomeRetryable
	}
	return metrics.OutcomeFatal
}

// Client performs time-bounded fetches with bounded retry and exponential
// backoff. It never caches; every call returns a fresh RateTable.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	recorder   metrics.Recorder
	now        func() time.Time
	// timer drives the backoff wait; nil uses a real timer.
	timer backoff.Timer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRecorder reports attempts to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// New creates a Client. Zero values in cfg fall back to the package defaults,
// except Retries and BackoffBase where zero is meaningful.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger.With("provider", "exchangerate-api"),
		recorder:   metrics.Nop{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the latest rate table for base. It makes at most
// Retries+1 attempts and returns the last error once they are exhausted.
func (c *Client) Fetch(ctx context.Context, base currency.Code) (core.RateTable, error) {
	if c.cfg.APIKey == "" {
		return core.RateTable{}, core.ErrNoCredential
	}

	var (
		table core.RateTable
		n     int
	)
	op := func() error {
		n++
		start := c.now()
		t, result, err := c.attempt(ctx, base)
		c.recorder.UpstreamAttempt(result.String(), c.now().Sub(start))

		switch result {
		case succeeded:
			if n > 1 {
				c.logger.Info("Upstream fetch recovered after retry", "base", base, "attempt", n)
			}
			table = t
			return nil
		case fatal:
			c.logFailure(base, n, false, err)
			return backoff.Permanent(err)
		}
		c.logFailure(base, n, true, err)
		return err
	}
	notify := func(_ error, wait time.Duration) {
		c.logger.Debug("Retrying upstream fetch", "base", base, "attempt", n+1, "wait", wait)
	}

	if err := backoff.RetryNotifyWithTimer(op, c.retryPolicy(ctx), notify, c.timer); err != nil {
		// A cancellation during the backoff wait surfaces as the bare context error.
		var ue *core.UpstreamError
		if !errors.As(err, &ue) {
			err = &core.UpstreamError{Kind: core.UpstreamNetwork, Err: err}
		}
		return core.RateTable{}, err
	}
	return table, nil
}

// retryPolicy waits base, 2*base, 4*base, ... between attempts, without jitter,
// and stops after Retries retries or when ctx is done.
func (c *Client) retryPolicy(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.BackoffBase
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = c.cfg.BackoffBase << max(c.cfg.Retries-1, 0)
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.cfg.Retries)), ctx)
}

func (c *Client) logFailure(base currency.Code, attempt int, canRetry bool, err error) {
	var ue *core.UpstreamError
	if errors.As(err, &ue) && ue.Permanent() {
		c.logger.Error("Upstream rejected request", "base", base, "attempt", attempt, "status", ue.Status, "error", err)
		return
	}
	c.logger.Warn("Upstream attempt failed", "base", base, "attempt", attempt, "retryable", canRetry, "error", err)
}

func (c *Client) attempt(ctx context.Context, base currency.Code) (core.RateTable, outcome, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/latest/%s", c.cfg.BaseURL, c.cfg.APIKey, base)
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return core.RateTable{}, fatal, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(ctx, attemptCtx, core.UpstreamNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		ue := &core.UpstreamError{Kind: core.UpstreamStatus, Status: resp.StatusCode}
		if ue.Retryable() {
			return core.RateTable{}, retryable, ue
		}
		return core.RateTable{}, fatal, ue
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.transportFailure(ctx, attemptCtx, core.UpstreamMalformed, err)
	}
	if payload.Result != resultSuccess || len(payload.ConversionRates) == 0 {
		return core.RateTable{}, retryable, &core.UpstreamError{
			Kind: core.UpstreamMalformed,
			Err:  fmt.Errorf("result=%q error-type=%q rates=%d", payload.Result, payload.ErrorType, len(payload.ConversionRates)),
		}
	}

	return c.toTable(base, payload), succeeded, nil
}

// transportFailure classifies an error raised while the attempt context was
// live. A caller cancellation is fatal; the attempt deadline is a timeout.
func (c *Client) transportFailure(parent, attemptCtx context.Context, kind core.UpstreamKind, err error) (core.RateTable, outcome, error) {
	if parent.Err() != nil {
		return core.RateTable{}, fatal, &core.UpstreamError{Kind: core.UpstreamNetwork, Err: parent.Err()}
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return core.RateTable{}, retryable, &core.UpstreamError{Kind: core.UpstreamTimeout, Err: err}
	}
	return core.RateTable{}, retryable, &core.UpstreamError{Kind: kind, Err: err}
}

func (c *Client) toTable(base currency.Code, payload latestResponse) core.RateTable {
	rates := make(map[currency.Code]float64, len(payload.ConversionRates))
	for code, rate := range payload.ConversionRates {
		rates[currency.Code(code)] = rate
	}
	asOf := c.now().UTC()
	if payload.TimeLastUpdateUnix > 0 {
		asOf = time.Unix(payload.TimeLastUpdateUnix, 0).UTC()
	}
	return core.RateTable{Base: base, Rates: rates, AsOf: asOf}
}
