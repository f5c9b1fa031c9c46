package core

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amirasaad/fxrate/pkg/currency"
)

// ValidationKind identifies which input check rejected a request.
type ValidationKind string

const (
	InvalidParameter      ValidationKind = "unknown_parameter"
	MissingCurrency       ValidationKind = "missing_currency"
	InvalidCurrencyFormat ValidationKind = "invalid_currency_format"
	UnsupportedCurrency   ValidationKind = "unsupported_currency"
	InvalidAmountFormat   ValidationKind = "invalid_amount_format"
	InvalidAmount         ValidationKind = "invalid_amount"
	NonFiniteAmount       ValidationKind = "non_finite_amount"
	NegativeAmount        ValidationKind = "negative_amount"
	AmountTooLarge        ValidationKind = "amount_too_large"
	AmountTooPrecise      ValidationKind = "amount_too_precise"
)

// ValidationError reports bad client input. Message is safe to show to the caller.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PairUnavailableError is returned when a successful upstream snapshot has
// no rate for the requested target.
type PairUnavailableError struct {
	From currency.Code
	To   currency.Code
}

func (e *PairUnavailableError) Error() string {
	return fmt.Sprintf("Exchange rate from %s to %s not available.", e.From, e.To)
}

// UpstreamKind classifies a failed upstream attempt.
type UpstreamKind string

const (
	UpstreamTimeout   UpstreamKind = "timeout"
	UpstreamStatus    UpstreamKind = "status"
	UpstreamMalformed UpstreamKind = "malformed"
	UpstreamNetwork   UpstreamKind = "network"
)

// ErrNoCredential is returned by fetchers constructed without an API key.
var ErrNoCredential = errors.New("upstream credential not configured")

// UpstreamError is a failed call to the rate provider.
// It never reaches a client; the orchestrator absorbs it.
type UpstreamError struct {
	Kind   UpstreamKind
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case UpstreamStatus:
		return fmt.Sprintf("upstream returned status %d", e.Status)
	case UpstreamTimeout:
		return "upstream timeout"
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
	}
	return "upstream " + string(e.Kind)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed: timeouts, network
// failures, malformed payloads, 429 and 5xx.
func (e *UpstreamError) Retryable() bool {
	switch e.Kind {
	case UpstreamTimeout, UpstreamNetwork, UpstreamMalformed:
		return true
	case UpstreamStatus:
		return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
	}
	return false
}

// Permanent reports a non-retryable 4xx answer from the provider.
func (e *UpstreamError) Permanent() bool {
	return e.Kind == UpstreamStatus && e.Status >= 400 && e.Status < 500 && !e.Retryable()
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPairUnavailable reports whether err is or wraps a *PairUnavailableError.
func IsPairUnavailable(err error) bool {
	var pe *PairUnavailableError
	return errors.As(err, &pe)
}
