// Package query turns raw conversion parameters into a validated
// core.ConversionRequest. It touches neither the cache nor the network.
package query

import (
	"fmt"
	"math"
	"regexp"
	"slices"

	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/shopspring/decimal"
)

const (
	ParamFrom   = "from"
	ParamTo     = "to"
	ParamAmount = "amount"

	// MaxFractionDigits is the most digits accepted after the decimal point.
	MaxFractionDigits = 8
)

// MaxAmount is the largest accepted absolute amount (10^12).
var MaxAmount = decimal.New(1, 12)

var (
	allowedParams = []string{ParamFrom, ParamTo, ParamAmount}
	amountPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

func invalid(kind core.ValidationKind, format string, args ...any) *core.ValidationError {
	return &core.ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Parse validates params and builds a ConversionRequest.
// Unknown parameter names are rejected rather than ignored.
// An empty amount is treated the same as an absent one.
func Parse(params map[string]string) (core.ConversionRequest, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !slices.Contains(allowedParams, name) {
			return core.ConversionRequest{}, invalid(core.InvalidParameter,
				"Unknown parameter %q. Allowed parameters are from, to and amount.", name)
		}
	}

	from, err := parseCode(ParamFrom, params[ParamFrom])
	if err != nil {
		return core.ConversionRequest{}, err
	}
	to, err := parseCode(ParamTo, params[ParamTo])
	if err != nil {
		return core.ConversionRequest{}, err
	}

	req := core.ConversionRequest{From: from, To: to}
	if raw, ok := params[ParamAmount]; ok {
		amount, err := ParseAmount(raw)
		if err != nil {
			return core.ConversionRequest{}, err
		}
		req.Amount = &amount
	}
	return req, nil
}

func parseCode(name, raw string) (currency.Code, error) {
	if raw == "" {
		return "", invalid(core.MissingCurrency, "Parameter '%s' is required.", name)
	}
	code := currency.Normalize(raw)
	if !currency.IsWellFormed(code) {
		return "", invalid(core.InvalidCurrencyFormat,
			"Parameter '%s' must be a 3-letter currency code.", name)
	}
	if !currency.IsSupported(code) {
		return "", invalid(core.UnsupportedCurrency, "Currency %s is not supported.", code)
	}
	return code, nil
}

// ParseAmount validates a plain decimal literal: no exponent, finite,
// non-negative, at most 10^12 and at most eight fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if !amountPattern.MatchString(raw) {
		return decimal.Zero, invalid(core.InvalidAmountFormat,
			"Amount must be a plain decimal number without exponent notation.")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid(core.InvalidAmount, "Amount is not a valid number.")
	}
	if f := amount.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, invalid(core.NonFiniteAmount, "Amount must be a finite number.")
	}
	if amount.IsNegative() {
		return decimal.Zero, invalid(core.NegativeAmount, "Amount must not be negative.")
	}
	if amount.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, invalid(core.AmountTooLarge, "Amount must not exceed %s.", MaxAmount.String())
	}
	if -amount.Exponent() > MaxFractionDigits {
		return decimal.Zero, invalid(core.AmountTooPrecise,
			"Amount must have at most %d decimal places.", MaxFractionDigits)
	}
	return amount, nil
}
