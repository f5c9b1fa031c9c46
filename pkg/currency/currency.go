package currency

import (
	"regexp"
	"slices"
	"strings"
)

// Code is an upper-case ISO 4217 currency code (e.g. "USD").
type Code string

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// supported is the whitelist of codes the service accepts.
var supported = map[Code]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "CHF": {},
	"CAD": {}, "AUD": {}, "NZD": {}, "CNY": {}, "HKD": {},
	"SGD": {}, "INR": {}, "KRW": {}, "SEK": {}, "NOK": {},
	"DKK": {}, "PLN": {}, "CZK": {}, "HUF": {}, "TRY": {},
	"BRL": {}, "MXN": {}, "ZAR": {}, "AED": {}, "SAR": {},
	"EGP": {}, "KWD": {}, "ILS": {}, "THB": {}, "IDR": {},
}

// Normalize upper-cases s. It does not validate the result.
func Normalize(s string) Code {
	return Code(strings.ToUpper(s))
}

// IsWellFormed reports whether c is exactly three upper-case ASCII letters.
func IsWellFormed(c Code) bool {
	return codePattern.MatchString(string(c))
}

// IsSupported reports whether c is on the whitelist.
func IsSupported(c Code) bool {
	_, ok := supported[c]
	return ok
}

// Supported returns all whitelisted codes in lexical order.
func Supported() []Code {
	codes := make([]Code, 0, len(supported))
	for c := range supported {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
