package shared

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are carried as int64 minor units (cents). Two fractional digits are the only
// precision the ledger accepts.
const minorUnitDigits = 2

var (
	ErrMalformedAmount   = errors.New("amount is not a well-formed decimal")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount cannot have more than 2 decimal places")
	ErrAmountOverflow    = errors.New("amount is too large")
)

// maxMinorUnits keeps sums of many amounts well inside int64.
var maxMinorUnits = decimal.NewFromInt(1_000_000_000_000_000)

// Bounds on the textual form. Scaling a decimal builds 10^|exponent|, so the exponent is
// checked before any arithmetic.
const (
	maxDecimalLength   = 64
	maxDecimalExponent = 18
	minDecimalExponent = -20
)

// ParseDecimal parses raw as a bounded decimal. Oversized text or exponents outside
// [-20, 18] are malformed.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxDecimalLength {
		return decimal.Zero, ErrMalformedAmount
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < minDecimalExponent {
		return decimal.Zero, ErrMalformedAmount
	}
	return d, nil
}

// ParseAmount converts a decimal string such as "100", "100.5" or "1e2" into minor units.
func ParseAmount(raw string) (int64, error) {
	d, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, ErrNonPositiveAmount
	}
	if !d.Equal(d.Round(minorUnitDigits)) {
		return 0, ErrAmountPrecision
	}

	minor := d.Shift(minorUnitDigits)
	if minor.GreaterThan(maxMinorUnits) {
		return 0, ErrAmountOverflow
	}
	return minor.IntPart(), nil
}

// FormatAmount renders minor units as a fixed two-digit decimal string, e.g. 10050 -> "100.50".
func FormatAmount(minor int64) string {
	return AmountToDecimal(minor).StringFixed(minorUnitDigits)
}

// AmountToDecimal exposes minor units as a decimal in currency units.
func AmountToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitDigits)
}
