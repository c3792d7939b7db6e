// Package amount provides exact decimal/base-unit conversion and validation.
// Amounts are unsigned 64-bit base units, matching the ledger's u64 balance
// representation. All user-facing decimal strings enter the system through
// ToBaseUnits; no other component constructs amounts from raw display input.
package amount

import (
	"fmt"
	"math"
	"strings"

	"github.com/helios-labs/tokenops/internal/errors"
)

// DefaultDecimals is the number of fractional digits of the display unit.
// One display unit is 10^9 base units.
const DefaultDecimals = 9

// Amount is a non-negative integer amount in base units.
type Amount uint64

// MaxAmount is the largest representable base-unit amount.
const MaxAmount = Amount(math.MaxUint64)

// ToBaseUnits converts a decimal string into base units.
//
// The fractional part is padded or truncated to exactly `decimals` digits:
// excess precision is silently discarded, never rounded. "1.0000000005" and
// "1.000000000" convert to the same value.
func ToBaseUnits(input string, decimals int) (Amount, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, errors.NewInvalidAmountFormat(input, "empty string")
	}
	if strings.HasPrefix(s, "-") {
		return 0, errors.NewNegativeAmount(input)
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return 0, errors.NewInvalidAmountFormat(input, "multiple decimal separators")
		}
	}
	if intPart == "" && fracPart == "" {
		return 0, errors.NewInvalidAmountFormat(input, "no digits")
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return 0, errors.NewInvalidAmountFormat(input, "non-numeric characters")
	}

	// Truncate or pad the fractional part to exactly `decimals` digits.
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	for len(fracPart) < decimals {
		fracPart += "0"
	}

	whole, err := parseUint(intPart)
	if err != nil {
		return 0, errors.NewArithmeticOverflow(fmt.Sprintf("integer part %q does not fit in 64 bits", intPart))
	}
	frac := uint64(0)
	if decimals > 0 {
		frac, err = parseUint(fracPart)
		if err != nil {
			return 0, errors.NewArithmeticOverflow(fmt.Sprintf("fractional part %q does not fit in 64 bits", fracPart))
		}
	}

	scale, ok := pow10(decimals)
	if !ok {
		return 0, errors.NewArithmeticOverflow(fmt.Sprintf("10^%d exceeds 64 bits", decimals))
	}
	if whole != 0 && whole > math.MaxUint64/scale {
		return 0, errors.NewArithmeticOverflow(fmt.Sprintf("%s * 10^%d exceeds 64 bits", intPart, decimals))
	}
	scaled := whole * scale
	if scaled > math.MaxUint64-frac {
		return 0, errors.NewArithmeticOverflow(fmt.Sprintf("%s.%s exceeds 64 bits in base units", intPart, fracPart))
	}
	return Amount(scaled + frac), nil
}

// ToDisplay converts base units back into a decimal string for presentation.
// Trailing fractional zeros are trimmed, so 1_000_000_000 base units render
// as "1". The round trip ToDisplay(ToBaseUnits(s)) == s holds for every
// exact decimal string with at most `decimals` fractional digits and no
// trailing fractional zeros.
func ToDisplay(a Amount, decimals int) string {
	scale, ok := pow10(decimals)
	if !ok || decimals == 0 {
		return fmt.Sprintf("%d", uint64(a))
	}
	whole := uint64(a) / scale
	frac := uint64(a) % scale
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	fracStr := fmt.Sprintf("%0*d", decimals, frac)
	fracStr = strings.TrimRight(fracStr, "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}

// ValidateOptions controls amount validation.
type ValidateOptions struct {
	// Operation names the operation being validated, for error reporting.
	Operation string

	// AllowZero permits a zero amount.
	AllowZero bool

	// MaxSupply, when non-zero, is the supply cap the amount must not
	// exceed. The cap is supplied by a collaborator, never computed here.
	MaxSupply Amount
}

// Validate checks an amount against the given options. Negative amounts are
// unrepresentable by construction; the string parser rejects them earlier.
func Validate(a Amount, opts ValidateOptions) error {
	if a == 0 && !opts.AllowZero {
		return errors.NewZeroAmount(opts.Operation)
	}
	if opts.MaxSupply > 0 && a > opts.MaxSupply {
		return errors.NewExceedsMaxSupply(uint64(a), uint64(opts.MaxSupply))
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// parseUint parses a digit string without strconv's sign/base handling,
// overflowing explicitly.
func parseUint(s string) (uint64, error) {
	var n uint64
	for i := 0; i < len(s); i++ {
		d := uint64(s[i] - '0')
		if n > (math.MaxUint64-d)/10 {
			return 0, fmt.Errorf("overflow")
		}
		n = n*10 + d
	}
	return n, nil
}

func pow10(n int) (uint64, bool) {
	if n < 0 || n > 19 {
		return 0, false
	}
	p := uint64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p, true
}
