package sfv

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal errors
var (
	ErrDecimalOverflow = errors.New("sfv: decimal coefficient overflow")
	ErrDecimalSyntax   = errors.New("sfv: invalid decimal syntax")
)

// maxDecimalScale bounds the number of fractional digits a Decimal can hold.
const maxDecimalScale = 18

// Decimal is a fixed-point decimal number: value = coef * 10^(-scale).
//
// Values are kept normalized (no trailing fractional zeros), so two Decimals
// holding the same number are equal under both Equal and ==. A Decimal may hold
// more than three fractional digits in memory; serialization rounds it.
type Decimal struct {
	coef  int64
	scale uint8
}

// NewDecimal returns coef * 10^(-scale).
func NewDecimal(coef int64, scale int) (Decimal, error) {
	if scale < 0 || scale > maxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: scale %d out of range", ErrDecimalOverflow, scale)
	}
	return Decimal{coef: coef, scale: uint8(scale)}.normalize(), nil
}

// MustDecimal is like NewDecimalFromString but panics on error.
func MustDecimal(s string) Decimal {
	d, err := NewDecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimalFromString parses a plain decimal literal such as "12.5", "-0.001" or "7".
// Exponents are not accepted.
func NewDecimalFromString(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, ErrDecimalSyntax
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || (hasDot && fracPart == "") {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
	}
	for i := 0; i < len(intPart); i++ {
		if !isDigit(intPart[i]) {
			return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
		}
	}
	for i := 0; i < len(fracPart); i++ {
		if !isDigit(fracPart[i]) {
			return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
		}
	}

	// Trailing fractional zeros carry no value; dropping them first keeps
	// literals like "1.50000000000000000000" within range.
	fracPart = strings.TrimRight(fracPart, "0")
	intPart = strings.TrimLeft(intPart, "0")
	if len(fracPart) > maxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalOverflow, s)
	}

	digits := intPart + fracPart
	var coef uint64
	if digits != "" {
		var err error
		coef, err = strconv.ParseUint(digits, 10, 64)
		if err != nil || coef > math.MaxInt64 {
			return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalOverflow, s)
		}
	}

	c := int64(coef)
	if neg {
		c = -c
	}
	return Decimal{coef: c, scale: uint8(len(fracPart))}.normalize(), nil
}

// NewDecimalFromFloat converts f using its shortest round-trip representation.
// NaN and infinities are rejected.
func NewDecimalFromFloat(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("%w: %v", ErrDecimalSyntax, f)
	}
	return NewDecimalFromString(strconv.FormatFloat(f, 'f', -1, 64))
}

func (d Decimal) normalize() Decimal {
	for d.scale > 0 && d.coef%10 == 0 {
		d.coef /= 10
		d.scale--
	}
	if d.coef == 0 {
		d.scale = 0
	}
	return d
}

// Coefficient returns the unscaled integer value.
func (d Decimal) Coefficient() int64 { return d.coef }

// Scale returns the number of fractional digits.
func (d Decimal) Scale() int { return int(d.scale) }

// Sign returns -1, 0 or +1.
func (d Decimal) Sign() int {
	switch {
	case d.coef < 0:
		return -1
	case d.coef > 0:
		return 1
	}
	return 0
}

// Equal reports whether d and other hold the same number.
func (d Decimal) Equal(other Decimal) bool {
	return d.normalize() == other.normalize()
}

// Float64 converts the decimal to float64. Precision may be lost.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.String(), 64)
	return f
}

// String returns the exact value with at least one fractional digit.
func (d Decimal) String() string {
	var b strings.Builder
	writeDecimalDigits(&b, d.Sign() < 0, magnitude(d.coef), int(d.scale))
	return b.String()
}

// Round rounds d to the given number of fractional digits using
// round-half-to-even. The remainder is compared exactly against one half unit
// of the last kept digit, so only a true tie goes to the even neighbour.
func (d Decimal) Round(places int) Decimal {
	if places < 0 {
		places = 0
	}
	if int(d.scale) <= places {
		return d
	}

	// scale never exceeds maxDecimalScale, so the divisor fits in a uint64.
	div := pow10u(int(d.scale) - places)
	mag := magnitude(d.coef)
	q, r := mag/div, mag%div
	if half := div / 2; r > half || (r == half && q%2 == 1) {
		q++
	}

	c := int64(q)
	if d.coef < 0 {
		c = -c
	}
	return Decimal{coef: c, scale: uint8(places)}.normalize()
}

// integerDigits returns the number of digits left of the decimal point,
// counting a lone zero as one digit.
func (d Decimal) integerDigits() int {
	ip := magnitude(d.coef) / pow10u(int(d.scale))
	n := 1
	for ip >= 10 {
		ip /= 10
		n++
	}
	return n
}

func writeDecimalDigits(b *strings.Builder, neg bool, mag uint64, scale int) {
	if neg && mag != 0 {
		b.WriteByte('-')
	}
	digits := strconv.FormatUint(mag, 10)
	for len(digits) < scale+1 {
		digits = "0" + digits
	}
	cut := len(digits) - scale
	b.WriteString(digits[:cut])
	b.WriteByte('.')
	if scale == 0 {
		b.WriteByte('0')
		return
	}
	b.WriteString(digits[cut:])
}

func magnitude(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

func pow10u(n int) uint64 {
	p := uint64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
