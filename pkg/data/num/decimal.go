package num

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxScale is the largest scale the signed-scale byte can carry (7 bits).
const MaxScale = 0x7f

const (
	signBit   = 0x80
	scaleMask = 0x7f
)

var (
	ErrMagnitudeOverflow = errors.New("num: magnitude does not fit the target width")
	ErrScaleOverflow     = errors.New("num: scale exceeds 127")
	ErrFloatOverflow     = errors.New("num: value is not representable as a finite float")
	ErrInvalidNumber     = errors.New("num: invalid number string")
)

// Decimal is a fixed-point decimal number: Mantissa × 10^-Scale,
// negated when Negative is set.
//
// Negative is kept even when Mantissa is zero, so "-0.00" survives
// a round trip through the codec.
type Decimal struct {
	Mantissa uint64
	Scale    uint8
	Negative bool
}

// New builds a Decimal from its parts.
func New(mantissa uint64, scale uint8, negative bool) Decimal {
	return Decimal{Mantissa: mantissa, Scale: scale, Negative: negative}
}

// FromDecimal converts a shopspring decimal. A positive exponent is folded
// into the mantissa, so 1.28e3 becomes mantissa 1280 with scale 0.
func FromDecimal(d decimal.Decimal) (Decimal, error) {
	coef := d.Coefficient()
	exp := d.Exponent()

	negative := coef.Sign() < 0
	coef.Abs(coef)

	var scale uint8
	switch {
	case exp > 0:
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	case exp < -MaxScale:
		return Decimal{}, fmt.Errorf("%w: scale %d", ErrScaleOverflow, -int64(exp))
	default:
		scale = uint8(-exp)
	}

	if !coef.IsUint64() {
		return Decimal{}, fmt.Errorf("%w: %s", ErrMagnitudeOverflow, coef.String())
	}

	return Decimal{Mantissa: coef.Uint64(), Scale: scale, Negative: negative}, nil
}

// Parse reads an exact decimal string. Trailing zeros after the point are
// significant: "512.000" has scale 3.
func Parse(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	out, err := FromDecimal(d)
	if err != nil {
		return Decimal{}, err
	}
	if out.Mantissa == 0 && strings.HasPrefix(s, "-") {
		out.Negative = true
	}
	return out, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromFloat64 converts a float using its shortest round-trip
// representation, so 12345.12345 becomes mantissa 1234512345, scale 5.
func FromFloat64(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("%w: %v", ErrFloatOverflow, f)
	}

	out, err := FromDecimal(decimal.NewFromFloat(f))
	if err != nil {
		return Decimal{}, err
	}
	if out.Mantissa == 0 && math.Signbit(f) {
		out.Negative = true
	}
	return out, nil
}

// Decimal converts back to a shopspring decimal. Negative zero collapses
// to zero there.
func (d Decimal) Decimal() decimal.Decimal {
	coef := new(big.Int).SetUint64(d.Mantissa)
	if d.Negative {
		coef.Neg(coef)
	}
	return decimal.NewFromBigInt(coef, -int32(d.Scale))
}

// Float64 returns the nearest float.
func (d Decimal) Float64() (float64, error) {
	f := d.Decimal().InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %s", ErrFloatOverflow, d.String())
	}
	if f == 0 && d.Negative {
		return math.Copysign(0, -1), nil
	}
	return f, nil
}

func (d Decimal) IsZero() bool { return d.Mantissa == 0 }

// String prints the value with exactly Scale fractional digits.
func (d Decimal) String() string {
	s := d.Decimal().StringFixed(int32(d.Scale))
	if d.Negative && d.Mantissa == 0 {
		return "-" + s
	}
	return s
}
