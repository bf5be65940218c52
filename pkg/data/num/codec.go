package num

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoded widths.
const (
	Size5  = 5
	Size10 = 10
)

// Encode5 packs d into the 5-byte form:
//
//	[0..4) big-endian uint32 mantissa
//	[4]    signed scale (bit 7 sign, bits 0-6 scale)
func Encode5(d Decimal) ([Size5]byte, error) {
	var out [Size5]byte

	if d.Mantissa > math.MaxUint32 {
		return out, fmt.Errorf("%w: %d > uint32", ErrMagnitudeOverflow, d.Mantissa)
	}
	ss, err := signedScale(d)
	if err != nil {
		return out, err
	}

	binary.BigEndian.PutUint32(out[0:4], uint32(d.Mantissa))
	out[4] = ss
	return out, nil
}

// Encode10 packs d into the 10-byte form:
//
//	[0]     reserved, zero
//	[1..9)  big-endian uint64 mantissa
//	[9]     signed scale
func Encode10(d Decimal) ([Size10]byte, error) {
	var out [Size10]byte

	ss, err := signedScale(d)
	if err != nil {
		return out, err
	}

	binary.BigEndian.PutUint64(out[1:9], d.Mantissa)
	out[9] = ss
	return out, nil
}

// Decode5 is total: any 5 bytes decode to some Decimal.
func Decode5(src [Size5]byte) Decimal {
	scale, negative := SplitSignedScale(src[4])
	return Decimal{
		Mantissa: uint64(binary.BigEndian.Uint32(src[0:4])),
		Scale:    scale,
		Negative: negative,
	}
}

// Decode10 ignores the reserved first byte.
func Decode10(src [Size10]byte) Decimal {
	scale, negative := SplitSignedScale(src[9])
	return Decimal{
		Mantissa: binary.BigEndian.Uint64(src[1:9]),
		Scale:    scale,
		Negative: negative,
	}
}

func signedScale(d Decimal) (byte, error) {
	if d.Scale > MaxScale {
		return 0, fmt.Errorf("%w: scale %d", ErrScaleOverflow, d.Scale)
	}
	return MergeSignedScale(d.Scale, d.Negative), nil
}

// MergeSignedScale packs a 7-bit scale and the sign into one byte.
func MergeSignedScale(scale uint8, negative bool) byte {
	if negative {
		return (scale & scaleMask) | signBit
	}
	return scale & scaleMask
}

// SplitSignedScale is the inverse of MergeSignedScale.
func SplitSignedScale(b byte) (scale uint8, negative bool) {
	return b & scaleMask, b&signBit != 0
}
