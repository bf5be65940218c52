package num

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TimestampSize is the encoded width of a Unix millisecond timestamp.
const TimestampSize = 6

// MaxTimestamp is the largest value that fits in 48 bits.
const MaxTimestamp = 1<<48 - 1

var ErrTimestampOverflow = errors.New("num: timestamp does not fit in 48 bits")

// UnixMsToSixBytes writes the low 48 bits of ts big-endian. The top two
// bytes of the 64-bit value must be zero.
func UnixMsToSixBytes(ts uint64) ([TimestampSize]byte, error) {
	var out [TimestampSize]byte
	if ts > MaxTimestamp {
		return out, fmt.Errorf("%w: %d", ErrTimestampOverflow, ts)
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], ts)
	copy(out[:], buf[2:])
	return out, nil
}

// SixBytesToUnixMs reads a 48-bit big-endian timestamp.
func SixBytesToUnixMs(src [TimestampSize]byte) uint64 {
	var buf [8]byte
	copy(buf[2:], src[:])
	return binary.BigEndian.Uint64(buf[:])
}
