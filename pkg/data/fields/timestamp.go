package fields

import (
	"time"

	"github.com/wmjtyd/libstock/pkg/data/num"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
)

// Timestamp is a Unix millisecond timestamp stored in 6 bytes.
type Timestamp uint64

// TimestampAt converts a wall-clock time.
func TimestampAt(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

func (t *Timestamp) Size() int { return num.TimestampSize }

func (t *Timestamp) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(t, dst); err != nil {
		return err
	}
	enc, err := num.UnixMsToSixBytes(uint64(*t))
	if err != nil {
		return numError(err)
	}
	copy(dst, enc[:])
	return nil
}

func (t *Timestamp) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(t, src); err != nil {
		return err
	}
	*t = Timestamp(num.SixBytesToUnixMs([num.TimestampSize]byte(src)))
	return nil
}
