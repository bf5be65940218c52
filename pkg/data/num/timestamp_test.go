package num

import (
	"errors"
	"testing"
)

func TestTimestamp(t *testing.T) {
	tests := []struct {
		ts   uint64
		want [TimestampSize]byte
	}{
		{1656991593000, [TimestampSize]byte{1, 129, 204, 101, 50, 40}},
		{0, [TimestampSize]byte{}},
		{MaxTimestamp, [TimestampSize]byte{255, 255, 255, 255, 255, 255}},
	}
	for _, tt := range tests {
		got, err := UnixMsToSixBytes(tt.ts)
		if err != nil {
			t.Fatalf("UnixMsToSixBytes(%d) error: %v", tt.ts, err)
		}
		if got != tt.want {
			t.Errorf("UnixMsToSixBytes(%d) = %v, want %v", tt.ts, got, tt.want)
		}
		if back := SixBytesToUnixMs(got); back != tt.ts {
			t.Errorf("SixBytesToUnixMs = %d, want %d", back, tt.ts)
		}
	}
}

func TestTimestamp_Overflow(t *testing.T) {
	if _, err := UnixMsToSixBytes(MaxTimestamp + 1); !errors.Is(err, ErrTimestampOverflow) {
		t.Errorf("err = %v, want ErrTimestampOverflow", err)
	}
}
