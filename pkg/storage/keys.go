package storage

import (
	"encoding/binary"
	"errors"

	"github.com/wmjtyd/libstock/pkg/data"
)

// Key schema:
//
//	r:<kind 1B>:<symbol 2B>:<exchange ts 8B>:<seq 8B>  -> encoded record
//	sq                                                 -> last seq, 8B
//
// Integers are big-endian so keys of one kind and symbol sort by time.
const (
	prefixRecord = "r:"
	keySeq       = "sq"

	recordKeyLen = len(prefixRecord) + 1 + 1 + 2 + 1 + 8 + 1 + 8
)

var ErrBadKey = errors.New("storage: malformed record key")

// Key identifies one stored record.
type Key struct {
	Kind      data.Kind
	Symbol    uint16
	Timestamp uint64
	Seq       uint64
}

func (k Key) bytes() []byte {
	b := seriesPrefix(k.Kind, k.Symbol)
	b = binary.BigEndian.AppendUint64(b, k.Timestamp)
	b = append(b, ':')
	return binary.BigEndian.AppendUint64(b, k.Seq)
}

func parseKey(b []byte) (Key, error) {
	if len(b) != recordKeyLen || string(b[:len(prefixRecord)]) != prefixRecord {
		return Key{}, ErrBadKey
	}
	b = b[len(prefixRecord):]
	if b[1] != ':' || b[4] != ':' || b[13] != ':' {
		return Key{}, ErrBadKey
	}
	return Key{
		Kind:      data.Kind(b[0]),
		Symbol:    binary.BigEndian.Uint16(b[2:4]),
		Timestamp: binary.BigEndian.Uint64(b[5:13]),
		Seq:       binary.BigEndian.Uint64(b[14:22]),
	}, nil
}

// seriesPrefix covers every record of one kind and symbol.
// Format: "r:{kind}:{symbol}:"
func seriesPrefix(kind data.Kind, symbol uint16) []byte {
	b := make([]byte, 0, recordKeyLen)
	b = append(b, prefixRecord...)
	b = append(b, byte(kind), ':')
	b = binary.BigEndian.AppendUint16(b, symbol)
	return append(b, ':')
}

// timeBound is the first key of the series at ts.
func timeBound(kind data.Kind, symbol uint16, ts uint64) []byte {
	return binary.BigEndian.AppendUint64(seriesPrefix(kind, symbol), ts)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	for i := len(bound) - 1; i >= 0; i-- {
		if bound[i] < 0xff {
			bound[i]++
			return bound[:i+1]
		}
	}
	return nil
}
