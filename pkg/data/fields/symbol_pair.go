package fields

import (
	"encoding/binary"

	"github.com/wmjtyd/libstock/pkg/data/serializer"
)

// UnknownPair is what an unassigned symbol code decodes to.
const UnknownPair = "UNKNOWN"

var symbolPairTable = lazyBimap(func() map[string]uint16 {
	return map[string]uint16{
		"BTC/USDT": 1,
		"BTC/USD":  2,
		"USDT/USD": 3,
		"ETH/USDT": 4,
		"ETH/USD":  5,
	}
})

// SymbolPair is a unified "BASE/QUOTE" pair and its 2-byte code.
type SymbolPair struct {
	Symbol uint16
	Pair   string
}

// SymbolPairFromPair looks up the code of pair; unknown pairs get code 0.
func SymbolPairFromPair(pair string) SymbolPair {
	code, _ := symbolPairTable().byName(pair)
	return SymbolPair{Symbol: code, Pair: pair}
}

// PairOf returns the pair for a code, or UnknownPair.
func PairOf(code uint16) string {
	if pair, ok := symbolPairTable().byCode(code); ok {
		return pair
	}
	return UnknownPair
}

func (s *SymbolPair) Size() int { return 2 }

func (s *SymbolPair) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(s, dst); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(dst, s.Symbol)
	return nil
}

func (s *SymbolPair) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(s, src); err != nil {
		return err
	}
	s.Symbol = binary.BigEndian.Uint16(src)
	s.Pair = PairOf(s.Symbol)
	return nil
}
