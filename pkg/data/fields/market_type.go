package fields

import (
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// MarketType stores market.MarketType in 1 byte. Types without a code
// encode as 0 and any unassigned code decodes as market.MarketUnknown.
type MarketType market.MarketType

var marketTypeTable = lazyBimap(func() map[market.MarketType]uint8 {
	return map[market.MarketType]uint8{
		market.Spot:           1,
		market.LinearFuture:   2,
		market.InverseFuture:  3,
		market.LinearSwap:     4,
		market.InverseSwap:    5,
		market.EuropeanOption: 6,
		market.QuantoFuture:   7,
		market.QuantoSwap:     8,
	}
})

func (m *MarketType) Size() int { return 1 }

func (m *MarketType) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(m, dst); err != nil {
		return err
	}
	code, _ := marketTypeTable().byName(market.MarketType(*m))
	dst[0] = code
	return nil
}

func (m *MarketType) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(m, src); err != nil {
		return err
	}
	mt, ok := marketTypeTable().byCode(src[0])
	if !ok {
		mt = market.MarketUnknown
	}
	*m = MarketType(mt)
	return nil
}
