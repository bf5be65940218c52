package fields

import (
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// TradeSide stores market.TradeSide as 1 (buy) or 2 (sell).
type TradeSide market.TradeSide

func (s *TradeSide) Size() int { return 1 }

func (s *TradeSide) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(s, dst); err != nil {
		return err
	}
	switch market.TradeSide(*s) {
	case market.Buy:
		dst[0] = 1
	case market.Sell:
		dst[0] = 2
	default:
		return &Error{Kind: KindUnexpectedTradeSide, Value: string(*s)}
	}
	return nil
}

func (s *TradeSide) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(s, src); err != nil {
		return err
	}
	switch src[0] {
	case 1:
		*s = TradeSide(market.Buy)
	case 2:
		*s = TradeSide(market.Sell)
	default:
		return &Error{Kind: KindUnexpectedTradeSide, Value: src[0]}
	}
	return nil
}
