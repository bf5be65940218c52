package fields

import (
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// MessageType stores market.MessageType in 1 byte.
//
// The table is a fixed switch rather than a bijection: long_short_ratio and
// taker_volume have codes on encode but decode back as market.MsgOther.
type MessageType market.MessageType

// MessageTypeCode is the wire code of mt, 0 when it has none.
func MessageTypeCode(mt market.MessageType) uint8 {
	switch mt {
	case market.MsgTrade:
		return 1
	case market.MsgBBO:
		return 2
	case market.MsgL2TopK:
		return 3
	case market.MsgL2Snapshot:
		return 4
	case market.MsgL2Event:
		return 5
	case market.MsgL3Snapshot:
		return 6
	case market.MsgL3Event:
		return 7
	case market.MsgTicker:
		return 8
	case market.MsgCandlestick:
		return 9
	case market.MsgOpenInterest:
		return 10
	case market.MsgFundingRate:
		return 11
	case market.MsgLongShortRatio:
		return 12
	case market.MsgTakerVolume:
		return 13
	default:
		return 0
	}
}

// MessageTypeOf decodes a wire code; unassigned codes are market.MsgOther.
func MessageTypeOf(code uint8) market.MessageType {
	switch code {
	case 1:
		return market.MsgTrade
	case 2:
		return market.MsgBBO
	case 3:
		return market.MsgL2TopK
	case 4:
		return market.MsgL2Snapshot
	case 5:
		return market.MsgL2Event
	case 6:
		return market.MsgL3Snapshot
	case 7:
		return market.MsgL3Event
	case 8:
		return market.MsgTicker
	case 9:
		return market.MsgCandlestick
	case 10:
		return market.MsgOpenInterest
	case 11:
		return market.MsgFundingRate
	default:
		return market.MsgOther
	}
}

func (m *MessageType) Size() int { return 1 }

func (m *MessageType) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(m, dst); err != nil {
		return err
	}
	dst[0] = MessageTypeCode(market.MessageType(*m))
	return nil
}

func (m *MessageType) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(m, src); err != nil {
		return err
	}
	*m = MessageType(MessageTypeOf(src[0]))
	return nil
}
