package data

import (
	"fmt"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/market"
)

// Kind names one of the five record layouts.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBBO
	KindTrade
	KindKline
	KindFundingRate
	KindOrderbook
)

var kindNames = map[Kind]string{
	KindBBO:         "bbo",
	KindTrade:       "trade",
	KindKline:       "kline",
	KindFundingRate: "funding_rate",
	KindOrderbook:   "orderbook",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("data: unknown record kind %q", name)
}

// Kinds lists every known kind.
func Kinds() []Kind {
	return []Kind{KindBBO, KindTrade, KindKline, KindFundingRate, KindOrderbook}
}

// KindOfMessageType maps a message type to the layout that stores it.
func KindOfMessageType(mt market.MessageType) Kind {
	switch mt {
	case market.MsgBBO:
		return KindBBO
	case market.MsgTrade:
		return KindTrade
	case market.MsgCandlestick:
		return KindKline
	case market.MsgFundingRate:
		return KindFundingRate
	case market.MsgL2Snapshot, market.MsgL2Event, market.MsgL2TopK:
		return KindOrderbook
	default:
		return KindUnknown
	}
}

// KindOf sniffs the message-type byte of an encoded record.
func KindOf(raw []byte) Kind {
	if len(raw) < HeaderSize {
		return KindUnknown
	}
	return KindOfMessageType(fields.MessageTypeOf(raw[offsetMessageType]))
}

// DecodeAny decodes raw as kind and returns a pointer to the message.
func DecodeAny(kind Kind, raw []byte) (any, error) {
	switch kind {
	case KindBBO:
		return DecodeBBO(raw)
	case KindTrade:
		return DecodeTrade(raw)
	case KindKline:
		return DecodeKline(raw)
	case KindFundingRate:
		return DecodeFundingRate(raw)
	case KindOrderbook:
		return DecodeOrderBook(raw)
	default:
		return nil, fmt.Errorf("data: cannot decode kind %v", kind)
	}
}

// EncodeAny encodes one of the five message pointer types.
func EncodeAny(msg any) (Kind, []byte, error) {
	var (
		kind Kind
		raw  []byte
		err  error
	)
	switch m := msg.(type) {
	case *market.BboMsg:
		kind = KindBBO
		raw, err = EncodeBBO(m)
	case *market.TradeMsg:
		kind = KindTrade
		raw, err = EncodeTrade(m)
	case *market.KlineMsg:
		kind = KindKline
		raw, err = EncodeKline(m)
	case *market.FundingRateMsg:
		kind = KindFundingRate
		raw, err = EncodeFundingRate(m)
	case *market.OrderBookMsg:
		kind = KindOrderbook
		raw, err = EncodeOrderBook(m)
	default:
		return KindUnknown, nil, fmt.Errorf("data: cannot encode %T", msg)
	}
	return kind, raw, err
}
