package data

import (
	"fmt"
	"io"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// BboSize is the encoded length of a BBO record.
const BboSize = HeaderSize + 2*fields.PriceDataSize + 1

// BboStructure is the best bid and offer record.
type BboStructure struct {
	Header
	Asks fields.PriceData
	Bids fields.PriceData
	End  fields.EndOfData
}

func (s *BboStructure) layout() serializer.Layout {
	return append(s.Header.layout(),
		serializer.Fixed(fields.PriceDataSize, &s.Asks),
		serializer.Fixed(fields.PriceDataSize, &s.Bids),
		serializer.Fixed(1, &s.End),
	)
}

func (s *BboStructure) Serialize(w io.Writer) error   { return s.layout().Serialize(w) }
func (s *BboStructure) Deserialize(r io.Reader) error { return s.layout().Deserialize(r) }

// BboStructureFromMsg keeps price and base quantity of both sides.
func BboStructureFromMsg(msg *market.BboMsg, received time.Time) (*BboStructure, error) {
	h, err := newHeader(meta{
		Exchange:   msg.Exchange,
		MarketType: msg.MarketType,
		MsgType:    msg.MsgType,
		Pair:       msg.Pair,
		Timestamp:  msg.Timestamp,
	}, received)
	if err != nil {
		return nil, err
	}

	asks, err := fields.PriceDataFromOrder(market.Order{Price: msg.AskPrice, QuantityBase: msg.AskQuantityBase})
	if err != nil {
		return nil, fmt.Errorf("asks: %w", err)
	}
	bids, err := fields.PriceDataFromOrder(market.Order{Price: msg.BidPrice, QuantityBase: msg.BidQuantityBase})
	if err != nil {
		return nil, fmt.Errorf("bids: %w", err)
	}

	return &BboStructure{Header: h, Asks: asks, Bids: bids}, nil
}

// BboMsg converts back. Quote and contract quantities are zero and nil.
func (s *BboStructure) BboMsg() (*market.BboMsg, error) {
	v, err := toFloats(&s.Asks.Price, &s.Asks.QuantityBase, &s.Bids.Price, &s.Bids.QuantityBase)
	if err != nil {
		return nil, err
	}
	m := s.meta()
	return &market.BboMsg{
		Exchange:        m.Exchange,
		MarketType:      m.MarketType,
		Symbol:          m.Symbol,
		Pair:            m.Pair,
		MsgType:         m.MsgType,
		Timestamp:       m.Timestamp,
		AskPrice:        v[0],
		AskQuantityBase: v[1],
		BidPrice:        v[2],
		BidQuantityBase: v[3],
	}, nil
}

func EncodeBBO(msg *market.BboMsg) ([]byte, error) {
	s, err := BboStructureFromMsg(msg, now())
	if err != nil {
		return nil, fmt.Errorf("encode bbo: %w", err)
	}
	raw, err := encodeRecord(s)
	if err != nil {
		return nil, fmt.Errorf("encode bbo: %w", err)
	}
	return raw, nil
}

func DecodeBBO(raw []byte) (*market.BboMsg, error) {
	var s BboStructure
	if err := decodeRecord(&s, raw); err != nil {
		return nil, fmt.Errorf("decode bbo: %w", err)
	}
	msg, err := s.BboMsg()
	if err != nil {
		return nil, fmt.Errorf("decode bbo: %w", err)
	}
	return msg, nil
}
