package data

import (
	"fmt"
	"io"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

const TradeSize = HeaderSize + 1 + fields.PriceDataSize + 1

type TradeStructure struct {
	Header
	Side      fields.TradeSide
	PriceData fields.PriceData
	End       fields.EndOfData
}

func (s *TradeStructure) layout() serializer.Layout {
	return append(s.Header.layout(),
		serializer.Fixed(1, &s.Side),
		serializer.Fixed(fields.PriceDataSize, &s.PriceData),
		serializer.Fixed(1, &s.End),
	)
}

func (s *TradeStructure) Serialize(w io.Writer) error   { return s.layout().Serialize(w) }
func (s *TradeStructure) Deserialize(r io.Reader) error { return s.layout().Deserialize(r) }

func TradeStructureFromMsg(msg *market.TradeMsg, received time.Time) (*TradeStructure, error) {
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

	pd, err := fields.PriceDataFromOrder(market.Order{Price: msg.Price, QuantityBase: msg.QuantityBase})
	if err != nil {
		return nil, err
	}
	return &TradeStructure{Header: h, Side: fields.TradeSide(msg.Side), PriceData: pd}, nil
}

// TradeMsg converts back. Quote quantity, contract quantity and trade id
// are not stored.
func (s *TradeStructure) TradeMsg() (*market.TradeMsg, error) {
	o, err := s.PriceData.Order()
	if err != nil {
		return nil, err
	}
	m := s.meta()
	return &market.TradeMsg{
		Exchange:     m.Exchange,
		MarketType:   m.MarketType,
		Symbol:       m.Symbol,
		Pair:         m.Pair,
		MsgType:      m.MsgType,
		Timestamp:    m.Timestamp,
		Side:         market.TradeSide(s.Side),
		Price:        o.Price,
		QuantityBase: o.QuantityBase,
	}, nil
}

func EncodeTrade(msg *market.TradeMsg) ([]byte, error) {
	s, err := TradeStructureFromMsg(msg, now())
	if err != nil {
		return nil, fmt.Errorf("encode trade: %w", err)
	}
	raw, err := encodeRecord(s)
	if err != nil {
		return nil, fmt.Errorf("encode trade: %w", err)
	}
	return raw, nil
}

func DecodeTrade(raw []byte) (*market.TradeMsg, error) {
	var s TradeStructure
	if err := decodeRecord(&s, raw); err != nil {
		return nil, fmt.Errorf("decode trade: %w", err)
	}
	msg, err := s.TradeMsg()
	if err != nil {
		return nil, fmt.Errorf("decode trade: %w", err)
	}
	return msg, nil
}
