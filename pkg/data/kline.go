package data

import (
	"fmt"
	"io"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

const KlineSize = HeaderSize + 1 + fields.KlineIndicatorsSize + 1

type KlineStructure struct {
	Header
	Period     fields.Period
	Indicators fields.KlineIndicators
	End        fields.EndOfData
}

func (s *KlineStructure) layout() serializer.Layout {
	return append(s.Header.layout(),
		serializer.Fixed(1, &s.Period),
		serializer.Fixed(fields.KlineIndicatorsSize, &s.Indicators),
		serializer.Fixed(1, &s.End),
	)
}

func (s *KlineStructure) Serialize(w io.Writer) error   { return s.layout().Serialize(w) }
func (s *KlineStructure) Deserialize(r io.Reader) error { return s.layout().Deserialize(r) }

func KlineStructureFromMsg(msg *market.KlineMsg, received time.Time) (*KlineStructure, error) {
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

	var k fields.KlineIndicators
	for _, p := range []struct {
		dst *fields.Decimal5
		v   float64
	}{
		{&k.Open, msg.Open},
		{&k.High, msg.High},
		{&k.Low, msg.Low},
		{&k.Close, msg.Close},
	} {
		if *p.dst, err = fields.NewDecimal5(p.v); err != nil {
			return nil, err
		}
	}
	if k.Volume, err = fields.NewDecimal10(msg.Volume); err != nil {
		return nil, err
	}

	return &KlineStructure{Header: h, Period: fields.Period(msg.Period), Indicators: k}, nil
}

// KlineMsg converts back; QuoteVolume is not stored.
func (s *KlineStructure) KlineMsg() (*market.KlineMsg, error) {
	k := &s.Indicators
	v, err := toFloats(&k.Open, &k.High, &k.Low, &k.Close)
	if err != nil {
		return nil, err
	}
	volume, err := k.Volume.Float64()
	if err != nil {
		return nil, err
	}

	m := s.meta()
	return &market.KlineMsg{
		Exchange:   m.Exchange,
		MarketType: m.MarketType,
		Symbol:     m.Symbol,
		Pair:       m.Pair,
		MsgType:    m.MsgType,
		Timestamp:  m.Timestamp,
		Period:     string(s.Period),
		Open:       v[0],
		High:       v[1],
		Low:        v[2],
		Close:      v[3],
		Volume:     volume,
	}, nil
}

func EncodeKline(msg *market.KlineMsg) ([]byte, error) {
	s, err := KlineStructureFromMsg(msg, now())
	if err != nil {
		return nil, fmt.Errorf("encode kline: %w", err)
	}
	raw, err := encodeRecord(s)
	if err != nil {
		return nil, fmt.Errorf("encode kline: %w", err)
	}
	return raw, nil
}

func DecodeKline(raw []byte) (*market.KlineMsg, error) {
	var s KlineStructure
	if err := decodeRecord(&s, raw); err != nil {
		return nil, fmt.Errorf("decode kline: %w", err)
	}
	msg, err := s.KlineMsg()
	if err != nil {
		return nil, fmt.Errorf("decode kline: %w", err)
	}
	return msg, nil
}
