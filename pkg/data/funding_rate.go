package data

import (
	"fmt"
	"io"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

const FundingRateSize = HeaderSize + 10 + 6 + 10 + 1

type FundingRateStructure struct {
	Header
	FundingRate   fields.Decimal10
	FundingTime   fields.Timestamp
	EstimatedRate fields.Decimal10
	End           fields.EndOfData
}

func (s *FundingRateStructure) layout() serializer.Layout {
	return append(s.Header.layout(),
		serializer.Fixed(10, &s.FundingRate),
		serializer.Fixed(6, &s.FundingTime),
		serializer.Fixed(10, &s.EstimatedRate),
		serializer.Fixed(1, &s.End),
	)
}

func (s *FundingRateStructure) Serialize(w io.Writer) error   { return s.layout().Serialize(w) }
func (s *FundingRateStructure) Deserialize(r io.Reader) error { return s.layout().Deserialize(r) }

// FundingRateStructureFromMsg fails with ErrMissingEstimatedRate when the
// message has no estimated rate.
func FundingRateStructureFromMsg(msg *market.FundingRateMsg, received time.Time) (*FundingRateStructure, error) {
	if msg.EstimatedRate == nil {
		return nil, ErrMissingEstimatedRate
	}
	if msg.FundingTime < 0 {
		return nil, fmt.Errorf("funding_time: %w: %d", ErrNegativeTimestamp, msg.FundingTime)
	}
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

	rate, err := fields.NewDecimal10(msg.FundingRate)
	if err != nil {
		return nil, err
	}
	estimated, err := fields.NewDecimal10(*msg.EstimatedRate)
	if err != nil {
		return nil, err
	}

	return &FundingRateStructure{
		Header:        h,
		FundingRate:   rate,
		FundingTime:   fields.Timestamp(msg.FundingTime),
		EstimatedRate: estimated,
	}, nil
}

func (s *FundingRateStructure) FundingRateMsg() (*market.FundingRateMsg, error) {
	rate, err := s.FundingRate.Float64()
	if err != nil {
		return nil, err
	}
	estimated, err := s.EstimatedRate.Float64()
	if err != nil {
		return nil, err
	}

	m := s.meta()
	return &market.FundingRateMsg{
		Exchange:      m.Exchange,
		MarketType:    m.MarketType,
		Symbol:        m.Symbol,
		Pair:          m.Pair,
		MsgType:       m.MsgType,
		Timestamp:     m.Timestamp,
		FundingRate:   rate,
		FundingTime:   int64(s.FundingTime),
		EstimatedRate: &estimated,
	}, nil
}

func EncodeFundingRate(msg *market.FundingRateMsg) ([]byte, error) {
	s, err := FundingRateStructureFromMsg(msg, now())
	if err != nil {
		return nil, fmt.Errorf("encode funding rate: %w", err)
	}
	raw, err := encodeRecord(s)
	if err != nil {
		return nil, fmt.Errorf("encode funding rate: %w", err)
	}
	return raw, nil
}

func DecodeFundingRate(raw []byte) (*market.FundingRateMsg, error) {
	var s FundingRateStructure
	if err := decodeRecord(&s, raw); err != nil {
		return nil, fmt.Errorf("decode funding rate: %w", err)
	}
	msg, err := s.FundingRateMsg()
	if err != nil {
		return nil, fmt.Errorf("decode funding rate: %w", err)
	}
	return msg, nil
}
