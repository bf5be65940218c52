// Package data maps market messages to their binary records.
//
// Every record starts with the same 17-byte header and ends with a 0x00
// sentinel. Records carry no length prefix; the caller must know where a
// record ends.
package data

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// HeaderSize is the width of the common header.
const HeaderSize = 17

// offsetMessageType is where the message-type byte sits in the header.
const offsetMessageType = 14

var (
	ErrNegativeTimestamp    = errors.New("data: timestamp is negative")
	ErrMissingEstimatedRate = errors.New("data: estimated_rate in FundingRateMsg is nil")
)

// now stamps the received timestamp on encode.
var now = time.Now

// Header is shared by all record kinds. ReceivedTimestamp is written at
// encode time and is not carried back into messages.
type Header struct {
	ExchangeTimestamp fields.Timestamp
	ReceivedTimestamp fields.Timestamp
	Exchange          fields.Exchange
	MarketType        fields.MarketType
	MessageType       fields.MessageType
	Symbol            fields.SymbolPair
}

func (h *Header) layout() serializer.Layout {
	return serializer.Layout{
		serializer.Fixed(6, &h.ExchangeTimestamp),
		serializer.Fixed(6, &h.ReceivedTimestamp),
		serializer.Fixed(1, &h.Exchange),
		serializer.Fixed(1, &h.MarketType),
		serializer.Fixed(1, &h.MessageType),
		serializer.Fixed(2, &h.Symbol),
	}
}

// meta is the header as it appears on every message.
type meta struct {
	Exchange   string
	MarketType market.MarketType
	MsgType    market.MessageType
	Pair       string
	Symbol     string
	Timestamp  int64
}

func newHeader(m meta, received time.Time) (Header, error) {
	if m.Timestamp < 0 {
		return Header{}, fmt.Errorf("%w: %d", ErrNegativeTimestamp, m.Timestamp)
	}
	exchange, err := fields.ParseExchange(m.Exchange)
	if err != nil {
		return Header{}, err
	}
	return Header{
		ExchangeTimestamp: fields.Timestamp(m.Timestamp),
		ReceivedTimestamp: fields.TimestampAt(received),
		Exchange:          exchange,
		MarketType:        fields.MarketType(m.MarketType),
		MessageType:       fields.MessageType(m.MsgType),
		Symbol:            fields.SymbolPairFromPair(m.Pair),
	}, nil
}

// The symbol is reported as its numeric code.
func (h *Header) meta() meta {
	return meta{
		Exchange:   h.Exchange.String(),
		MarketType: market.MarketType(h.MarketType),
		MsgType:    market.MessageType(h.MessageType),
		Pair:       h.Symbol.Pair,
		Symbol:     strconv.FormatUint(uint64(h.Symbol.Symbol), 10),
		Timestamp:  int64(h.ExchangeTimestamp),
	}
}

// record is implemented by every *Structure.
type record interface {
	layout() serializer.Layout
}

func encodeRecord(r record) ([]byte, error) {
	return r.layout().Bytes()
}

func decodeRecord(r record, raw []byte) error {
	return r.layout().Deserialize(bytes.NewReader(raw))
}

// PeekHeader decodes only the header of raw.
func PeekHeader(raw []byte) (Header, error) {
	var h Header
	err := h.layout().Deserialize(bytes.NewReader(raw))
	return h, err
}

func toFloats(ds ...*fields.Decimal5) ([]float64, error) {
	out := make([]float64, len(ds))
	for i, d := range ds {
		f, err := d.Float64()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
