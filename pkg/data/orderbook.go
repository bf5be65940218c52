package data

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

// MaxOrdersPerBox is the most levels whose byte length fits the u16 prefix.
const MaxOrdersPerBox = math.MaxUint16 / fields.PriceDataSize

// ErrOrdersLength reports a byte length that is not a whole number of levels.
var ErrOrdersLength = errors.New("data: orders box length is not a multiple of 10")

// ordersBoxOverhead is the direction byte plus the length prefix.
const ordersBoxOverhead = 3

// OrdersBox is one side of an order book:
//
//	direction (1) | byte length = count*10, big-endian (2) | count × PriceData
type OrdersBox struct {
	Direction fields.InfoType
	Orders    []fields.PriceData
}

var _ serializer.Segment = (*OrdersBox)(nil)

func (b *OrdersBox) Len() int { return ordersBoxOverhead + len(b.Orders)*fields.PriceDataSize }

func (b *OrdersBox) Encode(w io.Writer) error {
	if len(b.Orders) > MaxOrdersPerBox {
		return fmt.Errorf("orders box: %d levels exceed %d", len(b.Orders), MaxOrdersPerBox)
	}
	if err := serializer.WriteField(w, &b.Direction); err != nil {
		return err
	}

	var size [2]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(b.Orders)*fields.PriceDataSize))
	if err := serializer.WriteRaw(w, size[:]); err != nil {
		return err
	}

	for i := range b.Orders {
		if err := serializer.WriteField(w, &b.Orders[i]); err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
	}
	return nil
}

// Decode reads length/10 levels. A length that is not a multiple of 10 is
// rejected before any level is read.
func (b *OrdersBox) Decode(r io.Reader) error {
	if err := serializer.ReadField(r, &b.Direction); err != nil {
		return err
	}

	var size [2]byte
	if err := serializer.ReadRaw(r, size[:]); err != nil {
		return err
	}
	n := int(binary.BigEndian.Uint16(size[:]))
	if n%fields.PriceDataSize != 0 {
		return fmt.Errorf("%w: %d", ErrOrdersLength, n)
	}
	count := n / fields.PriceDataSize

	b.Orders = make([]fields.PriceData, count)
	for i := range b.Orders {
		if err := serializer.ReadField(r, &b.Orders[i]); err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
	}
	return nil
}

func newOrdersBox(dir fields.InfoType, orders []market.Order) (OrdersBox, error) {
	box := OrdersBox{Direction: dir, Orders: make([]fields.PriceData, len(orders))}
	for i, o := range orders {
		pd, err := fields.PriceDataFromOrder(o)
		if err != nil {
			return OrdersBox{}, fmt.Errorf("%s level %d: %w", dir, i, err)
		}
		box.Orders[i] = pd
	}
	return box, nil
}

func (b *OrdersBox) orders() ([]market.Order, error) {
	out := make([]market.Order, len(b.Orders))
	for i := range b.Orders {
		o, err := b.Orders[i].Order()
		if err != nil {
			return nil, fmt.Errorf("%s level %d: %w", b.Direction, i, err)
		}
		out[i] = o
	}
	return out, nil
}

type OrderbookStructure struct {
	Header
	Asks OrdersBox
	Bids OrdersBox
	End  fields.EndOfData
}

func (s *OrderbookStructure) layout() serializer.Layout {
	return append(s.Header.layout(),
		&s.Asks,
		&s.Bids,
		serializer.Fixed(1, &s.End),
	)
}

func (s *OrderbookStructure) Serialize(w io.Writer) error   { return s.layout().Serialize(w) }
func (s *OrderbookStructure) Deserialize(r io.Reader) error { return s.layout().Deserialize(r) }

// OrderbookSize is the encoded length for the given level counts.
func OrderbookSize(asks, bids int) int {
	return HeaderSize + 2*ordersBoxOverhead + (asks+bids)*fields.PriceDataSize + 1
}

func OrderbookStructureFromMsg(msg *market.OrderBookMsg, received time.Time) (*OrderbookStructure, error) {
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

	asks, err := newOrdersBox(fields.Asks, msg.Asks)
	if err != nil {
		return nil, err
	}
	bids, err := newOrdersBox(fields.Bids, msg.Bids)
	if err != nil {
		return nil, err
	}
	return &OrderbookStructure{Header: h, Asks: asks, Bids: bids}, nil
}

// OrderBookMsg converts back. Snapshot and sequence ids are not stored;
// the result is reported as a snapshot.
func (s *OrderbookStructure) OrderBookMsg() (*market.OrderBookMsg, error) {
	asks, err := s.Asks.orders()
	if err != nil {
		return nil, err
	}
	bids, err := s.Bids.orders()
	if err != nil {
		return nil, err
	}

	m := s.meta()
	return &market.OrderBookMsg{
		Exchange:   m.Exchange,
		MarketType: m.MarketType,
		Symbol:     m.Symbol,
		Pair:       m.Pair,
		MsgType:    m.MsgType,
		Timestamp:  m.Timestamp,
		Asks:       asks,
		Bids:       bids,
		Snapshot:   true,
	}, nil
}

func EncodeOrderBook(msg *market.OrderBookMsg) ([]byte, error) {
	s, err := OrderbookStructureFromMsg(msg, now())
	if err != nil {
		return nil, fmt.Errorf("encode orderbook: %w", err)
	}
	raw, err := encodeRecord(s)
	if err != nil {
		return nil, fmt.Errorf("encode orderbook: %w", err)
	}
	return raw, nil
}

func DecodeOrderBook(raw []byte) (*market.OrderBookMsg, error) {
	var s OrderbookStructure
	if err := decodeRecord(&s, raw); err != nil {
		return nil, fmt.Errorf("decode orderbook: %w", err)
	}
	msg, err := s.OrderBookMsg()
	if err != nil {
		return nil, fmt.Errorf("decode orderbook: %w", err)
	}
	return msg, nil
}
