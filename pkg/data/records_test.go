package data

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/data/num"
	"github.com/wmjtyd/libstock/pkg/data/serializer"
	"github.com/wmjtyd/libstock/pkg/market"
)

var received = time.UnixMilli(1659755148123)

func fixNow(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return received }
	t.Cleanup(func() { now = prev })
}

func ptr[T any](v T) *T { return &v }

func sampleBbo() *market.BboMsg {
	return &market.BboMsg{
		Exchange:        "binance",
		MarketType:      market.Spot,
		Symbol:          "1",
		Pair:            "BTC/USDT",
		MsgType:         market.MsgBBO,
		Timestamp:       1659755147000,
		AskPrice:        12345.0,
		AskQuantityBase: 67890.0,
		BidPrice:        12345.12345,
		BidQuantityBase: 56789.8765,
	}
}

func TestBBO_ConcreteExample(t *testing.T) {
	fixNow(t)
	msg := sampleBbo()

	raw, err := EncodeBBO(msg)
	if err != nil {
		t.Fatalf("EncodeBBO: %v", err)
	}
	if len(raw) != BboSize || BboSize != 41 {
		t.Fatalf("len = %d, want 41", len(raw))
	}

	if ts := num.SixBytesToUnixMs([6]byte(raw[0:6])); ts != 1659755147000 {
		t.Errorf("exchange timestamp = %d, want 1659755147000", ts)
	}
	if ts := num.SixBytesToUnixMs([6]byte(raw[6:12])); ts != uint64(received.UnixMilli()) {
		t.Errorf("received timestamp = %d, want %d", ts, received.UnixMilli())
	}
	if !bytes.Equal(raw[12:17], []byte{3, 1, 2, 0, 1}) {
		t.Errorf("header codes = %v, want [3 1 2 0 1]", raw[12:17])
	}
	if raw[40] != 0 {
		t.Errorf("sentinel = %d, want 0", raw[40])
	}

	got, err := DecodeBBO(raw)
	if err != nil {
		t.Fatalf("DecodeBBO: %v", err)
	}
	if *got != *msg {
		t.Errorf("DecodeBBO = %+v\nwant %+v", got, msg)
	}
}

func TestBBO_MagnitudeOverflow(t *testing.T) {
	msg := sampleBbo()
	msg.BidQuantityBase = 56789.87654 // mantissa 5678987654 needs more than 32 bits

	_, err := EncodeBBO(msg)
	if !errors.Is(err, num.ErrMagnitudeOverflow) {
		t.Fatalf("err = %v, want ErrMagnitudeOverflow", err)
	}
	if serializer.IsIO(err) {
		t.Error("overflow reported as io error")
	}
}

func TestBBO_UnknownMarketType(t *testing.T) {
	msg := sampleBbo()
	msg.Exchange = "crypto"
	msg.MarketType = market.AmericanOption

	raw, err := EncodeBBO(msg)
	if err != nil {
		t.Fatal(err)
	}
	if raw[13] != 0 {
		t.Errorf("market type code = %d, want 0", raw[13])
	}
	got, err := DecodeBBO(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.MarketType != market.MarketUnknown {
		t.Errorf("market type = %s, want unknown", got.MarketType)
	}
	if got.Exchange != "crypto" {
		t.Errorf("exchange = %s, want crypto", got.Exchange)
	}
}

func TestBBO_UnknownExchange(t *testing.T) {
	msg := sampleBbo()
	msg.Exchange = "bitmex"
	if _, err := EncodeBBO(msg); !errors.Is(err, fields.ErrUnimplementedExchange) {
		t.Fatalf("err = %v, want UnimplementedExchange", err)
	}

	raw, err := EncodeBBO(sampleBbo())
	if err != nil {
		t.Fatal(err)
	}
	raw[12] = 42
	if _, err := DecodeBBO(raw); !errors.Is(err, fields.ErrUnimplementedExchange) {
		t.Fatalf("decode err = %v, want UnimplementedExchange", err)
	}
}

func TestBBO_NegativeTimestamp(t *testing.T) {
	msg := sampleBbo()
	msg.Timestamp = -1
	if _, err := EncodeBBO(msg); !errors.Is(err, ErrNegativeTimestamp) {
		t.Fatalf("err = %v, want ErrNegativeTimestamp", err)
	}
}

func TestBBO_UnknownPair(t *testing.T) {
	fixNow(t)
	msg := sampleBbo()
	msg.Pair = "DOGE/USDT"

	raw, err := EncodeBBO(msg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeBBO(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pair != fields.UnknownPair || got.Symbol != "0" {
		t.Errorf("pair, symbol = %q, %q; want UNKNOWN, 0", got.Pair, got.Symbol)
	}
}

func sampleTrade() *market.TradeMsg {
	return &market.TradeMsg{
		Exchange:     "okx",
		MarketType:   market.LinearSwap,
		Symbol:       "4",
		Pair:         "ETH/USDT",
		MsgType:      market.MsgTrade,
		Timestamp:    1656991593000,
		Side:         market.Sell,
		Price:        1712.34,
		QuantityBase: 0.25,
	}
}

func TestTrade_RoundTrip(t *testing.T) {
	msg := sampleTrade()
	raw, err := EncodeTrade(msg)
	if err != nil {
		t.Fatalf("EncodeTrade: %v", err)
	}
	if len(raw) != TradeSize || TradeSize != 30 {
		t.Fatalf("len = %d, want 30", len(raw))
	}
	if raw[17] != 2 {
		t.Errorf("side byte = %d, want 2", raw[17])
	}

	got, err := DecodeTrade(raw)
	if err != nil {
		t.Fatalf("DecodeTrade: %v", err)
	}
	if *got != *msg {
		t.Errorf("DecodeTrade = %+v\nwant %+v", got, msg)
	}
}

func TestTrade_BadSide(t *testing.T) {
	msg := sampleTrade()
	msg.Side = "hold"
	if _, err := EncodeTrade(msg); !errors.Is(err, fields.ErrUnexpectedTradeSide) {
		t.Fatalf("err = %v, want UnexpectedTradeSide", err)
	}

	raw, err := EncodeTrade(sampleTrade())
	if err != nil {
		t.Fatal(err)
	}
	raw[17] = 9
	if _, err := DecodeTrade(raw); !errors.Is(err, fields.ErrUnexpectedTradeSide) {
		t.Fatalf("decode err = %v, want UnexpectedTradeSide", err)
	}
}

func sampleKline() *market.KlineMsg {
	return &market.KlineMsg{
		Exchange:   "huobi",
		MarketType: market.InverseFuture,
		Symbol:     "2",
		Pair:       "BTC/USD",
		MsgType:    market.MsgCandlestick,
		Timestamp:  1659755147000,
		Period:     "5m",
		Open:       23010.5,
		High:       23100.25,
		Low:        22950,
		Close:      23050.75,
		Volume:     1234567.891,
	}
}

func TestKline_RoundTrip(t *testing.T) {
	msg := sampleKline()
	raw, err := EncodeKline(msg)
	if err != nil {
		t.Fatalf("EncodeKline: %v", err)
	}
	if len(raw) != KlineSize || KlineSize != 49 {
		t.Fatalf("len = %d, want 49", len(raw))
	}
	if raw[17] != 2 {
		t.Errorf("period byte = %d, want 2", raw[17])
	}

	got, err := DecodeKline(raw)
	if err != nil {
		t.Fatalf("DecodeKline: %v", err)
	}
	if *got != *msg {
		t.Errorf("DecodeKline = %+v\nwant %+v", got, msg)
	}
}

func TestKline_UnknownPeriod(t *testing.T) {
	msg := sampleKline()
	msg.Period = "4h"
	if _, err := EncodeKline(msg); !errors.Is(err, fields.ErrUnimplementedPeriod) {
		t.Fatalf("err = %v, want UnimplementedPeriod", err)
	}
}

func sampleFundingRate() *market.FundingRateMsg {
	return &market.FundingRateMsg{
		Exchange:      "binance",
		MarketType:    market.LinearSwap,
		Symbol:        "1",
		Pair:          "BTC/USDT",
		MsgType:       market.MsgFundingRate,
		Timestamp:     1659755147000,
		FundingRate:   0.0001,
		FundingTime:   1659772800000,
		EstimatedRate: ptr(-0.00015),
	}
}

func TestFundingRate_RoundTrip(t *testing.T) {
	msg := sampleFundingRate()
	raw, err := EncodeFundingRate(msg)
	if err != nil {
		t.Fatalf("EncodeFundingRate: %v", err)
	}
	if len(raw) != FundingRateSize || FundingRateSize != 44 {
		t.Fatalf("len = %d, want 44", len(raw))
	}

	got, err := DecodeFundingRate(raw)
	if err != nil {
		t.Fatalf("DecodeFundingRate: %v", err)
	}
	if got.EstimatedRate == nil || *got.EstimatedRate != *msg.EstimatedRate {
		t.Fatalf("estimated rate = %v, want %v", got.EstimatedRate, *msg.EstimatedRate)
	}
	got.EstimatedRate = msg.EstimatedRate
	if *got != *msg {
		t.Errorf("DecodeFundingRate = %+v\nwant %+v", got, msg)
	}
}

func TestFundingRate_MissingEstimatedRate(t *testing.T) {
	msg := sampleFundingRate()
	msg.EstimatedRate = nil
	if _, err := EncodeFundingRate(msg); !errors.Is(err, ErrMissingEstimatedRate) {
		t.Fatalf("err = %v, want ErrMissingEstimatedRate", err)
	}
}

func sampleOrderBook() *market.OrderBookMsg {
	return &market.OrderBookMsg{
		Exchange:   "kucoin",
		MarketType: market.Spot,
		Symbol:     "5",
		Pair:       "ETH/USD",
		MsgType:    market.MsgL2Snapshot,
		Timestamp:  1659755147000,
		Asks: []market.Order{
			{Price: 1700.5, QuantityBase: 1.5},
			{Price: 1701, QuantityBase: 2},
			{Price: 1702.25, QuantityBase: 0.125},
		},
		Bids: []market.Order{
			{Price: 1699.75, QuantityBase: 3},
			{Price: 1699, QuantityBase: 4.4},
		},
		Snapshot: true,
	}
}

func equalOrders(a, b []market.Order) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestOrderBook_RoundTrip(t *testing.T) {
	msg := sampleOrderBook()
	raw, err := EncodeOrderBook(msg)
	if err != nil {
		t.Fatalf("EncodeOrderBook: %v", err)
	}
	if want := OrderbookSize(3, 2); len(raw) != want {
		t.Fatalf("len = %d, want %d", len(raw), want)
	}

	got, err := DecodeOrderBook(raw)
	if err != nil {
		t.Fatalf("DecodeOrderBook: %v", err)
	}
	if !equalOrders(got.Asks, msg.Asks) || !equalOrders(got.Bids, msg.Bids) {
		t.Errorf("levels = %+v / %+v, want %+v / %+v", got.Asks, got.Bids, msg.Asks, msg.Bids)
	}
	if got.Exchange != msg.Exchange || got.Pair != msg.Pair || got.Symbol != msg.Symbol ||
		got.MsgType != msg.MsgType || got.Timestamp != msg.Timestamp || got.MarketType != msg.MarketType {
		t.Errorf("header = %+v, want %+v", got, msg)
	}
}

func TestOrderBook_Empty(t *testing.T) {
	msg := sampleOrderBook()
	msg.Asks, msg.Bids = nil, nil

	raw, err := EncodeOrderBook(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != HeaderSize+3+3+1 {
		t.Fatalf("len = %d, want %d", len(raw), HeaderSize+7)
	}
	got, err := DecodeOrderBook(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Asks) != 0 || len(got.Bids) != 0 {
		t.Errorf("got %d/%d levels, want none", len(got.Asks), len(got.Bids))
	}
}

func TestOrdersBox_Length(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		box := OrdersBox{Direction: fields.Bids}
		for i := 0; i < n; i++ {
			box.Orders = append(box.Orders, fields.PriceData{
				Price:        fields.Decimal5{Value: num.New(uint64(1000-i), 1, false)},
				QuantityBase: fields.Decimal5{Value: num.New(uint64(i+1), 0, false)},
			})
		}

		var buf bytes.Buffer
		if err := box.Encode(&buf); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		raw := buf.Bytes()
		if raw[0] != byte(fields.Bids) {
			t.Errorf("n=%d: direction = %d, want 2", n, raw[0])
		}
		if got := int(raw[1])<<8 | int(raw[2]); got != n*10 {
			t.Errorf("n=%d: length field = %d, want %d", n, got, n*10)
		}
		if len(raw) != box.Len() {
			t.Errorf("n=%d: wrote %d bytes, Len() = %d", n, len(raw), box.Len())
		}

		var back OrdersBox
		if err := back.Decode(bytes.NewReader(raw)); err != nil {
			t.Fatalf("n=%d decode: %v", n, err)
		}
		if len(back.Orders) != n {
			t.Errorf("n=%d: decoded %d levels", n, len(back.Orders))
		}
		for i := range back.Orders {
			if back.Orders[i] != box.Orders[i] {
				t.Errorf("n=%d level %d = %+v, want %+v", n, i, back.Orders[i], box.Orders[i])
			}
		}
	}
}

func TestOrdersBox_BadLength(t *testing.T) {
	raw := []byte{1, 0, 15}
	raw = append(raw, make([]byte, 15)...)
	var box OrdersBox
	if err := box.Decode(bytes.NewReader(raw)); !errors.Is(err, ErrOrdersLength) {
		t.Fatalf("err = %v, want ErrOrdersLength", err)
	}
}

func TestOrdersBox_TooManyLevels(t *testing.T) {
	box := OrdersBox{Direction: fields.Asks, Orders: make([]fields.PriceData, MaxOrdersPerBox+1)}
	if err := box.Encode(&bytes.Buffer{}); err == nil {
		t.Fatal("expected error for oversize box")
	}
}

func encodedSamples(t *testing.T) map[Kind][]byte {
	t.Helper()
	out := map[Kind][]byte{}
	for _, msg := range []any{sampleBbo(), sampleTrade(), sampleKline(), sampleFundingRate(), sampleOrderBook()} {
		kind, raw, err := EncodeAny(msg)
		if err != nil {
			t.Fatalf("EncodeAny(%T): %v", msg, err)
		}
		out[kind] = raw
	}
	return out
}

func TestSentinelCorruption(t *testing.T) {
	for kind, raw := range encodedSamples(t) {
		t.Run(kind.String(), func(t *testing.T) {
			for _, b := range []byte{1, 0x80, 0xff} {
				bad := bytes.Clone(raw)
				bad[len(bad)-1] = b
				msg, err := DecodeAny(kind, bad)
				if !errors.Is(err, fields.ErrDataEndedTooEarly) {
					t.Fatalf("err = %v, want DataEndedTooEarly", err)
				}
				if serializer.IsIO(err) {
					t.Error("sentinel error reported as io")
				}
				if msg != nil && !isNilMsg(msg) {
					t.Errorf("got partial message %+v", msg)
				}
			}
		})
	}
}

func isNilMsg(v any) bool {
	switch m := v.(type) {
	case *market.BboMsg:
		return m == nil
	case *market.TradeMsg:
		return m == nil
	case *market.KlineMsg:
		return m == nil
	case *market.FundingRateMsg:
		return m == nil
	case *market.OrderBookMsg:
		return m == nil
	}
	return false
}

func TestTruncatedIsIO(t *testing.T) {
	for kind, raw := range encodedSamples(t) {
		t.Run(kind.String(), func(t *testing.T) {
			for _, n := range []int{0, 5, HeaderSize, len(raw) - 1} {
				_, err := DecodeAny(kind, raw[:n])
				if !serializer.IsIO(err) {
					t.Errorf("len %d: err = %v, want io error", n, err)
				}
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	for kind, raw := range encodedSamples(t) {
		if got := KindOf(raw); got != kind {
			t.Errorf("KindOf(%s record) = %s", kind, got)
		}
		parsed, err := ParseKind(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParseKind(%q) = %v, %v", kind.String(), parsed, err)
		}
	}
	if KindOf([]byte{1, 2, 3}) != KindUnknown {
		t.Error("short input must be unknown")
	}
	if _, err := ParseKind("ticker"); err == nil {
		t.Error("ParseKind(ticker) should fail")
	}
}

func TestPeekHeader(t *testing.T) {
	raw, err := EncodeTrade(sampleTrade())
	if err != nil {
		t.Fatal(err)
	}
	h, err := PeekHeader(raw)
	if err != nil {
		t.Fatal(err)
	}
	if h.Exchange != fields.ExchangeOkx || h.Symbol.Symbol != 4 || uint64(h.ExchangeTimestamp) != 1656991593000 {
		t.Errorf("header = %+v", h)
	}
}

func TestStructure_StreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	first, err := BboStructureFromMsg(sampleBbo(), received)
	if err != nil {
		t.Fatal(err)
	}
	second, err := TradeStructureFromMsg(sampleTrade(), received)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	if err := second.Serialize(&buf); err != nil {
		t.Fatal(err)
	}

	var a BboStructure
	var b TradeStructure
	if err := a.Deserialize(&buf); err != nil {
		t.Fatal(err)
	}
	if err := b.Deserialize(&buf); err != nil {
		t.Fatal(err)
	}
	if a.Asks != first.Asks || a.Bids != first.Bids || a.Header != first.Header {
		t.Errorf("bbo = %+v, want %+v", a, first)
	}
	if b.PriceData != second.PriceData || b.Side != second.Side {
		t.Errorf("trade = %+v, want %+v", b, second)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes left", buf.Len())
	}
}

func BenchmarkBBO(b *testing.B) {
	msg := sampleBbo()
	for i := 0; i < b.N; i++ {
		raw, err := EncodeBBO(msg)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := DecodeBBO(raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOrderBook(b *testing.B) {
	msg := sampleOrderBook()
	for i := 0; i < 50; i++ {
		msg.Asks = append(msg.Asks, market.Order{Price: 1703 + float64(i), QuantityBase: 1})
		msg.Bids = append(msg.Bids, market.Order{Price: 1698 - float64(i), QuantityBase: 1})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		raw, err := EncodeOrderBook(msg)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := DecodeOrderBook(raw); err != nil {
			b.Fatal(err)
		}
	}
}

func FuzzDecodeOrderBook(f *testing.F) {
	raw, err := EncodeOrderBook(sampleOrderBook())
	if err != nil {
		f.Fatal(err)
	}
	f.Add(raw)
	f.Add(raw[:20])
	f.Fuzz(func(t *testing.T, in []byte) {
		msg, err := DecodeOrderBook(in)
		if err != nil {
			return
		}
		reenc, err := EncodeOrderBook(msg)
		if err != nil {
			// floats may not fit back into 5 bytes
			return
		}
		if _, err := DecodeOrderBook(reenc); err != nil {
			t.Fatalf("re-encoded record does not decode: %v", err)
		}
	})
}
