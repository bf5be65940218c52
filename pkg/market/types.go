// Package market holds the application-level market-data messages that the
// codec converts to and from its binary records.
package market

// MarketType classifies the instrument a message refers to.
type MarketType string

const (
	MarketUnknown  MarketType = "unknown"
	Spot           MarketType = "spot"
	LinearFuture   MarketType = "linear_future"
	InverseFuture  MarketType = "inverse_future"
	LinearSwap     MarketType = "linear_swap"
	InverseSwap    MarketType = "inverse_swap"
	AmericanOption MarketType = "american_option"
	EuropeanOption MarketType = "european_option"
	QuantoFuture   MarketType = "quanto_future"
	QuantoSwap     MarketType = "quanto_swap"
	Move           MarketType = "move"
	BVOL           MarketType = "bvol"
)

func (m MarketType) String() string { return string(m) }

// MessageType is the channel a message was received on.
type MessageType string

const (
	MsgOther          MessageType = "other"
	MsgTrade          MessageType = "trade"
	MsgBBO            MessageType = "bbo"
	MsgL2TopK         MessageType = "l2_topk"
	MsgL2Snapshot     MessageType = "l2_snapshot"
	MsgL2Event        MessageType = "l2_event"
	MsgL3Snapshot     MessageType = "l3_snapshot"
	MsgL3Event        MessageType = "l3_event"
	MsgTicker         MessageType = "ticker"
	MsgCandlestick    MessageType = "candlestick"
	MsgOpenInterest   MessageType = "open_interest"
	MsgFundingRate    MessageType = "funding_rate"
	MsgLongShortRatio MessageType = "long_short_ratio"
	MsgTakerVolume    MessageType = "taker_volume"
)

func (m MessageType) String() string { return string(m) }

// TradeSide is the taker side of a trade.
type TradeSide string

const (
	Buy  TradeSide = "buy"
	Sell TradeSide = "sell"
)

func (s TradeSide) String() string { return string(s) }

// Order is one price level of an order book side.
type Order struct {
	Price         float64 `json:"price"`
	QuantityBase  float64 `json:"quantity_base"`
	QuantityQuote float64 `json:"quantity_quote"`
	// QuantityContract is only set for contract markets and for levels
	// removed by a diff.
	QuantityContract *float64 `json:"quantity_contract,omitempty"`
}

// Equal compares every field, including the contract quantity.
func (o Order) Equal(other Order) bool {
	if o.Price != other.Price || o.QuantityBase != other.QuantityBase || o.QuantityQuote != other.QuantityQuote {
		return false
	}
	switch {
	case o.QuantityContract == nil && other.QuantityContract == nil:
		return true
	case o.QuantityContract == nil || other.QuantityContract == nil:
		return false
	default:
		return *o.QuantityContract == *other.QuantityContract
	}
}
