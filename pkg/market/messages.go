package market

// Timestamps are Unix milliseconds.

type BboMsg struct {
	Exchange   string      `json:"exchange"`
	MarketType MarketType  `json:"market_type"`
	Symbol     string      `json:"symbol"`
	Pair       string      `json:"pair"`
	MsgType    MessageType `json:"msg_type"`
	Timestamp  int64       `json:"timestamp"`

	AskPrice            float64  `json:"ask_price"`
	AskQuantityBase     float64  `json:"ask_quantity_base"`
	AskQuantityQuote    float64  `json:"ask_quantity_quote"`
	AskQuantityContract *float64 `json:"ask_quantity_contract,omitempty"`

	BidPrice            float64  `json:"bid_price"`
	BidQuantityBase     float64  `json:"bid_quantity_base"`
	BidQuantityQuote    float64  `json:"bid_quantity_quote"`
	BidQuantityContract *float64 `json:"bid_quantity_contract,omitempty"`

	ID *uint64 `json:"id,omitempty"`
}

type TradeMsg struct {
	Exchange   string      `json:"exchange"`
	MarketType MarketType  `json:"market_type"`
	Symbol     string      `json:"symbol"`
	Pair       string      `json:"pair"`
	MsgType    MessageType `json:"msg_type"`
	Timestamp  int64       `json:"timestamp"`

	Side             TradeSide `json:"side"`
	Price            float64   `json:"price"`
	QuantityBase     float64   `json:"quantity_base"`
	QuantityQuote    float64   `json:"quantity_quote"`
	QuantityContract *float64  `json:"quantity_contract,omitempty"`
	TradeID          string    `json:"trade_id"`
}

type KlineMsg struct {
	Exchange   string      `json:"exchange"`
	MarketType MarketType  `json:"market_type"`
	Symbol     string      `json:"symbol"`
	Pair       string      `json:"pair"`
	MsgType    MessageType `json:"msg_type"`
	Timestamp  int64       `json:"timestamp"`

	// Period is one of "1m", "5m", "30m", "1h".
	Period      string   `json:"period"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      float64  `json:"volume"`
	QuoteVolume *float64 `json:"quote_volume,omitempty"`
}

type FundingRateMsg struct {
	Exchange   string      `json:"exchange"`
	MarketType MarketType  `json:"market_type"`
	Symbol     string      `json:"symbol"`
	Pair       string      `json:"pair"`
	MsgType    MessageType `json:"msg_type"`
	Timestamp  int64       `json:"timestamp"`

	FundingRate   float64  `json:"funding_rate"`
	FundingTime   int64    `json:"funding_time"`
	EstimatedRate *float64 `json:"estimated_rate,omitempty"`
}

type OrderBookMsg struct {
	Exchange   string      `json:"exchange"`
	MarketType MarketType  `json:"market_type"`
	Symbol     string      `json:"symbol"`
	Pair       string      `json:"pair"`
	MsgType    MessageType `json:"msg_type"`
	Timestamp  int64       `json:"timestamp"`

	Asks []Order `json:"asks"`
	Bids []Order `json:"bids"`

	// Snapshot is false when Asks and Bids hold a diff.
	Snapshot  bool    `json:"snapshot"`
	SeqID     *uint64 `json:"seq_id,omitempty"`
	PrevSeqID *uint64 `json:"prev_seq_id,omitempty"`
}
