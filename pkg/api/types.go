package api

// API response types for REST endpoints and WebSocket messages

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DecodeResponse is one decoded record.
type DecodeResponse struct {
	Kind    string `json:"kind"`
	Size    int    `json:"size"`
	Message any    `json:"message"`
}

// RecordsResponse lists stored records of one series in time order.
type RecordsResponse struct {
	Kind    string `json:"kind"`
	Pair    string `json:"pair"`
	Count   int    `json:"count"`
	Records []any  `json:"records"`
}

type KindsResponse struct {
	Kinds []string `json:"kinds"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  bool   `json:"store"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by clients, e.g.
// {"op":"subscribe","channels":["bbo:BTC/USDT"]}
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// WSAck confirms a subscription change.
type WSAck struct {
	Type     string   `json:"type"` // "subscribed" or "unsubscribed"
	Channels []string `json:"channels"`
}

// WSRecord carries one decoded record to subscribers of Channel.
type WSRecord struct {
	Type    string `json:"type"` // always "record"
	Channel string `json:"channel"`
	Kind    string `json:"kind"`
	Message any    `json:"message"`
}
