package models

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderRequest is a single order in the shape the execute endpoint expects.
// LimitPrice is present if and only if Type is "limit".
type OrderRequest struct {
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"side"`
	Qty        int64     `json:"qty"`
	Type       OrderType `json:"type"`
	LimitPrice float64   `json:"limitPrice,omitempty"`
}

// ExecuteRequest is the envelope POSTed to the trading execute endpoint.
// RequestID is the client-minted idempotency token; the backend uses a
// repeated RequestID to detect duplicate submissions.
type ExecuteRequest struct {
	DryRun    bool           `json:"dryRun"`
	RequestID string         `json:"requestId"`
	Orders    []OrderRequest `json:"orders"`
}

// ExecuteResponse is interpreted, never produced, by this client.
type ExecuteResponse struct {
	Accepted  bool           `json:"accepted"`
	Duplicate bool           `json:"duplicate,omitempty"`
	DryRun    bool           `json:"dryRun,omitempty"`
	Orders    []OrderRequest `json:"orders,omitempty"`
}
