package models

import (
	"github.com/shopspring/decimal"
)

// Position is a normalized portfolio position with computed P&L. Backends
// report positions under varying field names; pkg/positions maps them into
// this one shape.
type Position struct {
	Symbol              string          `json:"symbol"`
	Side                string          `json:"side"`
	Qty                 decimal.Decimal `json:"qty"`
	AvgPrice            decimal.Decimal `json:"avgPrice"`
	MarketPrice         decimal.Decimal `json:"marketPrice"`
	MarketValue         decimal.Decimal `json:"marketValue"`
	UnrealizedPL        decimal.Decimal `json:"unrealizedPL"`
	UnrealizedPLPercent decimal.Decimal `json:"unrealizedPLPercent"`
}
