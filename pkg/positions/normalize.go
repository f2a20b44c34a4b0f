// Package positions normalizes the varying position payloads the proxy has
// been observed to return. The endpoint answers either a bare JSON array or
// an object wrapping the array under "positions", and field names differ
// between backend revisions; both are mapped into models.Position here.
package positions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// fieldAliases is the accepted spelling of every position field, in lookup
// order. First present alias wins.
var fieldAliases = map[string][]string{
	"symbol":      {"symbol", "ticker"},
	"qty":         {"qty", "quantity", "position_qty"},
	"avgPrice":    {"avgPrice", "average_price", "avg_entry_price", "entry_price"},
	"marketPrice": {"marketPrice", "market_price", "current_price", "last_price", "price"},
	"side":        {"side", "position_side"},
}

var hundred = decimal.NewFromInt(100)

// Parse decodes a positions payload in either known shape and computes
// per-position unrealized P&L. Entries without any symbol field are dropped;
// missing numeric fields default to zero.
func Parse(payload []byte) ([]models.Position, error) {
	entries, err := unwrap(payload)
	if err != nil {
		return nil, err
	}

	out := make([]models.Position, 0, len(entries))
	for i, raw := range entries {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}

		symbol := stringField(entry, "symbol")
		if symbol == "" {
			continue
		}

		pos := models.Position{
			Symbol: strings.ToUpper(symbol),
			Side:   "long",
		}
		if side := stringField(entry, "side"); side != "" {
			pos.Side = strings.ToLower(side)
		}

		if pos.Qty, err = decimalField(entry, "qty"); err != nil {
			return nil, fmt.Errorf("position %s: %w", pos.Symbol, err)
		}
		if pos.AvgPrice, err = decimalField(entry, "avgPrice"); err != nil {
			return nil, fmt.Errorf("position %s: %w", pos.Symbol, err)
		}
		if pos.MarketPrice, err = decimalField(entry, "marketPrice"); err != nil {
			return nil, fmt.Errorf("position %s: %w", pos.Symbol, err)
		}

		computePL(&pos)
		out = append(out, pos)
	}

	return out, nil
}

// computePL fills the derived fields: market value, unrealized P&L and its
// percentage of cost basis. A zero cost basis yields a zero percentage.
func computePL(pos *models.Position) {
	pos.MarketValue = pos.MarketPrice.Mul(pos.Qty)
	pos.UnrealizedPL = pos.MarketPrice.Sub(pos.AvgPrice).Mul(pos.Qty)

	basis := pos.AvgPrice.Mul(pos.Qty)
	if basis.IsZero() {
		pos.UnrealizedPLPercent = decimal.Zero
		return
	}
	pos.UnrealizedPLPercent = pos.UnrealizedPL.Div(basis).Mul(hundred)
}

func unwrap(payload []byte) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(payload, &entries); err == nil {
		return entries, nil
	}

	var wrapped struct {
		Positions []json.RawMessage `json:"positions"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized positions payload: %w", err)
	}
	return wrapped.Positions, nil
}

func lookup(entry map[string]json.RawMessage, field string) (json.RawMessage, bool) {
	for _, alias := range fieldAliases[field] {
		if v, ok := entry[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(entry map[string]json.RawMessage, field string) string {
	raw, ok := lookup(entry, field)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// decimalField resolves a numeric field through the alias table. Values
// arrive as JSON numbers or quoted strings depending on the backend.
func decimalField(entry map[string]json.RawMessage, field string) (decimal.Decimal, error) {
	raw, ok := lookup(entry, field)
	if !ok || string(raw) == "null" {
		return decimal.Zero, nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, fmt.Errorf("field %s: %w", field, err)
	}
	return d, nil
}
