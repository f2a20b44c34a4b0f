package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusExecuted  OrderStatus = "executed"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDryRun    OrderStatus = "dry-run"
)

// OrderRecord is a single entry of the local order journal. Records are
// created when an order is submitted and never mutated afterwards.
type OrderRecord struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Symbol     string      `json:"symbol"`
	Side       OrderSide   `json:"side"`
	Qty        int64       `json:"qty"`
	Type       OrderType   `json:"type"`
	LimitPrice float64     `json:"limitPrice,omitempty"`
	Status     OrderStatus `json:"status"`
	DryRun     bool        `json:"dryRun"`
}
