package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeQuoteCreated         = "QUOTE_CREATED"
	EventTypeQuoteDeleted         = "QUOTE_DELETED"
	EventTypeQuoteSupplierChanged = "QUOTE_SUPPLIER_CHANGED"
	EventTypeOrderStatusChanged   = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OfferStockData carries an offer's stock level after a ledger mutation,
// so consumers can refresh read-side views without a DB round trip.
type OfferStockData struct {
	OfferID    int64 `json:"offer_id"`
	NumInStock int   `json:"num_in_stock"`
}

// QuoteCreatedEvent published when an offer is reserved into a new quote
type QuoteCreatedEvent struct {
	BaseEvent
	OrderID    int64           `json:"order_id"`
	OfferID    int64           `json:"offer_id"`
	PartID     string          `json:"part_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	IsCartItem bool            `json:"is_cart_item"`
	Stock      OfferStockData  `json:"stock"`
}

// QuoteDeletedEvent published when a quote is deleted and its
// reservations released
type QuoteDeletedEvent struct {
	BaseEvent
	OrderID int64            `json:"order_id"`
	Stock   []OfferStockData `json:"stock"`
}

// QuoteSupplierChangedEvent published when a quote's line item is
// rebound to a different supplier's offer
type QuoteSupplierChangedEvent struct {
	BaseEvent
	OrderID    int64            `json:"order_id"`
	OldOfferID *int64           `json:"old_offer_id,omitempty"`
	NewOfferID int64            `json:"new_offer_id"`
	Stock      []OfferStockData `json:"stock"`
}

// OrderStatusChangedEvent published on every lifecycle transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64           `json:"order_id"`
	FromStatus OrderStatus     `json:"from_status"`
	ToStatus   OrderStatus     `json:"to_status"`
	Total      decimal.Decimal `json:"total_amount"`
}
