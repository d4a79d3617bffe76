package models

import (
	"time"

	"github.com/shopspring/decimal"

	"parts-quote-service/internal/apperr"
)

// TaxRate is applied to every order subtotal.
var TaxRate = decimal.RequireFromString("0.07")

// Part is a catalog part. The ID is externally assigned (manufacturer
// part number) and immutable.
type Part struct {
	ID   string `db:"part_id" json:"part_id"`
	Name string `db:"part_name" json:"part_name"`
}

// Supplier carries parts and ships them within ShippingDays.
type Supplier struct {
	ID           int64  `db:"supplier_id" json:"supplier_id"`
	Name         string `db:"supplier_name" json:"supplier_name"`
	ShippingDays int    `db:"shipping_days" json:"shipping_days"`
}

// Offer is one supplier's price/stock binding for one part, unique per
// (part, supplier) pair.
type Offer struct {
	ID         int64           `db:"offer_id" json:"offer_id"`
	PartID     string          `db:"part_id" json:"part_id"`
	SupplierID int64           `db:"supplier_id" json:"supplier_id"`
	Cost       decimal.Decimal `db:"cost" json:"cost"`
	NumInStock int             `db:"num_in_stock" json:"num_in_stock"`

	// Hydrated by joins, not columns of the offers table.
	PartName     string `db:"part_name" json:"part_name,omitempty"`
	SupplierName string `db:"supplier_name" json:"supplier_name,omitempty"`
	ShippingDays int    `db:"shipping_days" json:"shipping_days,omitempty"`
}

// Reserve decrements stock by quantity, preventing overselling. It only
// mutates the in-memory offer; the caller persists the result together
// with the paired order mutation.
func (o *Offer) Reserve(quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidArgumentf("quantity must be greater than zero, got %d", quantity)
	}
	if o.NumInStock < quantity {
		return apperr.InsufficientStockf("not enough stock for offer %d: available %d, requested %d",
			o.ID, o.NumInStock, quantity)
	}
	o.NumInStock -= quantity
	return nil
}

// Restock returns quantity units to the offer. There is no upper bound:
// releasing beyond the original level is permitted.
func (o *Offer) Restock(quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidArgumentf("quantity must be greater than zero, got %d", quantity)
	}
	o.NumInStock += quantity
	return nil
}

// Order statuses. QUOTE splits into "saved quote" and "cart item" via
// the IsCartItem flag, not a separate status.
type OrderStatus string

const (
	StatusQuote      OrderStatus = "QUOTE"
	StatusNew        OrderStatus = "NEW"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCanceled   OrderStatus = "CANCELED"
)

// ParseOrderStatus maps a caller-supplied string to a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusQuote, StatusNew, StatusProcessing, StatusCompleted, StatusCanceled:
		return OrderStatus(s), nil
	}
	return "", apperr.InvalidArgumentf("invalid order status: %s", s)
}

// Order is a quote or purchase order owning its line items.
type Order struct {
	ID         int64           `db:"order_id" json:"order_id"`
	Status     OrderStatus     `db:"status" json:"status"`
	IsCartItem bool            `db:"is_cart_item" json:"is_cart_item"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount  decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total      decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`

	Items []OrderItem `json:"items"`
}

// OrderItem is one priced, quantified part within an order, bound to
// exactly one offer. UnitPrice is locked at binding time and does not
// track later offer price changes.
type OrderItem struct {
	ID        int64           `db:"order_item_id" json:"order_item_id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	PartID    string          `db:"part_id" json:"part_id"`
	OfferID   *int64          `db:"offer_id" json:"offer_id,omitempty"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`

	// Hydrated for presentation.
	PartName     string `db:"part_name" json:"part_name,omitempty"`
	SupplierName string `db:"supplier_name" json:"supplier_name,omitempty"`
}

// AddItem attaches an item to the order.
func (ord *Order) AddItem(item OrderItem) {
	item.OrderID = ord.ID
	ord.Items = append(ord.Items, item)
}

// RecalculateTotals derives subtotal, tax and total from the line items.
// Tax is a fixed 7% of the subtotal.
func (ord *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range ord.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	ord.Subtotal = subtotal
	ord.TaxAmount = subtotal.Mul(TaxRate)
	ord.Total = subtotal.Add(ord.TaxAmount)
	ord.UpdatedAt = time.Now()
}

// TransitionTo advances the order status along the lifecycle
// QUOTE -> NEW -> PROCESSING -> COMPLETED, with CANCELED reachable from
// any status except COMPLETED. Any other transition is an invalid-state
// error naming the current status.
func (ord *Order) TransitionTo(next OrderStatus) error {
	switch next {
	case StatusNew:
		if ord.Status != StatusQuote {
			return apperr.InvalidStatef("only quotes can be checked out, current status: %s", ord.Status)
		}
	case StatusProcessing:
		if ord.Status != StatusNew {
			return apperr.InvalidStatef("only NEW orders can be processed, current status: %s", ord.Status)
		}
	case StatusCompleted:
		if ord.Status != StatusProcessing {
			return apperr.InvalidStatef("only PROCESSING orders can be completed, current status: %s", ord.Status)
		}
	case StatusCanceled:
		if ord.Status == StatusCompleted {
			return apperr.InvalidStatef("completed orders cannot be canceled")
		}
	default:
		return apperr.InvalidStatef("cannot transition to status: %s", next)
	}
	ord.Status = next
	return nil
}
