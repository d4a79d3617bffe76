// Package service implements the quoting core: the inventory ledger
// paired with the quote/order lifecycle, plus part search and supplier
// comparison. Data access is behind narrow store interfaces satisfied
// by *store.Store.
package service

import (
	"context"

	"parts-quote-service/internal/models"
)

// CatalogStore looks up offers.
type CatalogStore interface {
	GetOfferByID(ctx context.Context, offerID int64) (*models.Offer, error)
}

// OrderStore looks up and persists orders and their line items. The
// lifecycle writes carry the paired offer stock mutations so each store
// implementation can commit both sides as one unit.
type OrderStore interface {
	CreateQuoteOrder(ctx context.Context, order *models.Order, offer *models.Offer) error
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	GetOrdersByStatusAndCartFlag(ctx context.Context, status models.OrderStatus, isCartItem bool) ([]models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	RebindQuoteSupplier(ctx context.Context, order *models.Order, item *models.OrderItem, offers []*models.Offer) error
	DeleteQuoteOrder(ctx context.Context, orderID int64, released []*models.Offer) error
}

// PartStore looks up parts and their offers for search and comparison.
type PartStore interface {
	GetPartByID(ctx context.Context, partID string) (*models.Part, error)
	SearchPartsByID(ctx context.Context, keyword string) ([]models.Part, error)
	SearchPartsByName(ctx context.Context, keyword string) ([]models.Part, error)
	GetOffersByPartID(ctx context.Context, partID string) ([]models.Offer, error)
}

// EventSink publishes quote/order domain events. Publish failures are
// logged, never surfaced to the caller.
type EventSink interface {
	QuoteCreated(ctx context.Context, event *models.QuoteCreatedEvent) error
	QuoteDeleted(ctx context.Context, event *models.QuoteDeletedEvent) error
	QuoteSupplierChanged(ctx context.Context, event *models.QuoteSupplierChangedEvent) error
	OrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// StockMirror reads the redis read-side stock mirror.
type StockMirror interface {
	GetOfferStock(ctx context.Context, offerID int64) (int, bool, error)
}
