package service

import (
	"context"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/broker"
	"parts-quote-service/internal/models"
	"parts-quote-service/internal/util"

	"go.uber.org/zap"
)

// QuoteService coordinates the inventory ledger with quote creation,
// deletion and supplier swaps. Every reservation or release is handed to
// the store together with its order mutation, committing as one unit.
type QuoteService struct {
	catalog CatalogStore
	orders  OrderStore
	events  EventSink
	logger  *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(catalog CatalogStore, orders OrderStore, events EventSink) *QuoteService {
	return &QuoteService{
		catalog: catalog,
		orders:  orders,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// CreateQuote reserves quantity units of an offer into a new QUOTE
// order, locking the offer's current cost into the line item.
func (s *QuoteService) CreateQuote(ctx context.Context, offerID int64, quantity int, isCartItem bool) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "QuoteService.CreateQuote")
	defer span.End()

	if quantity <= 0 {
		util.QuotesFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, apperr.InvalidArgumentf("quantity must be greater than zero, got %d", quantity)
	}

	offer, err := s.catalog.GetOfferByID(ctx, offerID)
	if err != nil {
		util.QuotesFailedTotal.WithLabelValues("offer_not_found").Inc()
		return nil, err
	}
	if offer.PartID == "" {
		return nil, apperr.NotFoundf("part information is missing for offer: %d", offerID)
	}

	if err := offer.Reserve(quantity); err != nil {
		if apperr.IsKind(err, apperr.KindInsufficientStock) {
			util.InsufficientStockTotal.Inc()
		}
		return nil, err
	}

	order := &models.Order{
		Status:     models.StatusQuote,
		IsCartItem: isCartItem,
	}
	order.AddItem(models.OrderItem{
		PartID:       offer.PartID,
		OfferID:      &offer.ID,
		Quantity:     quantity,
		UnitPrice:    offer.Cost,
		PartName:     offer.PartName,
		SupplierName: offer.SupplierName,
	})
	order.RecalculateTotals()

	if err := s.orders.CreateQuoteOrder(ctx, order, offer); err != nil {
		return nil, err
	}

	util.QuotesCreatedTotal.Inc()
	s.logger.Info("Quote created",
		zap.Int64("order_id", order.ID),
		zap.Int64("offer_id", offer.ID),
		zap.Int("quantity", quantity),
		zap.Bool("is_cart_item", isCartItem))

	event := &models.QuoteCreatedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeQuoteCreated),
		OrderID:    order.ID,
		OfferID:    offer.ID,
		PartID:     offer.PartID,
		Quantity:   quantity,
		UnitPrice:  offer.Cost,
		IsCartItem: isCartItem,
		Stock:      models.OfferStockData{OfferID: offer.ID, NumInStock: offer.NumInStock},
	}
	if err := s.events.QuoteCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish QuoteCreated event", zap.Error(err))
	}

	return order, nil
}

// DeleteQuote releases every line item's reservation and deletes the
// order. A release is skipped when the bound offer can no longer be
// found; the reserved units leak, matching upstream behavior.
func (s *QuoteService) DeleteQuote(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "QuoteService.DeleteQuote")
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusQuote {
		return apperr.InvalidStatef("only quotes can be deleted, order status: %s", order.Status)
	}

	var released []*models.Offer
	var stocks []models.OfferStockData
	for _, item := range order.Items {
		if item.OfferID == nil {
			continue
		}
		offer, err := s.catalog.GetOfferByID(ctx, *item.OfferID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				util.StockReleaseSkippedTotal.Inc()
				s.logger.Warn("Skipping stock release, offer no longer exists",
					zap.Int64("order_id", orderID),
					zap.Int64("offer_id", *item.OfferID))
				continue
			}
			return err
		}
		if err := offer.Restock(item.Quantity); err != nil {
			return err
		}
		released = append(released, offer)
		stocks = append(stocks, models.OfferStockData{OfferID: offer.ID, NumInStock: offer.NumInStock})
	}

	if err := s.orders.DeleteQuoteOrder(ctx, orderID, released); err != nil {
		return err
	}

	util.QuotesDeletedTotal.Inc()
	s.logger.Info("Quote deleted", zap.Int64("order_id", orderID))

	event := &models.QuoteDeletedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeQuoteDeleted),
		OrderID:   orderID,
		Stock:     stocks,
	}
	if err := s.events.QuoteDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish QuoteDeleted event", zap.Error(err))
	}

	return nil
}

// UpdateQuoteSupplier rebinds the quote's first line item to a different
// supplier's offer for the same part, moving the reservation and
// relocking the price. Later line items are untouched.
func (s *QuoteService) UpdateQuoteSupplier(ctx context.Context, orderID, newOfferID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "QuoteService.UpdateQuoteSupplier")
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusQuote {
		return nil, apperr.InvalidStatef("only quotes can be updated, order status: %s", order.Status)
	}
	if len(order.Items) == 0 {
		return nil, apperr.InvalidStatef("quote has no items to update")
	}
	item := &order.Items[0]

	newOffer, err := s.catalog.GetOfferByID(ctx, newOfferID)
	if err != nil {
		return nil, err
	}
	if newOffer.PartID != item.PartID {
		return nil, apperr.InvalidStatef("cannot change part: quote is for part %s, but new offer is for part %s",
			item.PartID, newOffer.PartID)
	}
	if newOffer.NumInStock < item.Quantity {
		util.InsufficientStockTotal.Inc()
		return nil, apperr.InsufficientStockf("not enough stock for offer %d: available %d, requested %d",
			newOffer.ID, newOffer.NumInStock, item.Quantity)
	}

	oldOfferID := item.OfferID
	var moved []*models.Offer
	var stocks []models.OfferStockData
	if oldOfferID != nil {
		if *oldOfferID == newOffer.ID {
			// Swapping to the same offer: release and reservation net out
			// on the one loaded row.
			if err := newOffer.Restock(item.Quantity); err != nil {
				return nil, err
			}
		} else {
			oldOffer, err := s.catalog.GetOfferByID(ctx, *oldOfferID)
			if err != nil {
				if !apperr.IsKind(err, apperr.KindNotFound) {
					return nil, err
				}
				util.StockReleaseSkippedTotal.Inc()
				s.logger.Warn("Skipping stock release, old offer no longer exists",
					zap.Int64("order_id", orderID),
					zap.Int64("offer_id", *oldOfferID))
			} else {
				if err := oldOffer.Restock(item.Quantity); err != nil {
					return nil, err
				}
				moved = append(moved, oldOffer)
				stocks = append(stocks, models.OfferStockData{OfferID: oldOffer.ID, NumInStock: oldOffer.NumInStock})
			}
		}
	}

	if err := newOffer.Reserve(item.Quantity); err != nil {
		return nil, err
	}
	moved = append(moved, newOffer)
	stocks = append(stocks, models.OfferStockData{OfferID: newOffer.ID, NumInStock: newOffer.NumInStock})

	item.OfferID = &newOffer.ID
	item.UnitPrice = newOffer.Cost
	item.SupplierName = newOffer.SupplierName
	order.RecalculateTotals()
	if err := s.orders.RebindQuoteSupplier(ctx, order, item, moved); err != nil {
		return nil, err
	}

	util.SupplierChangesTotal.Inc()
	s.logger.Info("Quote supplier changed",
		zap.Int64("order_id", orderID),
		zap.Int64("new_offer_id", newOffer.ID))

	event := &models.QuoteSupplierChangedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeQuoteSupplierChanged),
		OrderID:    orderID,
		OldOfferID: oldOfferID,
		NewOfferID: newOffer.ID,
		Stock:      stocks,
	}
	if err := s.events.QuoteSupplierChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish QuoteSupplierChanged event", zap.Error(err))
	}

	return order, nil
}

// ListQuotes returns saved quotes only (QUOTE status, cart flag off)
func (s *QuoteService) ListQuotes(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetOrdersByStatusAndCartFlag(ctx, models.StatusQuote, false)
}

// ListCartItems returns cart items only (QUOTE status, cart flag on)
func (s *QuoteService) ListCartItems(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetOrdersByStatusAndCartFlag(ctx, models.StatusQuote, true)
}
