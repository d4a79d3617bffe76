package service

import (
	"context"

	"parts-quote-service/internal/broker"
	"parts-quote-service/internal/models"
	"parts-quote-service/internal/util"

	"go.uber.org/zap"
)

// OrderService owns the order lifecycle:
// QUOTE -> NEW -> PROCESSING -> COMPLETED, with CANCELED reachable from
// everything but COMPLETED.
type OrderService struct {
	orders OrderStore
	events EventSink
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, events EventSink) *OrderService {
	return &OrderService{
		orders: orders,
		events: events,
		logger: util.GetLogger(),
	}
}

// Checkout turns a quote into a NEW order ready for processing
func (s *OrderService) Checkout(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()
	return s.transition(ctx, orderID, models.StatusNew)
}

// Process moves a NEW order into PROCESSING
func (s *OrderService) Process(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Process")
	defer span.End()
	return s.transition(ctx, orderID, models.StatusProcessing)
}

// Complete moves a PROCESSING order into COMPLETED
func (s *OrderService) Complete(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Complete")
	defer span.End()
	return s.transition(ctx, orderID, models.StatusCompleted)
}

// Cancel cancels any order that is not COMPLETED. Reserved stock is not
// returned on cancellation.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Cancel")
	defer span.End()
	return s.transition(ctx, orderID, models.StatusCanceled)
}

func (s *OrderService) transition(ctx context.Context, orderID int64, to models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.TransitionTo(to); err != nil {
		return nil, err
	}

	order.RecalculateTotals()
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	util.OrderTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	event := &models.OrderStatusChangedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Total:      order.Total,
	}
	if err := s.events.OrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

// ListOrders returns all orders, most recent first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetOrders(ctx)
}

// ListOrdersByStatus returns orders in the given status, most recent first
func (s *OrderService) ListOrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.orders.GetOrdersByStatus(ctx, parsed)
}
