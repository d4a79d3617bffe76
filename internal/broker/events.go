package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parts-quote-service/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing quote and order domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// NewBaseEvent stamps a fresh event id and timestamp
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// QuoteCreated publishes a QuoteCreated event
func (ep *EventPublisher) QuoteCreated(ctx context.Context, event *models.QuoteCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// QuoteDeleted publishes a QuoteDeleted event
func (ep *EventPublisher) QuoteDeleted(ctx context.Context, event *models.QuoteDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// QuoteSupplierChanged publishes a QuoteSupplierChanged event
func (ep *EventPublisher) QuoteSupplierChanged(ctx context.Context, event *models.QuoteSupplierChangedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// OrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) OrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// StockUpdateFunc reacts to a mirrored stock change for one offer
type StockUpdateFunc func(ctx context.Context, stock models.OfferStockData) error

// EventHandler dispatches consumed messages by event type
type EventHandler struct {
	onStockUpdate StockUpdateFunc
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnStockUpdate registers the callback invoked for every offer stock
// change carried by a quote event
func (eh *EventHandler) OnStockUpdate(fn StockUpdateFunc) {
	eh.onStockUpdate = fn
}

// HandleMessage decodes a message and dispatches stock updates to the
// registered callback
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if eh.onStockUpdate == nil {
		return nil
	}

	switch base.EventType {
	case models.EventTypeQuoteCreated:
		var event models.QuoteCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal QuoteCreated event: %w", err)
		}
		return eh.onStockUpdate(ctx, event.Stock)

	case models.EventTypeQuoteDeleted:
		var event models.QuoteDeletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal QuoteDeleted event: %w", err)
		}
		for _, stock := range event.Stock {
			if err := eh.onStockUpdate(ctx, stock); err != nil {
				return err
			}
		}
		return nil

	case models.EventTypeQuoteSupplierChanged:
		var event models.QuoteSupplierChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal QuoteSupplierChanged event: %w", err)
		}
		for _, stock := range event.Stock {
			if err := eh.onStockUpdate(ctx, stock); err != nil {
				return err
			}
		}
		return nil
	}

	// Status changes carry no stock deltas.
	return nil
}
