package worker

import (
	"context"
	"fmt"

	"parts-quote-service/internal/broker"
	"parts-quote-service/internal/models"
	"parts-quote-service/internal/util"

	"go.uber.org/zap"
)

// MirrorStore reads offers for the full mirror sync.
type MirrorStore interface {
	GetOffers(ctx context.Context) ([]models.Offer, error)
}

// MirrorWriter writes offer stock levels to the read-side mirror.
type MirrorWriter interface {
	SetOfferStock(ctx context.Context, offerID int64, numInStock int) error
	SetOfferStocks(ctx context.Context, stocks map[int64]int) error
}

// StockMirrorWorker consumes quote events and keeps the redis stock
// mirror current. Mirror writes are idempotent, so replayed events are
// harmless.
type StockMirrorWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	store    MirrorStore
	mirror   MirrorWriter
	logger   *zap.Logger
}

// NewStockMirrorWorker creates a new stock mirror worker
func NewStockMirrorWorker(consumer *broker.Consumer, store MirrorStore, mirror MirrorWriter) *StockMirrorWorker {
	w := &StockMirrorWorker{
		consumer: consumer,
		handler:  broker.NewEventHandler(),
		store:    store,
		mirror:   mirror,
		logger:   util.GetLogger(),
	}
	w.handler.OnStockUpdate(w.applyStockUpdate)
	return w
}

// Sync mirrors every offer's stock level, run once at startup
func (w *StockMirrorWorker) Sync(ctx context.Context) error {
	offers, err := w.store.GetOffers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load offers for mirror sync: %w", err)
	}

	stocks := make(map[int64]int, len(offers))
	for _, offer := range offers {
		stocks[offer.ID] = offer.NumInStock
	}
	if err := w.mirror.SetOfferStocks(ctx, stocks); err != nil {
		return fmt.Errorf("failed to write mirror sync: %w", err)
	}

	w.logger.Info("Stock mirror synced", zap.Int("offers", len(offers)))
	return nil
}

// Start starts consuming quote events
func (w *StockMirrorWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock mirror worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *StockMirrorWorker) Stop() error {
	w.logger.Info("Stopping stock mirror worker")
	return w.consumer.Close()
}

func (w *StockMirrorWorker) applyStockUpdate(ctx context.Context, stock models.OfferStockData) error {
	if err := w.mirror.SetOfferStock(ctx, stock.OfferID, stock.NumInStock); err != nil {
		w.logger.Error("Failed to update stock mirror",
			zap.Int64("offer_id", stock.OfferID),
			zap.Error(err))
		return err
	}
	return nil
}
