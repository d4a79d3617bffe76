package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/models"
)

func washerPumpOffer(id int64, cost string, stock int) models.Offer {
	return models.Offer{
		ID:           id,
		PartID:       "WPW10123456",
		SupplierID:   id,
		Cost:         decimal.RequireFromString(cost),
		NumInStock:   stock,
		PartName:     "Washer Drain Pump",
		SupplierName: "AppliancePartsPros",
		ShippingDays: 3,
	}
}

func newQuoteFixture() (*QuoteService, *fakeStore, *fakeEvents) {
	store := newFakeStore()
	events := &fakeEvents{}
	return NewQuoteService(store, store, events), store, events
}

func TestCreateQuote(t *testing.T) {
	svc, store, events := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusQuote, order.Status)
	assert.False(t, order.IsCartItem)
	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "WPW10123456", item.PartID)
	require.NotNil(t, item.OfferID)
	assert.Equal(t, int64(1), *item.OfferID)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("50.00")))

	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("107.00")), "total = %s", order.Total)

	assert.Equal(t, 10, store.offers[1].NumInStock)
	assert.Equal(t, []string{models.EventTypeQuoteCreated}, events.published)
}

func TestCreateQuoteCartItem(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))

	order, err := svc.CreateQuote(context.Background(), 1, 1, true)
	require.NoError(t, err)
	assert.True(t, order.IsCartItem)
	assert.Equal(t, models.StatusQuote, order.Status)
}

func TestCreateQuoteInvalidQuantity(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))

	for _, qty := range []int{0, -3} {
		_, err := svc.CreateQuote(context.Background(), 1, qty, false)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	}
	assert.Equal(t, 12, store.offers[1].NumInStock)
}

func TestCreateQuoteOfferNotFound(t *testing.T) {
	svc, _, _ := newQuoteFixture()

	_, err := svc.CreateQuote(context.Background(), 99, 1, false)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateQuoteInsufficientStock(t *testing.T) {
	svc, store, events := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 3))

	_, err := svc.CreateQuote(context.Background(), 1, 5, false)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	assert.Equal(t, 3, store.offers[1].NumInStock, "failed reservation must not mutate stock")
	assert.Empty(t, events.published)
}

func TestCreateQuoteFailedPersistLeavesStockUntouched(t *testing.T) {
	svc, store, events := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	store.createErr = errors.New("connection reset")

	_, err := svc.CreateQuote(context.Background(), 1, 2, false)
	require.Error(t, err)

	// The order insert failed, so the reservation must not persist.
	assert.Equal(t, 12, store.offers[1].NumInStock)
	assert.Empty(t, events.published)
}

func TestDeleteQuoteFailedPersistKeepsReservation(t *testing.T) {
	svc, store, events := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)
	store.deleteErr = errors.New("connection reset")

	require.Error(t, svc.DeleteQuote(ctx, order.ID))

	// The delete failed, so the release must not persist either.
	assert.Equal(t, 10, store.offers[1].NumInStock)
	_, err = store.GetOrderByID(ctx, order.ID)
	assert.NoError(t, err, "quote must survive the failed delete")
	assert.Equal(t, []string{models.EventTypeQuoteCreated}, events.published)
}

func TestUpdateQuoteSupplierFailedPersistMovesNothing(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	store.addOffer(washerPumpOffer(2, "55.00", 10))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)
	store.rebindErr = errors.New("connection reset")

	_, err = svc.UpdateQuoteSupplier(ctx, order.ID, 2)
	require.Error(t, err)

	// Neither offer moves and the item still points at the old offer.
	assert.Equal(t, 10, store.offers[1].NumInStock)
	assert.Equal(t, 10, store.offers[2].NumInStock)
	stored, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Items[0].OfferID)
	assert.Equal(t, int64(1), *stored.Items[0].OfferID)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("50.00")))
}

func TestCreateThenDeleteQuoteRestoresStock(t *testing.T) {
	svc, store, events := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 10, store.offers[1].NumInStock)

	require.NoError(t, svc.DeleteQuote(ctx, order.ID))

	assert.Equal(t, 12, store.offers[1].NumInStock)
	_, err = store.GetOrderByID(ctx, order.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, []string{models.EventTypeQuoteCreated, models.EventTypeQuoteDeleted}, events.published)
}

func TestDeleteQuoteNotFound(t *testing.T) {
	svc, _, _ := newQuoteFixture()

	err := svc.DeleteQuote(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteQuoteRejectsNonQuote(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)
	store.orders[order.ID].Status = models.StatusNew

	err = svc.DeleteQuote(ctx, order.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, 10, store.offers[1].NumInStock, "stock must stay reserved")
}

func TestDeleteQuoteSkipsReleaseWhenOfferGone(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)

	// Offer disappears before the quote is deleted; the release is
	// skipped and the reserved units leak.
	delete(store.offers, 1)

	require.NoError(t, svc.DeleteQuote(ctx, order.ID))
	_, err = store.GetOrderByID(ctx, order.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateQuoteSupplier(t *testing.T) {
	svc, store, events := newQuoteFixture()
	offerA := washerPumpOffer(1, "50.00", 12)
	offerB := washerPumpOffer(2, "55.00", 10)
	offerB.SupplierName = "RepairClinic"
	store.addOffer(offerA)
	store.addOffer(offerB)
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 10, store.offers[1].NumInStock)

	updated, err := svc.UpdateQuoteSupplier(ctx, order.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 12, store.offers[1].NumInStock, "old offer restored")
	assert.Equal(t, 8, store.offers[2].NumInStock, "new offer reserved")

	require.Len(t, updated.Items, 1)
	item := updated.Items[0]
	require.NotNil(t, item.OfferID)
	assert.Equal(t, int64(2), *item.OfferID)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("55.00")), "price relocked to %s", item.UnitPrice)
	assert.Equal(t, "RepairClinic", item.SupplierName)

	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("110.00")))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("117.70")), "total = %s", updated.Total)

	stored, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(updated.Total))
	require.NotNil(t, stored.Items[0].OfferID)
	assert.Equal(t, int64(2), *stored.Items[0].OfferID)

	assert.Contains(t, events.published, models.EventTypeQuoteSupplierChanged)
}

func TestUpdateQuoteSupplierRejectsDifferentPart(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	other := washerPumpOffer(2, "45.00", 50)
	other.PartID = "DC97-14486A"
	other.PartName = "Dryer Heating Element"
	store.addOffer(other)
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)

	_, err = svc.UpdateQuoteSupplier(ctx, order.ID, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, 10, store.offers[1].NumInStock, "reservation untouched")
	assert.Equal(t, 50, store.offers[2].NumInStock)
}

func TestUpdateQuoteSupplierInsufficientStock(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	short := washerPumpOffer(2, "40.00", 1)
	store.addOffer(short)
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)

	_, err = svc.UpdateQuoteSupplier(ctx, order.ID, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	assert.Equal(t, 10, store.offers[1].NumInStock)
	assert.Equal(t, 1, store.offers[2].NumInStock)
}

func TestUpdateQuoteSupplierRejectsNonQuote(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	store.addOffer(washerPumpOffer(2, "55.00", 10))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)
	store.orders[order.ID].Status = models.StatusProcessing

	_, err = svc.UpdateQuoteSupplier(ctx, order.ID, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestUpdateQuoteSupplierNewOfferNotFound(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)

	_, err = svc.UpdateQuoteSupplier(ctx, order.ID, 99)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateQuoteSupplierSkipsReleaseWhenOldOfferGone(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 12))
	store.addOffer(washerPumpOffer(2, "55.00", 10))
	ctx := context.Background()

	order, err := svc.CreateQuote(ctx, 1, 2, false)
	require.NoError(t, err)

	delete(store.offers, 1)

	updated, err := svc.UpdateQuoteSupplier(ctx, order.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, store.offers[2].NumInStock)
	assert.True(t, updated.Items[0].UnitPrice.Equal(decimal.RequireFromString("55.00")))
}

func TestListQuotesSeparatesCartItems(t *testing.T) {
	svc, store, _ := newQuoteFixture()
	store.addOffer(washerPumpOffer(1, "50.00", 100))
	ctx := context.Background()

	saved, err := svc.CreateQuote(ctx, 1, 1, false)
	require.NoError(t, err)
	cart, err := svc.CreateQuote(ctx, 1, 1, true)
	require.NoError(t, err)

	quotes, err := svc.ListQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, saved.ID, quotes[0].ID)

	cartItems, err := svc.ListCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, cartItems, 1)
	assert.Equal(t, cart.ID, cartItems[0].ID)
}
