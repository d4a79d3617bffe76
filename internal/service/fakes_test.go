package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/models"
)

// fakeStore is an in-memory stand-in for *store.Store. Reads hand out
// copies, the way row scans do, so services must persist mutations
// explicitly. Lifecycle writes are all-or-nothing: when an injected
// error fires, nothing is applied, like a rolled-back transaction.
type fakeStore struct {
	offers map[int64]*models.Offer
	orders map[int64]*models.Order

	nextOrderID int64
	nextItemID  int64
	seq         int

	createErr error
	deleteErr error
	rebindErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		offers: make(map[int64]*models.Offer),
		orders: make(map[int64]*models.Order),
	}
}

func (f *fakeStore) addOffer(offer models.Offer) {
	f.offers[offer.ID] = &offer
}

func (f *fakeStore) GetOfferByID(ctx context.Context, offerID int64) (*models.Offer, error) {
	offer, ok := f.offers[offerID]
	if !ok {
		return nil, apperr.NotFoundf("offer not found: %d", offerID)
	}
	copied := *offer
	return &copied, nil
}

func (f *fakeStore) applyOfferStock(offer *models.Offer) {
	if stored, ok := f.offers[offer.ID]; ok {
		stored.NumInStock = offer.NumInStock
	}
}

func (f *fakeStore) CreateQuoteOrder(ctx context.Context, order *models.Order, offer *models.Offer) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.applyOfferStock(offer)
	f.nextOrderID++
	f.seq++
	order.ID = f.nextOrderID
	order.CreatedAt = time.Unix(int64(f.seq), 0)
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		f.nextItemID++
		order.Items[i].ID = f.nextItemID
		order.Items[i].OrderID = order.ID
	}
	stored := copyOrder(order)
	f.orders[order.ID] = stored
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, apperr.NotFoundf("order not found: %d", orderID)
	}
	return copyOrder(order), nil
}

func (f *fakeStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	return f.list(func(*models.Order) bool { return true }), nil
}

func (f *fakeStore) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool { return o.Status == status }), nil
}

func (f *fakeStore) GetOrdersByStatusAndCartFlag(ctx context.Context, status models.OrderStatus, isCartItem bool) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool {
		return o.Status == status && o.IsCartItem == isCartItem
	}), nil
}

func (f *fakeStore) SaveOrder(ctx context.Context, order *models.Order) error {
	stored, ok := f.orders[order.ID]
	if !ok {
		return apperr.NotFoundf("order not found: %d", order.ID)
	}
	stored.Status = order.Status
	stored.IsCartItem = order.IsCartItem
	stored.Subtotal = order.Subtotal
	stored.TaxAmount = order.TaxAmount
	stored.Total = order.Total
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (f *fakeStore) RebindQuoteSupplier(ctx context.Context, order *models.Order, item *models.OrderItem, offers []*models.Offer) error {
	if f.rebindErr != nil {
		return f.rebindErr
	}
	stored, ok := f.orders[order.ID]
	if !ok {
		return apperr.NotFoundf("order not found: %d", order.ID)
	}
	for _, offer := range offers {
		f.applyOfferStock(offer)
	}
	for i := range stored.Items {
		if stored.Items[i].ID == item.ID {
			stored.Items[i].OfferID = item.OfferID
			stored.Items[i].UnitPrice = item.UnitPrice
			stored.Items[i].SupplierName = item.SupplierName
		}
	}
	stored.Status = order.Status
	stored.Subtotal = order.Subtotal
	stored.TaxAmount = order.TaxAmount
	stored.Total = order.Total
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (f *fakeStore) DeleteQuoteOrder(ctx context.Context, orderID int64, released []*models.Offer) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, offer := range released {
		f.applyOfferStock(offer)
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeStore) list(keep func(*models.Order) bool) []models.Order {
	var result []models.Order
	for _, order := range f.orders {
		if keep(order) {
			result = append(result, *copyOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if result == nil {
		result = []models.Order{}
	}
	return result
}

func copyOrder(order *models.Order) *models.Order {
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	return &copied
}

// fakeEvents records published event types.
type fakeEvents struct {
	published []string
}

func (f *fakeEvents) QuoteCreated(ctx context.Context, event *models.QuoteCreatedEvent) error {
	f.published = append(f.published, event.EventType)
	return nil
}

func (f *fakeEvents) QuoteDeleted(ctx context.Context, event *models.QuoteDeletedEvent) error {
	f.published = append(f.published, event.EventType)
	return nil
}

func (f *fakeEvents) QuoteSupplierChanged(ctx context.Context, event *models.QuoteSupplierChangedEvent) error {
	f.published = append(f.published, event.EventType)
	return nil
}

func (f *fakeEvents) OrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	f.published = append(f.published, event.EventType)
	return nil
}

// fakePartStore backs the search service tests and counts substring
// lookups so short-circuit behavior can be asserted.
type fakePartStore struct {
	parts       []models.Part
	offers      map[string][]models.Offer
	byIDCalls   int
	byNameCalls int
}

func (f *fakePartStore) GetPartByID(ctx context.Context, partID string) (*models.Part, error) {
	for _, p := range f.parts {
		if p.ID == partID {
			copied := p
			return &copied, nil
		}
	}
	return nil, apperr.NotFoundf("part not found: %s", partID)
}

func (f *fakePartStore) SearchPartsByID(ctx context.Context, keyword string) ([]models.Part, error) {
	f.byIDCalls++
	return f.filter(func(p models.Part) bool {
		return strings.Contains(strings.ToLower(p.ID), strings.ToLower(keyword))
	}), nil
}

func (f *fakePartStore) SearchPartsByName(ctx context.Context, keyword string) ([]models.Part, error) {
	f.byNameCalls++
	return f.filter(func(p models.Part) bool {
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword))
	}), nil
}

func (f *fakePartStore) GetOffersByPartID(ctx context.Context, partID string) ([]models.Offer, error) {
	return append([]models.Offer(nil), f.offers[partID]...), nil
}

func (f *fakePartStore) filter(keep func(models.Part) bool) []models.Part {
	var result []models.Part
	for _, p := range f.parts {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}

// fakeMirror is an in-memory stock mirror.
type fakeMirror struct {
	stocks map[int64]int
	err    error
}

func (f *fakeMirror) GetOfferStock(ctx context.Context, offerID int64) (int, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	stock, ok := f.stocks[offerID]
	return stock, ok, nil
}
