package store

import (
	"context"
	"database/sql"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateQuoteOrder persists the reserved offer's stock level and the new
// order with its line items in one transaction, so the reservation and
// the order commit together or not at all.
func (s *Store) CreateQuoteOrder(ctx context.Context, order *models.Order, offer *models.Offer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveOfferStock(ctx, tx, offer); err != nil {
		return err
	}

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (status, is_cart_item, subtotal, tax_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_id, created_at, updated_at`,
		order.Status, order.IsCartItem, order.Subtotal, order.TaxAmount, order.Total)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, part_id, offer_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING order_item_id`,
			item.OrderID, item.PartID, item.OfferID, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteQuoteOrder deletes an order and persists the released offers'
// stock levels in one transaction; the FK cascade removes its line items.
func (s *Store) DeleteQuoteOrder(ctx context.Context, orderID int64, released []*models.Offer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, offer := range released {
		if err := saveOfferStock(ctx, tx, offer); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE order_id = $1", orderID); err != nil {
		return err
	}

	return tx.Commit()
}

// RebindQuoteSupplier persists a line item's new offer binding and locked
// price, both offers' stock levels, and the order's recomputed totals in
// one transaction.
func (s *Store) RebindQuoteSupplier(ctx context.Context, order *models.Order, item *models.OrderItem, offers []*models.Offer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, offer := range offers {
		if err := saveOfferStock(ctx, tx, offer); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE order_items SET offer_id = $1, unit_price = $2 WHERE order_item_id = $3",
		item.OfferID, item.UnitPrice, item.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, subtotal = $2, tax_amount = $3, total_amount = $4, updated_at = NOW()
		WHERE order_id = $5`,
		order.Status, order.Subtotal, order.TaxAmount, order.Total, order.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with items, bound offers and
// suppliers resolved
func (s *Store) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("order not found: %d", orderID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, []*models.Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves all orders, most recent first, with items resolved
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, orders)
}

// GetOrdersByStatus retrieves orders in a given status, most recent first
func (s *Store) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC", status)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, orders)
}

// GetOrdersByStatusAndCartFlag separates saved quotes from cart items,
// both of which live in QUOTE status
func (s *Store) GetOrdersByStatusAndCartFlag(ctx context.Context, status models.OrderStatus, isCartItem bool) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 AND is_cart_item = $2 ORDER BY created_at DESC",
		status, isCartItem)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, orders)
}

// SaveOrder persists an order's status and totals
func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, subtotal = $2, tax_amount = $3, total_amount = $4, updated_at = NOW()
		WHERE order_id = $5`,
		order.Status, order.Subtotal, order.TaxAmount, order.Total, order.ID)
	return err
}

func (s *Store) withItems(ctx context.Context, orders []models.Order) ([]models.Order, error) {
	if len(orders) == 0 {
		return []models.Order{}, nil
	}
	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := s.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) attachItems(ctx context.Context, orders []*models.Order) error {
	ids := make([]int64, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		byID[order.ID] = order
		order.Items = []models.OrderItem{}
	}

	query, args, err := sqlx.In(`
		SELECT i.order_item_id, i.order_id, i.part_id, i.offer_id, i.quantity, i.unit_price,
		       p.part_name, COALESCE(s.supplier_name, '') AS supplier_name
		FROM order_items i
		JOIN parts p ON p.part_id = i.part_id
		LEFT JOIN offers o ON o.offer_id = i.offer_id
		LEFT JOIN suppliers s ON s.supplier_id = o.supplier_id
		WHERE i.order_id IN (?)
		ORDER BY i.order_item_id`, ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}

	for _, item := range items {
		order := byID[item.OrderID]
		order.Items = append(order.Items, item)
	}
	return nil
}
