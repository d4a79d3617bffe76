package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetPartByID retrieves a part by its exact id
func (s *Store) GetPartByID(ctx context.Context, partID string) (*models.Part, error) {
	var part models.Part
	err := s.db.GetContext(ctx, &part, "SELECT * FROM parts WHERE part_id = $1", partID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("part not found: %s", partID)
	}
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// SearchPartsByID retrieves parts whose id contains the keyword,
// case-insensitively
func (s *Store) SearchPartsByID(ctx context.Context, keyword string) ([]models.Part, error) {
	var parts []models.Part
	err := s.db.SelectContext(ctx, &parts,
		"SELECT * FROM parts WHERE part_id ILIKE '%' || $1 || '%' ORDER BY part_id", keyword)
	return parts, err
}

// SearchPartsByName retrieves parts whose name contains the keyword,
// case-insensitively
func (s *Store) SearchPartsByName(ctx context.Context, keyword string) ([]models.Part, error) {
	var parts []models.Part
	err := s.db.SelectContext(ctx, &parts,
		"SELECT * FROM parts WHERE part_name ILIKE '%' || $1 || '%' ORDER BY part_id", keyword)
	return parts, err
}

const offerColumns = `
	o.offer_id, o.part_id, o.supplier_id, o.cost, o.num_in_stock,
	p.part_name, s.supplier_name, s.shipping_days`

// GetOfferByID retrieves an offer with its part and supplier resolved
func (s *Store) GetOfferByID(ctx context.Context, offerID int64) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.GetContext(ctx, &offer, `
		SELECT `+offerColumns+`
		FROM offers o
		JOIN parts p ON p.part_id = o.part_id
		JOIN suppliers s ON s.supplier_id = o.supplier_id
		WHERE o.offer_id = $1`, offerID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("offer not found: %d", offerID)
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetOffersByPartID retrieves all offers for a part with suppliers resolved
func (s *Store) GetOffersByPartID(ctx context.Context, partID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := s.db.SelectContext(ctx, &offers, `
		SELECT `+offerColumns+`
		FROM offers o
		JOIN parts p ON p.part_id = o.part_id
		JOIN suppliers s ON s.supplier_id = o.supplier_id
		WHERE o.part_id = $1
		ORDER BY o.offer_id`, partID)
	return offers, err
}

// GetOffers retrieves all offers, used for the startup stock mirror sync
func (s *Store) GetOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := s.db.SelectContext(ctx, &offers, `
		SELECT `+offerColumns+`
		FROM offers o
		JOIN parts p ON p.part_id = o.part_id
		JOIN suppliers s ON s.supplier_id = o.supplier_id
		ORDER BY o.offer_id`)
	return offers, err
}

// saveOfferStock persists an offer's mutated stock level within the
// caller's transaction.
func saveOfferStock(ctx context.Context, ex sqlx.ExecerContext, offer *models.Offer) error {
	_, err := ex.ExecContext(ctx,
		"UPDATE offers SET num_in_stock = $1 WHERE offer_id = $2",
		offer.NumInStock, offer.ID)
	return err
}

// CreatePart inserts a catalog part (seed tool only)
func (s *Store) CreatePart(ctx context.Context, part *models.Part) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO parts (part_id, part_name) VALUES ($1, $2)",
		part.ID, part.Name)
	return err
}

// CreateSupplier inserts a supplier (seed tool only)
func (s *Store) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return s.db.GetContext(ctx, &supplier.ID,
		"INSERT INTO suppliers (supplier_name, shipping_days) VALUES ($1, $2) RETURNING supplier_id",
		supplier.Name, supplier.ShippingDays)
}

// CreateOffer inserts a part/supplier offer (seed tool only)
func (s *Store) CreateOffer(ctx context.Context, offer *models.Offer) error {
	return s.db.GetContext(ctx, &offer.ID,
		"INSERT INTO offers (part_id, supplier_id, cost, num_in_stock) VALUES ($1, $2, $3, $4) RETURNING offer_id",
		offer.PartID, offer.SupplierID, offer.Cost, offer.NumInStock)
}
