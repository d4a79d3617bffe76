package service

import (
	"context"
	"sort"
	"strings"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/models"
	"parts-quote-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sort modes for supplier comparison
const (
	SortCheapest        = "cheapest"
	SortFastestShipping = "fastest_shipping"
)

// SupplierOption is one supplier's offer for the compared part
type SupplierOption struct {
	OfferID      int64           `json:"offer_id"`
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Cost         decimal.Decimal `json:"cost"`
	NumInStock   int             `json:"num_in_stock"`
	ShippingDays int             `json:"shipping_days"`
}

// PartComparison is the comparison view for one part
type PartComparison struct {
	PartID   string           `json:"part_id"`
	PartName string           `json:"part_name"`
	Options  []SupplierOption `json:"options"`
}

// SearchService serves part search and supplier comparison
type SearchService struct {
	parts  PartStore
	mirror StockMirror
	logger *zap.Logger
}

// NewSearchService creates a new search service. mirror may be nil when
// no redis mirror is configured.
func NewSearchService(parts PartStore, mirror StockMirror) *SearchService {
	return &SearchService{
		parts:  parts,
		mirror: mirror,
		logger: util.GetLogger(),
	}
}

// SearchParts finds parts by exact id first, then by case-insensitive
// substring on id and name, de-duplicated by part id in insertion order.
func (s *SearchService) SearchParts(ctx context.Context, query string) ([]models.Part, error) {
	ctx, span := util.StartSpan(ctx, "SearchService.SearchParts")
	defer span.End()

	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apperr.InvalidArgumentf("search query cannot be empty")
	}

	util.PartSearchesTotal.Inc()

	part, err := s.parts.GetPartByID(ctx, q)
	if err == nil {
		return []models.Part{*part}, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	byID, err := s.parts.SearchPartsByID(ctx, q)
	if err != nil {
		return nil, err
	}
	byName, err := s.parts.SearchPartsByName(ctx, q)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	results := make([]models.Part, 0, len(byID)+len(byName))
	for _, p := range append(byID, byName...) {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		results = append(results, p)
	}
	return results, nil
}

// ComparePartOffers returns every supplier's offer for a part, optionally
// sorted by cheapest cost or fastest shipping. Sorting is stable; ties
// retain store order.
func (s *SearchService) ComparePartOffers(ctx context.Context, partID, sortMode string) (*PartComparison, error) {
	ctx, span := util.StartSpan(ctx, "SearchService.ComparePartOffers")
	defer span.End()

	sortMode = strings.ToLower(strings.TrimSpace(sortMode))
	switch sortMode {
	case "", SortCheapest, SortFastestShipping:
	default:
		return nil, apperr.InvalidArgumentf("invalid sort mode: %s", sortMode)
	}

	part, err := s.parts.GetPartByID(ctx, partID)
	if err != nil {
		return nil, err
	}

	offers, err := s.parts.GetOffersByPartID(ctx, partID)
	if err != nil {
		return nil, err
	}

	options := make([]SupplierOption, 0, len(offers))
	for _, offer := range offers {
		option := SupplierOption{
			OfferID:      offer.ID,
			SupplierID:   offer.SupplierID,
			SupplierName: offer.SupplierName,
			Cost:         offer.Cost,
			NumInStock:   offer.NumInStock,
			ShippingDays: offer.ShippingDays,
		}
		if s.mirror != nil {
			if stock, ok, err := s.mirror.GetOfferStock(ctx, offer.ID); err != nil {
				s.logger.Warn("Stock mirror read failed, using database value",
					zap.Int64("offer_id", offer.ID), zap.Error(err))
			} else if ok {
				option.NumInStock = stock
			}
		}
		options = append(options, option)
	}

	switch sortMode {
	case SortCheapest:
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Cost.LessThan(options[j].Cost)
		})
	case SortFastestShipping:
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].ShippingDays < options[j].ShippingDays
		})
	}

	util.ComparisonsTotal.WithLabelValues(sortLabel(sortMode)).Inc()

	return &PartComparison{
		PartID:   part.ID,
		PartName: part.Name,
		Options:  options,
	}, nil
}

func sortLabel(sortMode string) string {
	if sortMode == "" {
		return "none"
	}
	return sortMode
}
