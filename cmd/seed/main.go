// Seed loads the one-time catalog fixture: parts, suppliers, and five
// price-varied offers per part. Run once against an empty database.
package main

import (
	"context"
	"log"
	"strings"

	"parts-quote-service/config"
	"parts-quote-service/internal/models"
	"parts-quote-service/internal/store"

	"github.com/shopspring/decimal"
)

type supplierFixture struct {
	name         string
	shippingDays int
	// price multiplier over the part's base price and base stock level
	multiplier string
	baseStock  int
}

var supplierFixtures = []supplierFixture{
	{"AppliancePartsPros", 3, "1.00", 12},
	{"RepairClinic", 5, "1.10", 8},
	{"PartSelect", 7, "0.90", 15},
	{"AppliancePartsDirect", 2, "1.15", 20},
	{"ReliableParts", 6, "0.95", 10},
}

var partFixtures = []models.Part{
	{ID: "WPW10123456", Name: "Washer Drain Pump"},
	{ID: "WPW10123457", Name: "Washer Door Lock"},
	{ID: "WPW10123458", Name: "Washer Water Inlet Valve"},
	{ID: "WPW10123459", Name: "Washer Lid Switch"},
	{ID: "WPW10123460", Name: "Washer Drive Belt"},
	{ID: "DA97-12609C", Name: "Refrigerator Water Filter"},
	{ID: "DA97-12610A", Name: "Refrigerator Door Gasket"},
	{ID: "DA97-12611B", Name: "Refrigerator Ice Maker Assembly"},
	{ID: "DA97-12612C", Name: "Refrigerator Thermostat"},
	{ID: "DA97-12613D", Name: "Refrigerator Evaporator Fan Motor"},
	{ID: "DC97-14486A", Name: "Dryer Heating Element"},
	{ID: "DC97-14487B", Name: "Dryer Thermal Fuse"},
	{ID: "DC97-14488C", Name: "Dryer Belt"},
	{ID: "DC97-14489D", Name: "Dryer Door Switch"},
	{ID: "DC97-14490E", Name: "Dryer Blower Wheel"},
	{ID: "WD21X10025", Name: "Dishwasher Circulation Pump"},
	{ID: "WD21X10026", Name: "Dishwasher Door Latch"},
	{ID: "WD21X10027", Name: "Dishwasher Spray Arm"},
	{ID: "WD21X10028", Name: "Dishwasher Float Switch"},
	{ID: "WD21X10029", Name: "Dishwasher Heating Element"},
	{ID: "WB27X10030", Name: "Oven Bake Element"},
	{ID: "WB27X10031", Name: "Oven Broil Element"},
	{ID: "WB27X10032", Name: "Oven Temperature Sensor"},
	{ID: "WB27X10033", Name: "Range Igniter"},
	{ID: "WB27X10034", Name: "Range Surface Burner"},
}

func main() {
	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	ctx := context.Background()

	for i := range partFixtures {
		if err := db.CreatePart(ctx, &partFixtures[i]); err != nil {
			log.Fatalf("Failed to create part %s: %v", partFixtures[i].ID, err)
		}
	}

	suppliers := make([]models.Supplier, len(supplierFixtures))
	for i, f := range supplierFixtures {
		suppliers[i] = models.Supplier{Name: f.name, ShippingDays: f.shippingDays}
		if err := db.CreateSupplier(ctx, &suppliers[i]); err != nil {
			log.Fatalf("Failed to create supplier %s: %v", f.name, err)
		}
	}

	offers := 0
	for partIndex, part := range partFixtures {
		basePrice := basePriceFor(part.ID)
		stockVariation := (partIndex % 5) * 3

		for i, f := range supplierFixtures {
			offer := models.Offer{
				PartID:     part.ID,
				SupplierID: suppliers[i].ID,
				Cost:       basePrice.Mul(decimal.RequireFromString(f.multiplier)).Round(2),
				NumInStock: f.baseStock + stockVariation,
			}
			if err := db.CreateOffer(ctx, &offer); err != nil {
				log.Fatalf("Failed to create offer for part %s, supplier %s: %v", part.ID, f.name, err)
			}
			offers++
		}
	}

	log.Printf("Catalog seeded: %d parts, %d suppliers, %d offers",
		len(partFixtures), len(suppliers), offers)
}

// basePriceFor maps a part id prefix to its category's base price.
func basePriceFor(partID string) decimal.Decimal {
	switch {
	case strings.HasPrefix(partID, "WPW"):
		return decimal.RequireFromString("50.00") // washer
	case strings.HasPrefix(partID, "DA97"):
		return decimal.RequireFromString("35.00") // refrigerator
	case strings.HasPrefix(partID, "DC97"):
		return decimal.RequireFromString("40.00") // dryer
	case strings.HasPrefix(partID, "WD21"):
		return decimal.RequireFromString("45.00") // dishwasher
	case strings.HasPrefix(partID, "WB27"):
		return decimal.RequireFromString("30.00") // oven and range
	default:
		return decimal.RequireFromString("40.00")
	}
}
