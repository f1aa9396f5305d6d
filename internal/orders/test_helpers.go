package orders

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/internal/catalog"
	"github.com/thescentlab/scentlab-backend/internal/inventory"
	"github.com/thescentlab/scentlab-backend/pkg/config"
	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
)

const fragrancesDDL = `
CREATE TABLE IF NOT EXISTS fragrances (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  bottle_price TEXT NOT NULL DEFAULT '0',
  per_ml_price TEXT NOT NULL DEFAULT '0',
  scent_citrus INTEGER NOT NULL DEFAULT 0,
  scent_floral INTEGER NOT NULL DEFAULT 0,
  scent_woody INTEGER NOT NULL DEFAULT 0,
  scent_spicy INTEGER NOT NULL DEFAULT 0,
  scent_fresh INTEGER NOT NULL DEFAULT 0,
  scent_musky INTEGER NOT NULL DEFAULT 0,
  scent_sweet INTEGER NOT NULL DEFAULT 0,
  scent_oriental INTEGER NOT NULL DEFAULT 0,
  top_notes TEXT NOT NULL DEFAULT '{}',
  middle_notes TEXT NOT NULL DEFAULT '{}',
  base_notes TEXT NOT NULL DEFAULT '{}',
  gender TEXT NOT NULL,
  concentration TEXT NOT NULL,
  release_year INTEGER,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`

const inventoriesDDL = `
CREATE TABLE IF NOT EXISTS inventories (
  fragrance_id TEXT PRIMARY KEY,
  sealed_bottles INTEGER NOT NULL DEFAULT 0,
  bottle_size_ml INTEGER NOT NULL,
  open_decant_ml INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`

const ordersDDL = `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  guest_email TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  ship_name TEXT NOT NULL,
  ship_line1 TEXT NOT NULL,
  ship_line2 TEXT,
  ship_city TEXT NOT NULL,
  ship_state TEXT NOT NULL,
  ship_postal TEXT NOT NULL,
  ship_country TEXT NOT NULL,
  subtotal TEXT NOT NULL DEFAULT '0',
  shipping TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL DEFAULT '0',
  pay_method TEXT NOT NULL DEFAULT 'simulated',
  paid_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

const orderItemsDDL = `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  fragrance_id TEXT NOT NULL,
  purchase_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  ml_quantity INTEGER NOT NULL DEFAULT 0,
  price_at_purchase TEXT NOT NULL DEFAULT '0',
  created_at DATETIME
);`

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{fragrancesDDL, inventoriesDDL, ordersDDL, orderItemsDDL} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func newTestService(t *testing.T, now func() time.Time) (Service, *gorm.DB) {
	t.Helper()

	conn := setupOrdersTestDB(t)
	client := db.NewClientFromGorm(conn)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), client, logg, nil)
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(conn),
		catalog.NewRepository(conn),
		ledger,
		client,
		logg,
		nil,
		config.ShippingConfig{FlatFee: "9.99", FreeThreshold: "100"},
	)
	require.NoError(t, err)

	if now != nil {
		svc.(*service).now = now
	}
	return svc, conn
}

func mustSeedFragranceWithStock(t *testing.T, conn *gorm.DB, bottlePrice, perMl string, sealed, bottleSize, openMl int) uuid.UUID {
	t.Helper()

	fragrance := &models.Fragrance{
		ID:            uuid.New(),
		Name:          "Test Fragrance " + uuid.NewString()[:8],
		Brand:         "Test Brand",
		BottlePrice:   decimal.RequireFromString(bottlePrice),
		PerMlPrice:    decimal.RequireFromString(perMl),
		Gender:        enums.GenderUnisex,
		Concentration: enums.ConcentrationEauDeParfum,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(fragrance).Error)
	require.NoError(t, conn.Create(&models.Inventory{
		FragranceID:   fragrance.ID,
		SealedBottles: sealed,
		BottleSizeMl:  bottleSize,
		OpenDecantMl:  openMl,
	}).Error)
	return fragrance.ID
}

func testAddress() ShippingAddress {
	return ShippingAddress{
		Name:       "Ada Tester",
		Line1:      "1 Perfume Way",
		City:       "Grasse",
		State:      "PACA",
		PostalCode: "06130",
		Country:    "FR",
	}
}

func loadStock(t *testing.T, conn *gorm.DB, id uuid.UUID) models.Inventory {
	t.Helper()
	var inv models.Inventory
	require.NoError(t, conn.First(&inv, "fragrance_id = ?", id).Error)
	return inv
}
