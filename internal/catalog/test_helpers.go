package catalog

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

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

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(fragrancesDDL).Error)
	require.NoError(t, conn.Exec(inventoriesDDL).Error)
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := setupCatalogTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), db.NewClientFromGorm(conn), logg)
	require.NoError(t, err)
	return svc, conn
}

type fragranceSeed struct {
	Name    string
	Brand   string
	Notes   []string
	Profile models.ScentProfile
	Gender  enums.Gender
	Active  bool
}

func mustSeedFragrance(t *testing.T, conn *gorm.DB, seed fragranceSeed) *models.Fragrance {
	t.Helper()

	gender := seed.Gender
	if gender == "" {
		gender = enums.GenderUnisex
	}
	fragrance := &models.Fragrance{
		ID:            uuid.New(),
		Name:          seed.Name,
		Brand:         seed.Brand,
		BottlePrice:   decimal.NewFromInt(120),
		PerMlPrice:    decimal.RequireFromString("1.50"),
		Profile:       seed.Profile,
		TopNotes:      pq.StringArray(seed.Notes),
		Gender:        gender,
		Concentration: enums.ConcentrationEauDeParfum,
		IsActive:      seed.Active,
	}
	require.NoError(t, conn.Create(fragrance).Error)

	inv := &models.Inventory{
		FragranceID:   fragrance.ID,
		SealedBottles: 2,
		BottleSizeMl:  50,
		OpenDecantMl:  10,
	}
	require.NoError(t, conn.Create(inv).Error)
	fragrance.Inventory = inv
	return fragrance
}
