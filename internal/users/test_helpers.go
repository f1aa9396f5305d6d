package users

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/internal/catalog"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

const usersDDL = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  display_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  pref_citrus INTEGER NOT NULL DEFAULT 0,
  pref_floral INTEGER NOT NULL DEFAULT 0,
  pref_woody INTEGER NOT NULL DEFAULT 0,
  pref_spicy INTEGER NOT NULL DEFAULT 0,
  pref_fresh INTEGER NOT NULL DEFAULT 0,
  pref_musky INTEGER NOT NULL DEFAULT 0,
  pref_sweet INTEGER NOT NULL DEFAULT 0,
  pref_oriental INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

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

const favoriteItemsDDL = `
CREATE TABLE IF NOT EXISTS favorite_items (
  user_id TEXT NOT NULL,
  fragrance_id TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (user_id, fragrance_id)
);`

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{usersDDL, fragrancesDDL, inventoriesDDL, favoriteItemsDDL} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := setupUsersTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(NewRepository(conn), catalog.NewRepository(conn), logg)
	require.NoError(t, err)
	return svc, conn
}

func mustSeedUser(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		DisplayName:  "Test User",
		Role:         enums.UserRoleCustomer,
		Preferences:  models.DefaultScentProfile(),
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user.ID
}

func mustSeedFragrance(t *testing.T, conn *gorm.DB, name string, active bool) uuid.UUID {
	t.Helper()

	fragrance := &models.Fragrance{
		ID:            uuid.New(),
		Name:          name,
		Brand:         "Test Brand",
		BottlePrice:   decimal.RequireFromString("95"),
		PerMlPrice:    decimal.RequireFromString("1.20"),
		Gender:        enums.GenderUnisex,
		Concentration: enums.ConcentrationEauDeParfum,
		IsActive:      active,
	}
	require.NoError(t, conn.Create(fragrance).Error)
	return fragrance.ID
}

func pageParams(limit int, cursor string) pagination.Params {
	return pagination.Params{Limit: limit, Cursor: cursor}
}
