package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
)

// Repository persists inventory records. All mutating statements are guarded
// conditional updates so two concurrent deductions can never both succeed on
// stock that only covers one of them.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Get loads the inventory record for one fragrance.
func (r *Repository) Get(ctx context.Context, fragranceID uuid.UUID) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "fragrance_id = ?", fragranceID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a new inventory record.
func (r *Repository) Create(ctx context.Context, inv *models.Inventory) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// DeductBottles removes count sealed bottles if at least count are present.
// Returns true when the row was updated.
func (r *Repository) DeductBottles(ctx context.Context, fragranceID uuid.UUID, count int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET sealed_bottles = sealed_bottles - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE fragrance_id = ? AND sealed_bottles >= ?
	`, count, fragranceID, count)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeductDecantWithConversions opens conversions sealed bottles into the decant
// pool and removes ml milliliters, all in one guarded statement. The guard
// re-checks both pools so a stale read can only cause a refusal, never
// negative stock or a partial conversion.
func (r *Repository) DeductDecantWithConversions(ctx context.Context, fragranceID uuid.UUID, conversions, ml int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET sealed_bottles = sealed_bottles - ?,
			open_decant_ml = open_decant_ml + ? * bottle_size_ml - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE fragrance_id = ?
			AND sealed_bottles >= ?
			AND open_decant_ml + ? * bottle_size_ml >= ?
	`, conversions, conversions, ml, fragranceID, conversions, conversions, ml)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ConvertBottle opens exactly one sealed bottle into the decant pool.
func (r *Repository) ConvertBottle(ctx context.Context, fragranceID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET sealed_bottles = sealed_bottles - 1,
			open_decant_ml = open_decant_ml + bottle_size_ml,
			updated_at = CURRENT_TIMESTAMP
		WHERE fragrance_id = ? AND sealed_bottles > 0
	`, fragranceID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddBottles restocks the sealed pool.
func (r *Repository) AddBottles(ctx context.Context, fragranceID uuid.UUID, count int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET sealed_bottles = sealed_bottles + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE fragrance_id = ?
	`, count, fragranceID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddDecantMl restocks the open decant pool.
func (r *Repository) AddDecantMl(ctx context.Context, fragranceID uuid.UUID, ml int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET open_decant_ml = open_decant_ml + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE fragrance_id = ?
	`, ml, fragranceID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
