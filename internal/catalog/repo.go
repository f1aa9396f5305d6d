package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// Repository persists fragrances. Catalog reads only ever surface active
// rows; soft-deleted fragrances stay queryable for order history joins.
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

// Create inserts the fragrance row.
func (r *Repository) Create(ctx context.Context, fragrance *models.Fragrance) error {
	return r.db.WithContext(ctx).Create(fragrance).Error
}

// Save persists all fields of an already-loaded fragrance.
func (r *Repository) Save(ctx context.Context, fragrance *models.Fragrance) error {
	return r.db.WithContext(ctx).Save(fragrance).Error
}

// FindActiveByID loads an active fragrance with its inventory.
func (r *Repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Fragrance, error) {
	var fragrance models.Fragrance
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		First(&fragrance, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &fragrance, nil
}

// FindActiveByIDTx resolves an active fragrance through an already-open
// transaction. Checkout uses this so price lookups share the transaction
// that holds the inventory locks.
func (r *Repository) FindActiveByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Fragrance, error) {
	return r.WithTx(tx).FindActiveByID(ctx, id)
}

// FindByID loads a fragrance regardless of active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Fragrance, error) {
	var fragrance models.Fragrance
	if err := r.db.WithContext(ctx).Preload("Inventory").First(&fragrance, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fragrance, nil
}

// Deactivate soft-deletes the fragrance. Returns true if a row changed.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Fragrance{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListActive returns one buffered page of active fragrances, newest first.
func (r *Repository) ListActive(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Fragrance, error) {
	query := r.activeQuery(ctx).Preload("Inventory")

	if filters.Brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(filters.Brand))
	}
	if filters.Gender != nil {
		query = query.Where("gender = ?", *filters.Gender)
	}
	if filters.Concentration != nil {
		query = query.Where("concentration = ?", *filters.Concentration)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var fragrances []models.Fragrance
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&fragrances).Error
	if err != nil {
		return nil, err
	}
	return fragrances, nil
}

// ListAllActive loads every active fragrance. Used by the in-memory
// similarity ranking, which needs the whole catalog's note sets.
func (r *Repository) ListAllActive(ctx context.Context) ([]models.Fragrance, error) {
	var fragrances []models.Fragrance
	if err := r.activeQuery(ctx).Preload("Inventory").Find(&fragrances).Error; err != nil {
		return nil, err
	}
	return fragrances, nil
}

// FilterByProfile returns active fragrances whose profile falls inside every
// supplied accord range. Ranges for unknown accords must be dropped by the
// caller before reaching here.
func (r *Repository) FilterByProfile(ctx context.Context, ranges map[enums.Accord]ProfileRange) ([]models.Fragrance, error) {
	query := r.activeQuery(ctx).Preload("Inventory")
	for _, accord := range enums.Accords() {
		bounds, ok := ranges[accord]
		if !ok {
			continue
		}
		column := "scent_" + accord.String()
		query = query.Where(column+" >= ? AND "+column+" <= ?", bounds.Min, bounds.Max)
	}

	var fragrances []models.Fragrance
	if err := query.Order("created_at DESC, id DESC").Find(&fragrances).Error; err != nil {
		return nil, err
	}
	return fragrances, nil
}

// Brands lists the distinct brands with at least one active fragrance.
func (r *Repository) Brands(ctx context.Context) ([]string, error) {
	var brands []string
	err := r.db.WithContext(ctx).
		Model(&models.Fragrance{}).
		Where("is_active = ?", true).
		Distinct("brand").
		Order("brand").
		Pluck("brand", &brands).Error
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// NoteTiers loads just the note columns of every active fragrance so the
// service can aggregate the distinct note vocabulary.
func (r *Repository) NoteTiers(ctx context.Context) ([]models.Fragrance, error) {
	var fragrances []models.Fragrance
	err := r.db.WithContext(ctx).
		Select("id", "top_notes", "middle_notes", "base_notes").
		Where("is_active = ?", true).
		Find(&fragrances).Error
	if err != nil {
		return nil, err
	}
	return fragrances, nil
}

func (r *Repository) activeQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_active = ?", true)
}
