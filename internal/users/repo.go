package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// Repository exposes account and favorites persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user account.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateFields applies a targeted column update to one user.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdatePreferences overwrites the user's accord preference columns.
func (r *Repository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.ScentProfile) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"pref_citrus":   prefs.Citrus,
			"pref_floral":   prefs.Floral,
			"pref_woody":    prefs.Woody,
			"pref_spicy":    prefs.Spicy,
			"pref_fresh":    prefs.Fresh,
			"pref_musky":    prefs.Musky,
			"pref_sweet":    prefs.Sweet,
			"pref_oriental": prefs.Oriental,
		}).Error
}

// AddFavorite inserts a favorite entry and ignores duplicates.
func (r *Repository) AddFavorite(ctx context.Context, userID, fragranceID uuid.UUID) error {
	if userID == uuid.Nil || fragranceID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).
		Exec(`INSERT INTO favorite_items (user_id, fragrance_id) VALUES (?, ?) ON CONFLICT (user_id, fragrance_id) DO NOTHING`, userID, fragranceID).
		Error
}

// RemoveFavorite deletes the saved fragrance if it exists.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, fragranceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND fragrance_id = ?", userID, fragranceID).
		Delete(&models.FavoriteItem{}).
		Error
}

type favoriteRecord struct {
	FragranceID uuid.UUID       `gorm:"column:fragrance_id"`
	Name        string          `gorm:"column:name"`
	Brand       string          `gorm:"column:brand"`
	ImageURL    *string         `gorm:"column:image_url"`
	BottlePrice decimal.Decimal `gorm:"column:bottle_price"`
	PerMlPrice  decimal.Decimal `gorm:"column:per_ml_price"`
	FavoritedAt time.Time       `gorm:"column:favorited_at"`
}

// ListFavorites returns one buffered page of saved fragrances, newest first.
// Deactivated fragrances stay listed so the page reflects what the user saved.
func (r *Repository) ListFavorites(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]FavoriteDTO, error) {
	query := r.db.WithContext(ctx).
		Table("favorite_items fi").
		Select("fi.fragrance_id, f.name, f.brand, f.image_url, f.bottle_price, f.per_ml_price, fi.created_at AS favorited_at").
		Joins("JOIN fragrances f ON f.id = fi.fragrance_id").
		Where("fi.user_id = ?", userID)

	if cursor != nil {
		query = query.Where("(fi.created_at, fi.fragrance_id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var records []favoriteRecord
	err := query.
		Order("fi.created_at DESC, fi.fragrance_id DESC").
		Limit(limit).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	items := make([]FavoriteDTO, 0, len(records))
	for _, record := range records {
		items = append(items, FavoriteDTO{
			FragranceID: record.FragranceID,
			Name:        record.Name,
			Brand:       record.Brand,
			ImageURL:    record.ImageURL,
			BottlePrice: record.BottlePrice,
			PerMlPrice:  record.PerMlPrice,
			FavoritedAt: record.FavoritedAt,
		})
	}
	return items, nil
}
