package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// ProfileDTO is the account read model returned to controllers.
type ProfileDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	Role        enums.UserRole `json:"role"`
	Preferences map[string]int `json:"preferences"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UpdateProfileInput carries the mutable account fields.
type UpdateProfileInput struct {
	DisplayName *string
}

// UpdatePreferencesInput replaces the user's accord preference vector.
type UpdatePreferencesInput struct {
	Preferences models.ScentProfile
}

// FavoriteDTO is one saved fragrance with its catalog summary.
type FavoriteDTO struct {
	FragranceID uuid.UUID       `json:"fragrance_id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	ImageURL    *string         `json:"image_url,omitempty"`
	BottlePrice decimal.Decimal `json:"bottle_price"`
	PerMlPrice  decimal.Decimal `json:"per_ml_price"`
	FavoritedAt time.Time       `json:"favorited_at"`
}

// ListFavoritesInput pages a user's saved fragrances.
type ListFavoritesInput struct {
	UserID     uuid.UUID
	Pagination pagination.Params
}

// FromModel converts a persisted user into the profile read model.
func FromModel(user *models.User) *ProfileDTO {
	dto := toProfileDTO(*user)
	return &dto
}

func toProfileDTO(user models.User) ProfileDTO {
	return ProfileDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Preferences: user.Preferences.ByAccord(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
