package models

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteItem marks one fragrance saved by one user.
type FavoriteItem struct {
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	FragranceID uuid.UUID `gorm:"column:fragrance_id;type:uuid;primaryKey"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
