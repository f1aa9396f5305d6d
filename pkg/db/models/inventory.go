package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory tracks dual stock per fragrance: sealed retail bottles and an
// open pool of decant milliliters. BottleSizeMl is fixed at creation.
type Inventory struct {
	FragranceID   uuid.UUID `gorm:"column:fragrance_id;type:uuid;primaryKey"`
	SealedBottles int       `gorm:"column:sealed_bottles;not null;default:0"`
	BottleSizeMl  int       `gorm:"column:bottle_size_ml;not null"`
	OpenDecantMl  int       `gorm:"column:open_decant_ml;not null;default:0"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalAvailableMl is the total sellable volume across both pools.
func (i Inventory) TotalAvailableMl() int {
	return i.OpenDecantMl + i.SealedBottles*i.BottleSizeMl
}
