package inventory

import (
	"github.com/google/uuid"

	"github.com/thescentlab/scentlab-backend/pkg/enums"
)

// Availability is the read-only stock snapshot returned to callers.
type Availability struct {
	FragranceID      uuid.UUID `json:"fragrance_id"`
	Available        bool      `json:"available"`
	TotalAvailableMl int       `json:"total_available_ml"`
	SealedBottles    int       `json:"sealed_bottles"`
	BottleSizeMl     int       `json:"bottle_size_ml"`
	OpenDecantMl     int       `json:"open_decant_ml"`
}

// DeductInput describes one stock deduction request.
type DeductInput struct {
	FragranceID uuid.UUID
	Type        enums.PurchaseType
	// Quantity is a bottle count for bottle purchases and a total
	// milliliter amount for decant purchases.
	Quantity int
}

// DeductResult reports what a successful deduction did to the record.
type DeductResult struct {
	Conversions   int `json:"conversions"`
	SealedBottles int `json:"sealed_bottles"`
	OpenDecantMl  int `json:"open_decant_ml"`
}

// RestockInput describes an inventory addition.
type RestockInput struct {
	FragranceID uuid.UUID
	Type        enums.PurchaseType
	Quantity    int
}
