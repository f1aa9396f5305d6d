package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// FragranceDTO is the catalog read model returned to controllers.
type FragranceDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Brand         string              `json:"brand"`
	Description   *string             `json:"description,omitempty"`
	ImageURL      *string             `json:"image_url,omitempty"`
	BottlePrice   decimal.Decimal     `json:"bottle_price"`
	PerMlPrice    decimal.Decimal     `json:"per_ml_price"`
	Profile       map[string]int      `json:"scent_profile"`
	TopNotes      []string            `json:"top_notes"`
	MiddleNotes   []string            `json:"middle_notes"`
	BaseNotes     []string            `json:"base_notes"`
	Gender        enums.Gender        `json:"gender"`
	Concentration enums.Concentration `json:"concentration"`
	ReleaseYear   *int                `json:"release_year,omitempty"`
	SealedBottles *int                `json:"sealed_bottles,omitempty"`
	BottleSizeMl  *int                `json:"bottle_size_ml,omitempty"`
	OpenDecantMl  *int                `json:"open_decant_ml,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// RecommendationDTO is one similarity match.
type RecommendationDTO struct {
	Fragrance  FragranceDTO `json:"fragrance"`
	Similarity float64      `json:"similarity"`
}

// CreateFragranceInput holds the validated payload to create a fragrance.
type CreateFragranceInput struct {
	Name          string
	Brand         string
	Description   *string
	ImageURL      *string
	BottlePrice   decimal.Decimal
	PerMlPrice    decimal.Decimal
	Profile       models.ScentProfile
	TopNotes      []string
	MiddleNotes   []string
	BaseNotes     []string
	Gender        enums.Gender
	Concentration enums.Concentration
	ReleaseYear   *int
	SealedBottles int
	BottleSizeMl  int
	OpenDecantMl  int
}

// UpdateFragranceInput holds optional mutation values. Inventory pools move
// through the ledger, and bottle size is fixed at creation, so neither
// appears here.
type UpdateFragranceInput struct {
	Name          *string
	Brand         *string
	Description   *string
	ImageURL      *string
	BottlePrice   *decimal.Decimal
	PerMlPrice    *decimal.Decimal
	Profile       *models.ScentProfile
	TopNotes      *[]string
	MiddleNotes   *[]string
	BaseNotes     *[]string
	Gender        *enums.Gender
	Concentration *enums.Concentration
	ReleaseYear   *int
}

// ListFilters describe the browse endpoint's filter knobs.
type ListFilters struct {
	Brand         string
	Gender        *enums.Gender
	Concentration *enums.Concentration
	Query         string
}

// ListInput captures pagination plus filters for catalog listing.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ProfileRange bounds one accord axis, inclusive on both ends.
type ProfileRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ProfileFilterInput maps accord names to bounds. Axes absent from the map
// are unconstrained; unknown accord names are ignored.
type ProfileFilterInput struct {
	Ranges map[string]ProfileRange
}

// RecommendInput is the note-similarity query.
type RecommendInput struct {
	Notes     []string
	Threshold float64
}

func toFragranceDTO(f models.Fragrance) FragranceDTO {
	dto := FragranceDTO{
		ID:            f.ID,
		Name:          f.Name,
		Brand:         f.Brand,
		Description:   f.Description,
		ImageURL:      f.ImageURL,
		BottlePrice:   f.BottlePrice,
		PerMlPrice:    f.PerMlPrice,
		Profile:       f.Profile.ByAccord(),
		TopNotes:      f.TopNotes,
		MiddleNotes:   f.MiddleNotes,
		BaseNotes:     f.BaseNotes,
		Gender:        f.Gender,
		Concentration: f.Concentration,
		ReleaseYear:   f.ReleaseYear,
		CreatedAt:     f.CreatedAt,
	}
	if f.Inventory != nil {
		dto.SealedBottles = &f.Inventory.SealedBottles
		dto.BottleSizeMl = &f.Inventory.BottleSizeMl
		dto.OpenDecantMl = &f.Inventory.OpenDecantMl
	}
	return dto
}

func toFragranceDTOs(items []models.Fragrance) []FragranceDTO {
	out := make([]FragranceDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toFragranceDTO(item))
	}
	return out
}
