package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/pkg/enums"
)

// Fragrance represents a catalog item sold as sealed bottles or decants.
type Fragrance struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Brand         string              `gorm:"column:brand;not null"`
	Description   *string             `gorm:"column:description"`
	ImageURL      *string             `gorm:"column:image_url"`
	BottlePrice   decimal.Decimal     `gorm:"column:bottle_price;type:numeric(10,2);not null"`
	PerMlPrice    decimal.Decimal     `gorm:"column:per_ml_price;type:numeric(10,4);not null"`
	Profile       ScentProfile        `gorm:"embedded;embeddedPrefix:scent_"`
	TopNotes      pq.StringArray      `gorm:"column:top_notes;type:text[];not null;default:ARRAY[]::text[]"`
	MiddleNotes   pq.StringArray      `gorm:"column:middle_notes;type:text[];not null;default:ARRAY[]::text[]"`
	BaseNotes     pq.StringArray      `gorm:"column:base_notes;type:text[];not null;default:ARRAY[]::text[]"`
	Gender        enums.Gender        `gorm:"column:gender;not null"`
	Concentration enums.Concentration `gorm:"column:concentration;not null"`
	ReleaseYear   *int                `gorm:"column:release_year"`
	// IsActive carries no gorm default so an explicit false survives Create.
	// The column default lives in the migration.
	IsActive      bool                `gorm:"column:is_active;not null"`
	Inventory     *Inventory          `gorm:"foreignKey:FragranceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AllNotes returns the union of the three note tiers, order preserved,
// duplicates removed.
func (f Fragrance) AllNotes() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(f.TopNotes)+len(f.MiddleNotes)+len(f.BaseNotes))
	for _, tier := range [][]string{f.TopNotes, f.MiddleNotes, f.BaseNotes} {
		for _, note := range tier {
			if _, ok := seen[note]; ok {
				continue
			}
			seen[note] = struct{}{}
			out = append(out, note)
		}
	}
	return out
}
