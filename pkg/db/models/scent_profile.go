package models

// ScentProfile is the eight-axis accord intensity vector, each axis 0-100.
// It is embedded in Fragrance (measured profile) and User (preferences).
type ScentProfile struct {
	Citrus   int `gorm:"column:citrus;not null;default:0"`
	Floral   int `gorm:"column:floral;not null;default:0"`
	Woody    int `gorm:"column:woody;not null;default:0"`
	Spicy    int `gorm:"column:spicy;not null;default:0"`
	Fresh    int `gorm:"column:fresh;not null;default:0"`
	Musky    int `gorm:"column:musky;not null;default:0"`
	Sweet    int `gorm:"column:sweet;not null;default:0"`
	Oriental int `gorm:"column:oriental;not null;default:0"`
}

// DefaultScentProfile returns the neutral midpoint preference vector.
func DefaultScentProfile() ScentProfile {
	return ScentProfile{
		Citrus:   50,
		Floral:   50,
		Woody:    50,
		Spicy:    50,
		Fresh:    50,
		Musky:    50,
		Sweet:    50,
		Oriental: 50,
	}
}

// ByAccord returns the profile as a map keyed by accord name.
func (p ScentProfile) ByAccord() map[string]int {
	return map[string]int{
		"citrus":   p.Citrus,
		"floral":   p.Floral,
		"woody":    p.Woody,
		"spicy":    p.Spicy,
		"fresh":    p.Fresh,
		"musky":    p.Musky,
		"sweet":    p.Sweet,
		"oriental": p.Oriental,
	}
}
