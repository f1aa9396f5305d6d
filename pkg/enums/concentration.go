package enums

import "fmt"

// Concentration is the fragrance oil concentration tier.
type Concentration string

const (
	ConcentrationParfum        Concentration = "parfum"
	ConcentrationEauDeParfum   Concentration = "eau_de_parfum"
	ConcentrationEauDeToilette Concentration = "eau_de_toilette"
	ConcentrationEauDeCologne  Concentration = "eau_de_cologne"
	ConcentrationEauFraiche    Concentration = "eau_fraiche"
)

var validConcentrations = []Concentration{
	ConcentrationParfum,
	ConcentrationEauDeParfum,
	ConcentrationEauDeToilette,
	ConcentrationEauDeCologne,
	ConcentrationEauFraiche,
}

// String implements fmt.Stringer.
func (c Concentration) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Concentration.
func (c Concentration) IsValid() bool {
	for _, candidate := range validConcentrations {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConcentration converts raw input into a Concentration.
func ParseConcentration(value string) (Concentration, error) {
	for _, candidate := range validConcentrations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid concentration %q", value)
}
