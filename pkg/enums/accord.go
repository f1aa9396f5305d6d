package enums

import "fmt"

// Accord names one axis of the eight-dimensional scent profile.
type Accord string

const (
	AccordCitrus   Accord = "citrus"
	AccordFloral   Accord = "floral"
	AccordWoody    Accord = "woody"
	AccordSpicy    Accord = "spicy"
	AccordFresh    Accord = "fresh"
	AccordMusky    Accord = "musky"
	AccordSweet    Accord = "sweet"
	AccordOriental Accord = "oriental"
)

var validAccords = []Accord{
	AccordCitrus,
	AccordFloral,
	AccordWoody,
	AccordSpicy,
	AccordFresh,
	AccordMusky,
	AccordSweet,
	AccordOriental,
}

// Accords returns every profile axis in canonical order.
func Accords() []Accord {
	out := make([]Accord, len(validAccords))
	copy(out, validAccords)
	return out
}

// String implements fmt.Stringer.
func (a Accord) String() string {
	return string(a)
}

// IsValid reports whether the value is a known Accord.
func (a Accord) IsValid() bool {
	for _, candidate := range validAccords {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccord converts raw input into an Accord.
func ParseAccord(value string) (Accord, error) {
	for _, candidate := range validAccords {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid accord %q", value)
}
