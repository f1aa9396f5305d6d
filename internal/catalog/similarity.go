package catalog

import (
	"sort"
	"strings"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
)

// NormalizeNotes lowercases and trims each note, dropping empties and
// duplicates while preserving first-seen order.
func NormalizeNotes(notes []string) []string {
	seen := make(map[string]struct{}, len(notes))
	out := make([]string, 0, len(notes))
	for _, note := range notes {
		cleaned := strings.ToLower(strings.TrimSpace(note))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

func noteSet(notes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(notes))
	for _, note := range NormalizeNotes(notes) {
		set[note] = struct{}{}
	}
	return set
}

// Jaccard computes |A∩B| / |A∪B| over two note sets. Two empty sets yield 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for note := range a {
		if _, ok := b[note]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Recommendation pairs a fragrance with its similarity to the query notes.
type Recommendation struct {
	Fragrance  models.Fragrance
	Similarity float64
}

// rankBySimilarity scores each fragrance's full note set against the input
// set and returns those at or above threshold, best first. Ties break on id
// so results are stable across runs.
func rankBySimilarity(input map[string]struct{}, fragrances []models.Fragrance, threshold float64) []Recommendation {
	matches := make([]Recommendation, 0, len(fragrances))
	for _, fragrance := range fragrances {
		similarity := Jaccard(input, noteSet(fragrance.AllNotes()))
		if similarity >= threshold {
			matches = append(matches, Recommendation{Fragrance: fragrance, Similarity: similarity})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Fragrance.ID.String() < matches[j].Fragrance.ID.String()
	})
	return matches
}
