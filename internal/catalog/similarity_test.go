package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
)

func TestNormalizeNotes(t *testing.T) {
	t.Parallel()

	got := NormalizeNotes([]string{" Vanilla ", "OUD", "vanilla", "", "  ", "Amber"})
	assert.Equal(t, []string{"vanilla", "oud", "amber"}, got)
}

func TestJaccardProperties(t *testing.T) {
	t.Parallel()

	a := noteSet([]string{"vanilla", "oud", "amber"})
	b := noteSet([]string{"vanilla", "citrus"})

	assert.Equal(t, Jaccard(a, b), Jaccard(b, a), "similarity must be symmetric")

	sim := Jaccard(a, b)
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)

	assert.Equal(t, 1.0, Jaccard(a, noteSet([]string{"amber", "vanilla", "oud"})),
		"identical sets score 1")
	assert.Equal(t, 0.0, Jaccard(a, noteSet([]string{"citrus", "fresh"})),
		"disjoint sets score 0")
	assert.Equal(t, 0.0, Jaccard(noteSet(nil), noteSet(nil)),
		"two empty sets score 0")
}

func TestRankBySimilarity(t *testing.T) {
	t.Parallel()

	oriental := models.Fragrance{
		ID:       uuid.New(),
		TopNotes: pq.StringArray{"vanilla", "oud", "amber"},
	}
	citrus := models.Fragrance{
		ID:       uuid.New(),
		TopNotes: pq.StringArray{"citrus", "fresh"},
	}
	noNotes := models.Fragrance{ID: uuid.New()}

	input := noteSet([]string{"vanilla", "oud"})
	matches := rankBySimilarity(input, []models.Fragrance{citrus, oriental, noNotes}, 0.15)

	if assert.Len(t, matches, 1) {
		assert.Equal(t, oriental.ID, matches[0].Fragrance.ID)
		assert.InDelta(t, 2.0/3.0, matches[0].Similarity, 1e-9)
	}
}

func TestRankBySimilarityDeterministicTieBreak(t *testing.T) {
	t.Parallel()

	first := models.Fragrance{ID: uuid.New(), TopNotes: pq.StringArray{"rose"}}
	second := models.Fragrance{ID: uuid.New(), TopNotes: pq.StringArray{"rose"}}

	input := noteSet([]string{"rose"})
	forward := rankBySimilarity(input, []models.Fragrance{first, second}, 0)
	reversed := rankBySimilarity(input, []models.Fragrance{second, first}, 0)

	assert.Equal(t, forward[0].Fragrance.ID, reversed[0].Fragrance.ID,
		"tied scores must order the same regardless of input order")
	assert.Equal(t, forward[1].Fragrance.ID, reversed[1].Fragrance.ID)
}
