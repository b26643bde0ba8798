package search

import (
	"encoding/json"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDoc(t *testing.T) {
	desc := "<p>A <b>classic</b></p>"
	doc := toDoc(&entity.Title{
		ID:          3,
		Name:        "Solaris",
		Year:        1972,
		Description: &desc,
		Category:    &entity.Category{Name: "Films", Slug: "films"},
		Genres: []entity.Genre{
			{Name: "Drama", Slug: "drama"},
			{Name: "Sci-Fi", Slug: "sci-fi"},
		},
	})

	assert.Equal(t, uint(3), doc.ID)
	assert.Equal(t, "A classic", doc.Description)
	assert.Equal(t, "films", doc.CategorySlug)
	assert.Equal(t, []string{"drama", "sci-fi"}, doc.GenreSlugs)
}

func TestToDoc_NoCategoryOrGenres(t *testing.T) {
	doc := toDoc(&entity.Title{ID: 1, Name: "Untitled", Year: 2000})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"genres":[]`)
	assert.Empty(t, doc.Category)
}

func TestDecodeHitIDs(t *testing.T) {
	hits := []map[string]json.RawMessage{
		{"id": json.RawMessage(`7`)},
		{"id": json.RawMessage(`2`)},
	}

	ids, err := decodeHitIDs(hits)
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 2}, ids)

	ids, err = decodeHitIDs([]any{map[string]any{"id": float64(5)}})
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, ids)
}

func TestNewMeiliSearchService_Disabled(t *testing.T) {
	assert.Nil(t, NewMeiliSearchService("", ""))
}
