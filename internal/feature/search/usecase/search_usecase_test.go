package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vivimap/internal/feature/search/domain/entity"
)

type stubGeocoder struct {
	queries []string
	places  []entity.Place
	err     error
}

func (g *stubGeocoder) Search(_ context.Context, q string) ([]entity.Place, error) {
	g.queries = append(g.queries, q)
	return g.places, g.err
}

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"  Tokyo  Tower ": "tokyo tower",
		"PARIS":           "paris",
		"\tnew\nyork":     "new york",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeQuery(in), "input %q", in)
	}
}

func TestSearchUsecase_Search(t *testing.T) {
	t.Run("short queries skip the geocoder", func(t *testing.T) {
		g := &stubGeocoder{}
		uc := NewSearchUsecase(g)

		for _, q := range []string{"", "ab", "  a b  ", "東京"} {
			got, err := uc.Search(context.Background(), q)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		}
		assert.Empty(t, g.queries)
	})

	t.Run("forwards the normalized query", func(t *testing.T) {
		g := &stubGeocoder{places: []entity.Place{{Name: "Tokyo Tower", Zoom: 17}}}
		uc := NewSearchUsecase(g)

		got, err := uc.Search(context.Background(), "  Tokyo   TOWER")
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, []string{"tokyo tower"}, g.queries)
	})

	t.Run("nil result becomes empty list", func(t *testing.T) {
		uc := NewSearchUsecase(&stubGeocoder{})

		got, err := uc.Search(context.Background(), "nowhere")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("geocoder error propagates", func(t *testing.T) {
		cause := errors.New("upstream 503")
		uc := NewSearchUsecase(&stubGeocoder{err: cause})

		_, err := uc.Search(context.Background(), "paris")
		assert.ErrorIs(t, err, cause)
	})
}
