// Package usecase implements place search.
package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"vivimap/internal/feature/search/domain/entity"
)

// MinQueryLength is the shortest query forwarded to the geocoder.
const MinQueryLength = 3

// Geocoder resolves a normalized free-text query to places.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]entity.Place, error)
}

type searchUsecase struct {
	geocoder Geocoder
}

// NewSearchUsecase returns a usecase that normalizes queries before geocoding.
func NewSearchUsecase(geocoder Geocoder) *searchUsecase {
	return &searchUsecase{geocoder: geocoder}
}

// NormalizeQuery trims, collapses whitespace and lowercases q.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Search returns an empty list for queries shorter than MinQueryLength.
func (u *searchUsecase) Search(ctx context.Context, q string) ([]entity.Place, error) {
	q = NormalizeQuery(q)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []entity.Place{}, nil
	}
	places, err := u.geocoder.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []entity.Place{}
	}
	return places, nil
}
