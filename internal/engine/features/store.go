// Package features holds the subregion collection for one session and the
// filter options derived from it.
package features

import (
	"context"
	"errors"

	"github.com/rendis/subregiones/internal/model"
)

// ErrAlreadyLoaded is returned by a second Load on the same store.
var ErrAlreadyLoaded = errors.New("feature store already loaded")

// Loader fetches the full collection.
type Loader interface {
	Query(ctx context.Context) ([]model.Feature, error)
}

// Indicator is the loading indicator shown while the fetch is in flight.
type Indicator interface {
	SetLoading(visible bool)
}

// IndicatorFunc adapts a function to Indicator.
type IndicatorFunc func(visible bool)

func (f IndicatorFunc) SetLoading(visible bool) { f(visible) }

// Store is written once by Load and read-only afterwards.
type Store struct {
	loader      Loader
	loaded      bool
	features    []model.Feature
	departments []string
	subregions  []string
}

func NewStore(loader Loader) *Store {
	return &Store{loader: loader}
}

// Load fetches the collection. The indicator is shown before the fetch and
// hidden on every return path. On failure the store stays empty.
func (s *Store) Load(ctx context.Context, ind Indicator) error {
	if s.loaded {
		return ErrAlreadyLoaded
	}
	if ind != nil {
		ind.SetLoading(true)
		defer ind.SetLoading(false)
	}

	fs, err := s.loader.Query(ctx)
	if err != nil {
		return err
	}

	s.features = fs
	s.departments = Distinct(fs, func(f model.Feature) string { return f.Attributes.DepartmentCode.String() })
	s.subregions = Distinct(fs, func(f model.Feature) string { return f.Attributes.SubregionName.String() })
	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool { return s.loaded }

// Features returns the collection in upstream order. Callers must not modify it.
func (s *Store) Features() []model.Feature { return s.features }

// Departments returns the distinct department codes in first-seen order.
func (s *Store) Departments() []string { return s.departments }

// Subregions returns the distinct subregion names in first-seen order.
func (s *Store) Subregions() []string { return s.subregions }

// Len returns the number of loaded features.
func (s *Store) Len() int { return len(s.features) }
