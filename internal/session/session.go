// Package session wires the feature store and the renderer for one viewer:
// load first, then wire the UI and apply filters.
package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/engine/arcgis"
	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/engine/render"
	"github.com/rendis/subregiones/internal/model"
)

type Session struct {
	store     *features.Store
	renderer  *render.Renderer
	indicator features.Indicator
	logger    *zap.Logger
}

func New(loader features.Loader, indicator features.Indicator, canvas render.Canvas, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := features.NewStore(loader)
	return &Session{
		store:     store,
		renderer:  render.NewRenderer(store, canvas),
		indicator: indicator,
		logger:    logger,
	}
}

// Load fetches the collection. Failures are logged and swallowed; the
// session then stays empty. It reports whether data is available.
func (s *Session) Load(ctx context.Context) bool {
	err := s.store.Load(ctx, s.indicator)
	switch {
	case err == nil:
		s.logger.Info("subregions loaded",
			zap.Int("features", s.store.Len()),
			zap.Int("departments", len(s.store.Departments())),
			zap.Int("subregions", len(s.store.Subregions())))
		return true
	case errors.Is(err, features.ErrAlreadyLoaded):
		return true
	}

	fields := []zap.Field{zap.Error(err)}
	var lf *arcgis.LoadFailure
	if errors.As(err, &lf) {
		fields = append(fields, zap.String("op", lf.Op))
	}
	s.logger.Error("error loading data", fields...)
	return false
}

// Options holds the two option lists offered to the user.
type Options struct {
	Departments []string `json:"departamentos"`
	Subregions  []string `json:"subregiones"`
}

func (s *Session) Options() Options {
	return Options{
		Departments: s.store.Departments(),
		Subregions:  s.store.Subregions(),
	}
}

// Apply runs the filter/render cycle.
func (s *Session) Apply(c model.Criteria) []*model.Overlay {
	overlays := s.renderer.ApplyFilter(c)
	s.logger.Debug("filter applied",
		zap.String("departamento", c.Department),
		zap.String("subregion", c.Subregion),
		zap.Int("overlays", len(overlays)))
	return overlays
}

func (s *Session) Overlays() []*model.Overlay { return s.renderer.Overlays() }

func (s *Session) Store() *features.Store { return s.store }
