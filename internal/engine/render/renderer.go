// Package render turns filter criteria into the set of polygons drawn on a
// map canvas.
package render

import (
	"github.com/rendis/subregiones/internal/model"
)

// Canvas is the map surface overlays are drawn on.
type Canvas interface {
	AddOverlay(o *model.Overlay)
	RemoveOverlay(o *model.Overlay)
}

// Source provides the loaded collection.
type Source interface {
	Features() []model.Feature
}

// Renderer owns the overlay set. It is not safe for concurrent use.
type Renderer struct {
	source   Source
	canvas   Canvas
	style    model.PolygonStyle
	overlays []*model.Overlay
	criteria model.Criteria
}

func NewRenderer(source Source, canvas Canvas) *Renderer {
	return &Renderer{
		source: source,
		canvas: canvas,
		style:  model.DefaultPolygonStyle,
	}
}

// ApplyFilter replaces every drawn overlay with overlays for the features
// matching c. Features without rings are skipped.
func (r *Renderer) ApplyFilter(c model.Criteria) []*model.Overlay {
	for _, o := range r.overlays {
		r.canvas.RemoveOverlay(o)
	}
	r.overlays = nil
	r.criteria = c

	for i, f := range r.source.Features() {
		if !c.Matches(f) || !f.HasRings() {
			continue
		}
		o := BuildOverlay(i, f, r.style)
		r.canvas.AddOverlay(o)
		r.overlays = append(r.overlays, o)
	}
	return r.overlays
}

// Overlays returns the current overlay set.
func (r *Renderer) Overlays() []*model.Overlay { return r.overlays }

// Criteria returns the last applied criteria.
func (r *Renderer) Criteria() model.Criteria { return r.criteria }

// Matching returns the features matching c, including those without rings.
func Matching(fs []model.Feature, c model.Criteria) []model.Feature {
	var out []model.Feature
	for _, f := range fs {
		if c.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}
