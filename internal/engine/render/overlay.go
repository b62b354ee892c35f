package render

import (
	"github.com/rendis/subregiones/internal/model"
)

// BuildOverlay converts a feature's rings from the service's lon/lat order
// to lat/lng render order and attaches its popup.
func BuildOverlay(idx int, f model.Feature, style model.PolygonStyle) *model.Overlay {
	rings := make([][]model.LatLng, len(f.Geometry.Rings))
	for i, ring := range f.Geometry.Rings {
		out := make([]model.LatLng, len(ring))
		for j, c := range ring {
			out[j] = model.LatLng{Lat: c.Lat(), Lng: c.Lon()}
		}
		rings[i] = out
	}
	return &model.Overlay{
		FeatureIndex: idx,
		Rings:        rings,
		Popup:        model.NewPopup(f.Attributes),
		Style:        style,
		Bound:        f.Polygon().Bound(),
	}
}

// Collector is a Canvas that only records what is drawn.
type Collector struct {
	drawn []*model.Overlay
}

func (c *Collector) AddOverlay(o *model.Overlay) {
	c.drawn = append(c.drawn, o)
}

func (c *Collector) RemoveOverlay(o *model.Overlay) {
	for i, d := range c.drawn {
		if d == o {
			c.drawn = append(c.drawn[:i], c.drawn[i+1:]...)
			return
		}
	}
}

// Drawn returns the overlays currently on the collector.
func (c *Collector) Drawn() []*model.Overlay { return c.drawn }
