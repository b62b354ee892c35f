// Package geo answers point queries against the loaded subregions.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/rendis/subregiones/internal/model"
)

// Locate returns the indices of the features whose polygon contains the
// point. Features without rings never match. The bound check runs first so
// most features are rejected without walking their rings.
func Locate(features []model.Feature, lat, lng float64) []int {
	point := orb.Point{lng, lat} // orb.Point is [lng, lat]
	var hits []int
	for i, f := range features {
		if !f.HasRings() {
			continue
		}
		poly := f.Polygon()
		if !poly.Bound().Contains(point) {
			continue
		}
		if planar.PolygonContains(poly, point) {
			hits = append(hits, i)
		}
	}
	return hits
}
