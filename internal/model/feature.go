package model

import (
	"bytes"
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// Scalar is an attribute value kept in its textual form. Strings keep their
// content, numbers keep their literal digits and null becomes "".
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Scalar(n.String())
	return nil
}

func (s Scalar) String() string {
	return string(s)
}

// Attributes are the fields requested from the subregions layer.
type Attributes struct {
	SubregionCode  Scalar `json:"COD_SUBREGION"`
	SubregionName  Scalar `json:"NOM_SUBREGION"`
	DepartmentCode Scalar `json:"COD_DEPTO"`
}

// Coord is a [lon, lat] pair as returned by the service in EPSG:4326.
type Coord [2]float64

// UnmarshalJSON accepts [x, y] and ignores any z/m ordinates.
func (c *Coord) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) < 2 {
		return eris.Errorf("coordinate has %d ordinates, want at least 2", len(v))
	}
	c[0], c[1] = v[0], v[1]
	return nil
}

func (c Coord) Lon() float64 { return c[0] }
func (c Coord) Lat() float64 { return c[1] }

// Geometry is an Esri polygon: an ordered list of rings.
type Geometry struct {
	Rings [][]Coord `json:"rings"`
}

// Feature pairs the attributes of one subregion with its optional polygon.
type Feature struct {
	Attributes Attributes `json:"attributes"`
	Geometry   *Geometry  `json:"geometry,omitempty"`
}

// HasRings reports whether the feature can be drawn.
func (f Feature) HasRings() bool {
	return f.Geometry != nil && len(f.Geometry.Rings) > 0
}

// Polygon converts the rings to an orb polygon in lon/lat order.
func (f Feature) Polygon() orb.Polygon {
	if !f.HasRings() {
		return nil
	}
	poly := make(orb.Polygon, len(f.Geometry.Rings))
	for i, ring := range f.Geometry.Rings {
		r := make(orb.Ring, len(ring))
		for j, c := range ring {
			r[j] = orb.Point{c.Lon(), c.Lat()}
		}
		poly[i] = r
	}
	return poly
}

// VertexCount returns the number of coordinates across all rings.
func (f Feature) VertexCount() int {
	if f.Geometry == nil {
		return 0
	}
	n := 0
	for _, r := range f.Geometry.Rings {
		n += len(r)
	}
	return n
}
