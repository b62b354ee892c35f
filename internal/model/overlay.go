package model

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/paulmach/orb"
)

// LatLng is a render-order vertex. It encodes as [lat, lng], the order
// Leaflet expects.
type LatLng struct {
	Lat float64
	Lng float64
}

func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

func (p *LatLng) UnmarshalJSON(data []byte) error {
	var v [2]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Lat, p.Lng = v[0], v[1]
	return nil
}

// Popup is the information attached to a drawn polygon.
type Popup struct {
	SubregionName  string `json:"subregion_name"`
	SubregionCode  string `json:"subregion_code"`
	DepartmentCode string `json:"department_code"`
}

func NewPopup(a Attributes) Popup {
	return Popup{
		SubregionName:  a.SubregionName.String(),
		SubregionCode:  a.SubregionCode.String(),
		DepartmentCode: a.DepartmentCode.String(),
	}
}

// Lines returns the popup as label/value text lines.
func (p Popup) Lines() []string {
	return []string{
		fmt.Sprintf("%-20s %s", "Subregión:", p.SubregionName),
		fmt.Sprintf("%-20s %s", "Código Subregión:", p.SubregionCode),
		fmt.Sprintf("%-20s %s", "Código Departamento:", p.DepartmentCode),
	}
}

// HTML renders the popup body for the web map. Values are escaped.
func (p Popup) HTML() string {
	return fmt.Sprintf("<b>Subregión:</b> %s<br><b>Código Subregión:</b> %s<br><b>Código Departamento:</b> %s",
		html.EscapeString(p.SubregionName),
		html.EscapeString(p.SubregionCode),
		html.EscapeString(p.DepartmentCode))
}

// PolygonStyle holds the path options used for every overlay.
type PolygonStyle struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
}

var DefaultPolygonStyle = PolygonStyle{
	Color:       "blue",
	FillColor:   "lightblue",
	FillOpacity: 0.5,
}

// Overlay is one polygon currently drawn on the map.
type Overlay struct {
	FeatureIndex int          `json:"feature_index"`
	Rings        [][]LatLng   `json:"rings"`
	Popup        Popup        `json:"popup"`
	Style        PolygonStyle `json:"style"`
	Bound        orb.Bound    `json:"-"`
}

// Vertices returns the number of vertices in the overlay.
func (o *Overlay) Vertices() int {
	n := 0
	for _, r := range o.Rings {
		n += len(r)
	}
	return n
}
