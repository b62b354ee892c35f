package export

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"

	"github.com/rendis/subregiones/internal/model"
)

// FeatureCollection converts features to GeoJSON in lon/lat order.
// Features without rings keep a null geometry.
func FeatureCollection(features []model.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		var gf *geojson.Feature
		if f.HasRings() {
			gf = geojson.NewFeature(f.Polygon())
		} else {
			gf = &geojson.Feature{Type: "Feature", Properties: geojson.Properties{}}
		}
		gf.Properties["COD_DEPTO"] = f.Attributes.DepartmentCode.String()
		gf.Properties["COD_SUBREGION"] = f.Attributes.SubregionCode.String()
		gf.Properties["NOM_SUBREGION"] = f.Attributes.SubregionName.String()
		fc.Append(gf)
	}
	return fc
}

func WriteGeoJSON(w io.Writer, features []model.Feature) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FeatureCollection(features)); err != nil {
		return eris.Wrap(err, "encoding geojson")
	}
	return nil
}
