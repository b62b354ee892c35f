package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/rendis/subregiones/internal/model"
)

var csvHeader = []string{"cod_depto", "cod_subregion", "nom_subregion", "rings", "vertices"}

func WriteCSV(w io.Writer, features []model.Feature) error {
	cw := csv.NewWriter(w)
	cw.Write(csvHeader)

	for _, f := range features {
		rings := 0
		if f.Geometry != nil {
			rings = len(f.Geometry.Rings)
		}
		cw.Write([]string{
			f.Attributes.DepartmentCode.String(),
			f.Attributes.SubregionCode.String(),
			f.Attributes.SubregionName.String(),
			strconv.Itoa(rings),
			strconv.Itoa(f.VertexCount()),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "writing csv")
	}
	return nil
}
