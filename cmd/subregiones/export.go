package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/engine/export"
	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/engine/render"
	"github.com/rendis/subregiones/internal/model"
)

var (
	exportFormat     string
	exportDepartment string
	exportSubregion  string
	exportOutput     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the matching subregions to GeoJSON, CSV or SQLite",
	Example: "  subregiones export --departamento 05\n" +
		"  subregiones export --format csv --subregion \"Valle de Aburrá\" --output aburra.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		c := model.Criteria{Department: exportDepartment, Subregion: exportSubregion}

		store := features.NewStore(newLoader(cfg))
		if err := store.Load(cmd.Context(), nil); err != nil {
			return eris.Wrap(err, "loading subregions")
		}

		matched := render.Matching(store.Features(), c)

		out := exportOutput
		if out == "" {
			out = export.DefaultPath(".", c, format)
		}
		if err := export.WriteFile(out, format, matched); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("output", out),
			zap.String("format", string(format)),
			zap.Int("features", len(matched)))
		fmt.Fprintf(cmd.OutOrStdout(), "%d subregions written to %s\n", len(matched), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatGeoJSON), "output format: geojson, csv or sqlite")
	exportCmd.Flags().StringVar(&exportDepartment, "departamento", "", "department code filter (empty = all)")
	exportCmd.Flags().StringVar(&exportSubregion, "subregion", "", "subregion name filter (empty = all)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output path (default named after the filter)")
	rootCmd.AddCommand(exportCmd)
}
