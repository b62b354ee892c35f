// Package export writes filtered subregions to GeoJSON, CSV or SQLite.
package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rendis/subregiones/internal/model"
)

type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
	FormatSQLite  Format = "sqlite"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatGeoJSON, FormatCSV, FormatSQLite:
		return f, nil
	}
	return "", eris.Errorf("unsupported format: %s (geojson, csv or sqlite)", s)
}

// Ext returns the default file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatSQLite:
		return ".db"
	case FormatCSV:
		return ".csv"
	}
	return ".geojson"
}

// DefaultPath names the output after the criteria.
func DefaultPath(dir string, c model.Criteria, f Format) string {
	parts := []string{"subregiones"}
	if c.Department != "" {
		parts = append(parts, "depto-"+sanitize(c.Department))
	}
	if c.Subregion != "" {
		parts = append(parts, sanitize(c.Subregion))
	}
	return filepath.Join(dir, strings.Join(parts, "_")+f.Ext())
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?':
			return -1
		}
		return r
	}, s)
}

// WriteFile writes features to path in the given format.
func WriteFile(path string, f Format, features []model.Feature) error {
	if f == FormatSQLite {
		return WriteSQLite(path, features)
	}

	out, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "creating output")
	}
	defer out.Close()

	if err := Write(out, f, features); err != nil {
		return err
	}
	return out.Close()
}

// Write encodes features to w. SQLite needs a file and is rejected here.
func Write(w io.Writer, f Format, features []model.Feature) error {
	switch f {
	case FormatGeoJSON:
		return WriteGeoJSON(w, features)
	case FormatCSV:
		return WriteCSV(w, features)
	}
	return eris.Errorf("format %s cannot be streamed", f)
}
