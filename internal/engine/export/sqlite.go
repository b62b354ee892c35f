package export

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rendis/subregiones/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS subregions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cod_depto TEXT NOT NULL,
	cod_subregion TEXT NOT NULL,
	nom_subregion TEXT NOT NULL,
	rings INTEGER NOT NULL,
	geojson TEXT,
	exported_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_subregions_depto ON subregions(cod_depto);
CREATE INDEX IF NOT EXISTS idx_subregions_nombre ON subregions(nom_subregion);
`

// WriteSQLite writes features into the subregions table of a fresh database
// at path in a single transaction. An existing database at path is replaced.
func WriteSQLite(path string, features []model.Feature) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return eris.Wrap(err, "removing previous db")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return eris.Wrap(err, "opening db")
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return eris.Wrap(err, "setting journal mode")
	}
	if _, err := db.Exec(schema); err != nil {
		return eris.Wrap(err, "creating schema")
	}

	tx, err := db.Begin()
	if err != nil {
		return eris.Wrap(err, "beginning tx")
	}

	stmt, err := tx.Prepare(`
		INSERT INTO subregions (cod_depto, cod_subregion, nom_subregion, rings, geojson)
		VALUES (?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return eris.Wrap(err, "preparing stmt")
	}
	defer stmt.Close()

	for _, f := range features {
		var geom sql.NullString
		if f.HasRings() {
			data, err := json.Marshal(geojson.NewGeometry(f.Polygon()))
			if err != nil {
				tx.Rollback()
				return eris.Wrap(err, "encoding geometry")
			}
			geom = sql.NullString{String: string(data), Valid: true}
		}
		rings := 0
		if f.Geometry != nil {
			rings = len(f.Geometry.Rings)
		}
		if _, err := stmt.Exec(
			f.Attributes.DepartmentCode.String(),
			f.Attributes.SubregionCode.String(),
			f.Attributes.SubregionName.String(),
			rings,
			geom,
		); err != nil {
			tx.Rollback()
			return eris.Wrap(err, "inserting row")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "committing tx")
	}
	return nil
}
