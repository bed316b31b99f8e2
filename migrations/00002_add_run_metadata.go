package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00002, Down00002)
}

// Up00002 adds a column for the product metadata record written alongside a run
func Up00002(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE public.graph_runs ADD COLUMN metadata json;`)
	return err
}

// Down00002 undoes the effects of Up00002
func Down00002(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE public.graph_runs DROP COLUMN metadata;`)
	return err
}
