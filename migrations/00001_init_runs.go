package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00001, Down00001)
}

//Up00001 creates the table holding the history of gpt invocations
func Up00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS public.graph_runs (
		id          varchar(36) PRIMARY KEY,
		pid         integer NOT NULL DEFAULT 0,
		args        text[] NOT NULL DEFAULT '{}',
		graph       text NOT NULL,
		stdout      text NOT NULL DEFAULT '',
		stderr      text NOT NULL DEFAULT '',
		exit_code   integer NOT NULL DEFAULT 0,
		error       text NOT NULL DEFAULT '',
		started     timestamp with time zone NOT NULL,
		duration_ms bigint NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS graph_runs_started_idx ON public.graph_runs (started DESC);
	`)
	return err
}

//Down00001 drops the run history
func Down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS public.graph_runs;`)
	return err
}
