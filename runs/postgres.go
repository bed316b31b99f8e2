package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/venicegeo/bf-snap/metadata"
)

const runColumns = `id, pid, args, graph, stdout, stderr, exit_code, error, started, duration_ms, metadata`

// PostgresStore keeps runs in the graph_runs table created by the migrations
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgresStore creates a store on an open database connection
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Insert implements Store
func (s *PostgresStore) Insert(ctx context.Context, run Run) error {
	// a nil []byte would reach pq as '' rather than NULL
	var metadataJSON interface{}
	if run.Metadata != nil {
		data, err := json.Marshal(run.Metadata)
		if err != nil {
			return err
		}
		metadataJSON = data
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO public.graph_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.PID, pq.Array(run.Args), run.Graph, run.Stdout, run.Stderr,
		run.ExitCode, run.Error, run.Started, run.DurationMS, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM public.graph_runs
		WHERE id=$1`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List implements Store
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM public.graph_runs
		ORDER BY started DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var metadataJSON []byte
	err := row.Scan(&run.ID, &run.PID, pq.Array(&run.Args), &run.Graph, &run.Stdout, &run.Stderr,
		&run.ExitCode, &run.Error, &run.Started, &run.DurationMS, &metadataJSON)
	if err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		run.Metadata = &metadata.Record{}
		if err = json.Unmarshal(metadataJSON, run.Metadata); err != nil {
			return nil, fmt.Errorf("run %s: bad metadata column: %w", run.ID, err)
		}
	}
	if run.Args == nil {
		run.Args = []string{}
	}
	return &run, nil
}
