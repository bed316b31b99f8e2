package runs

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venicegeo/bf-snap/metadata"
)

var runColumnNames = []string{"id", "pid", "args", "graph", "stdout", "stderr", "exit_code", "error", "started", "duration_ms", "metadata"}

func mockRow(run Run, metadataJSON []byte) []driver.Value {
	return []driver.Value{run.ID, run.PID, "{/opt/snap/bin/gpt,-x,-c,2048M,/tmp/g.xml}", run.Graph, run.Stdout, run.Stderr,
		run.ExitCode, run.Error, run.Started, run.DurationMS, metadataJSON}
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_Insert(t *testing.T) {
	// Mock
	store, mock := newMockStore(t)
	run := mockRun("run-1", 0)
	run.Metadata = &metadata.Record{Title: "Sigma0"}
	mock.ExpectExec("INSERT INTO public.graph_runs").
		WithArgs("run-1", 4242, sqlmock.AnyArg(), run.Graph, run.Stdout, "", 0, "", run.Started, int64(1500), []byte(`{"title":"Sigma0"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Tested code
	err := store.Insert(context.Background(), run)

	// Asserts
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertWithoutMetadata(t *testing.T) {
	// Mock
	store, mock := newMockStore(t)
	run := mockRun("run-2", 0)
	run.Metadata = nil
	mock.ExpectExec("INSERT INTO public.graph_runs").
		WithArgs("run-2", 4242, sqlmock.AnyArg(), run.Graph, run.Stdout, "", 0, "", run.Started, int64(1500), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Tested code
	err := store.Insert(context.Background(), run)

	// Asserts
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO public.graph_runs").WillReturnError(errors.New("duplicate key"))

	err := store.Insert(context.Background(), mockRun("run-1", 0))

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "run-1")
}

func TestPostgresStore_Get(t *testing.T) {
	// Mock
	store, mock := newMockStore(t)
	run := mockRun("run-1", 0)
	mock.ExpectQuery("FROM public.graph_runs").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumnNames).AddRow(mockRow(run, []byte(`{"title":"Sigma0"}`))...))

	// Tested code
	got, err := store.Get(context.Background(), "run-1")

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, run.Args, got.Args)
	assert.Equal(t, run.Started, got.Started)
	assert.Equal(t, "Sigma0", got.Metadata.Title)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM public.graph_runs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(runColumnNames))

	_, err := store.Get(context.Background(), "missing")

	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStore_List(t *testing.T) {
	// Mock
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows(runColumnNames).
		AddRow(mockRow(mockRun("new", time.Hour), nil)...).
		AddRow(mockRow(mockRun("old", 0), nil)...)
	mock.ExpectQuery("ORDER BY started DESC").WithArgs(DefaultListLimit).WillReturnRows(rows)

	// Tested code
	runs, err := store.List(context.Background(), 0)

	// Asserts
	require.Nil(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Nil(t, runs[0].Metadata)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BadMetadataColumn(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM public.graph_runs").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumnNames).AddRow(mockRow(mockRun("run-1", 0), []byte("{not json"))...))

	_, err := store.Get(context.Background(), "run-1")

	assert.NotNil(t, err)
}
