package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/infrastructure/converter"
	"github.com/TFMV/encore/pkg/infrastructure/metrics"
	"github.com/TFMV/encore/pkg/infrastructure/pool"
	"github.com/TFMV/encore/pkg/models"
	"github.com/TFMV/encore/pkg/repositories"
)

// fakePool hands the gateway sessions from a sqlmock database.
type fakePool struct {
	db *sql.DB
}

func (p *fakePool) Get(ctx context.Context) (*sql.DB, error)       { return p.db, nil }
func (p *fakePool) Session(ctx context.Context) (*sql.Conn, error) { return p.db.Conn(ctx) }
func (p *fakePool) Stats() pool.PoolStats                          { return pool.PoolStats{} }
func (p *fakePool) HealthCheck(ctx context.Context) error          { return p.db.PingContext(ctx) }
func (p *fakePool) Close() error                                   { return p.db.Close() }
func (p *fakePool) SetMetricsCollector(pool.MetricsCollector)      {}

func newTestGateway(db *sql.DB) repositories.QueryGateway {
	return NewQueryGateway(&fakePool{db: db}, converter.New(zerolog.Nop()), metrics.NewNoOpCollector(), zerolog.Nop())
}

func expectTraceSession(mock sqlmock.Sqlmock) {
	mock.ExpectExec(enableTraceStmt).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(traceMemLimitStmt(defaultTraceMaxMemSize)).WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectTraceRow(mock sqlmock.Sqlmock, query, trace string) {
	mock.ExpectQuery(selectTraceStmt).WillReturnRows(sqlmock.NewRows([]string{
		"QUERY", "TRACE", "MISSING_BYTES_BEYOND_MAX_MEM_SIZE", "INSUFFICIENT_PRIVILEGES",
	}).AddRow(query, []byte(trace), 0, false))
}

func expectTraceDisable(mock sqlmock.Sqlmock) {
	mock.ExpectExec(disableTraceStmt).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestQueryGateway_Run(t *testing.T) {
	t.Run("executes on the pinned session", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, name FROM artist WHERE id = ?").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, []byte("Nova Reyes")))

		g := newTestGateway(db)
		result, err := g.Run(context.Background(), "SELECT id, name FROM artist WHERE id = ?", 7)
		require.NoError(t, err)

		assert.Equal(t, []string{"id", "name"}, result.Columns)
		require.Equal(t, 1, result.RowCount())
		assert.Equal(t, "Nova Reyes", result.Rows[0]["name"])
		assert.Nil(t, result.Trace)
		assert.GreaterOrEqual(t, result.Elapsed, time.Duration(0))

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reuses the session across calls", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectQuery("SELECT 2").WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(2))

		g := newTestGateway(db)
		_, err = g.Run(context.Background(), "SELECT 1")
		require.NoError(t, err)
		_, err = g.Run(context.Background(), "SELECT 2")
		require.NoError(t, err)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reconnects once when the session ping fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(
			sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
			sqlmock.MonitorPingsOption(true),
		)
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectPing().WillReturnError(fmt.Errorf("server has gone away"))
		mock.ExpectQuery("SELECT 2").WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(2))

		g := newTestGateway(db)
		_, err = g.Run(context.Background(), "SELECT 1")
		require.NoError(t, err)

		result, err := g.Run(context.Background(), "SELECT 2")
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("classifies execution failures", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT broken").WillReturnError(fmt.Errorf("Unknown column 'broken'"))

		g := newTestGateway(db)
		result, err := g.Run(context.Background(), "SELECT broken")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, pkgerrors.CodeQueryFailed, pkgerrors.GetCode(err))

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQueryGateway_RunTraced(t *testing.T) {
	t.Run("wraps the statement in a trace session", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		expectTraceSession(mock)
		mock.ExpectQuery("SELECT name FROM artist").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("Nova Reyes")))
		expectTraceRow(mock, "SELECT name FROM artist", `{"steps": []}`)
		expectTraceDisable(mock)

		g := newTestGateway(db)
		result, err := g.RunTraced(context.Background(), "SELECT name FROM artist")
		require.NoError(t, err)

		require.NotNil(t, result.Trace)
		assert.Equal(t, "SELECT name FROM artist", result.Trace.Query)
		assert.JSONEq(t, `{"steps": []}`, string(result.Trace.Trace))
		assert.False(t, result.Trace.Empty())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("disables the trace when the statement fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		expectTraceSession(mock)
		mock.ExpectQuery("SELECT missing FROM artist").
			WillReturnError(fmt.Errorf("Unknown column 'missing'"))
		expectTraceDisable(mock)

		g := newTestGateway(db)
		result, err := g.RunTraced(context.Background(), "SELECT missing FROM artist")
		require.Error(t, err)
		assert.Nil(t, result)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("disables the trace when the memory limit cannot be raised", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(enableTraceStmt).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(traceMemLimitStmt(defaultTraceMaxMemSize)).WillReturnError(fmt.Errorf("access denied"))
		expectTraceDisable(mock)

		g := newTestGateway(db)
		_, err = g.RunTraced(context.Background(), "SELECT 1")
		require.Error(t, err)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("honors a configured trace memory limit", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(enableTraceStmt).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(traceMemLimitStmt(4194304)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		expectTraceRow(mock, "SELECT 1", `{"steps": []}`)
		expectTraceDisable(mock)

		g := NewQueryGateway(&fakePool{db: db}, converter.New(zerolog.Nop()),
			metrics.NewNoOpCollector(), zerolog.Nop(), WithTraceMaxMemSize(4194304))
		result, err := g.RunTraced(context.Background(), "SELECT 1")
		require.NoError(t, err)
		require.NotNil(t, result.Trace)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns the result when the trace row is missing", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		expectTraceSession(mock)
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectQuery(selectTraceStmt).WillReturnError(sql.ErrNoRows)
		expectTraceDisable(mock)

		g := newTestGateway(db)
		result, err := g.RunTraced(context.Background(), "SELECT 1")
		require.NoError(t, err)
		assert.Nil(t, result.Trace)
		assert.Equal(t, 1, result.RowCount())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps the result when the trace fetch fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		expectTraceSession(mock)
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectQuery(selectTraceStmt).WillReturnError(fmt.Errorf("trace table unavailable"))
		expectTraceDisable(mock)

		g := newTestGateway(db)
		result, err := g.RunTraced(context.Background(), "SELECT 1")
		require.NoError(t, err)
		assert.Nil(t, result.Trace)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQueryGateway_RunWithProfile(t *testing.T) {
	hashProfile := &models.OptimizerProfile{
		Name: "Hash Join",
		Settings: map[string]string{
			"optimizer_switch": "batched_key_access=on,block_nested_loop=off,mrr_cost_based=on",
		},
	}

	t.Run("applies and restores optimizer settings", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT @@optimizer_switch").
			WillReturnRows(sqlmock.NewRows([]string{"@@optimizer_switch"}).AddRow("index_merge=on,mrr=on"))
		mock.ExpectExec("SET SESSION optimizer_switch='batched_key_access=on,block_nested_loop=off,mrr_cost_based=on'").
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectTraceSession(mock)
		mock.ExpectQuery("SELECT name FROM artist").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("Nova Reyes")))
		expectTraceRow(mock, "SELECT name FROM artist", `{"steps": []}`)
		expectTraceDisable(mock)
		mock.ExpectExec("SET SESSION optimizer_switch='index_merge=on,mrr=on'").
			WillReturnResult(sqlmock.NewResult(0, 0))

		g := newTestGateway(db)
		result, err := g.RunWithProfile(context.Background(), hashProfile, "SELECT name FROM artist")
		require.NoError(t, err)
		require.NotNil(t, result.Trace)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restores settings when the statement fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT @@optimizer_switch").
			WillReturnRows(sqlmock.NewRows([]string{"@@optimizer_switch"}).AddRow("index_merge=on,mrr=on"))
		mock.ExpectExec("SET SESSION optimizer_switch='batched_key_access=on,block_nested_loop=off,mrr_cost_based=on'").
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectTraceSession(mock)
		mock.ExpectQuery("SELECT name FROM artist").
			WillReturnError(fmt.Errorf("lock wait timeout exceeded"))
		expectTraceDisable(mock)
		mock.ExpectExec("SET SESSION optimizer_switch='index_merge=on,mrr=on'").
			WillReturnResult(sqlmock.NewResult(0, 0))

		g := newTestGateway(db)
		result, err := g.RunWithProfile(context.Background(), hashProfile, "SELECT name FROM artist")
		require.Error(t, err)
		assert.Nil(t, result)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restores saved settings when a later apply fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		profile := &models.OptimizerProfile{
			Name: "Merge Join",
			Settings: map[string]string{
				"join_buffer_size": "4194304",
				"optimizer_switch": "mrr=on,mrr_cost_based=on",
			},
		}

		mock.ExpectQuery("SELECT @@join_buffer_size").
			WillReturnRows(sqlmock.NewRows([]string{"@@join_buffer_size"}).AddRow("262144"))
		mock.ExpectQuery("SELECT @@optimizer_switch").
			WillReturnRows(sqlmock.NewRows([]string{"@@optimizer_switch"}).AddRow("index_merge=on"))
		mock.ExpectExec("SET SESSION join_buffer_size='4194304'").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SET SESSION optimizer_switch='mrr=on,mrr_cost_based=on'").
			WillReturnError(fmt.Errorf("unknown optimizer switch"))
		mock.ExpectExec("SET SESSION join_buffer_size='262144'").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SET SESSION optimizer_switch='index_merge=on'").
			WillReturnResult(sqlmock.NewResult(0, 0))

		g := newTestGateway(db)
		_, err = g.RunWithProfile(context.Background(), profile, "SELECT name FROM artist")
		require.Error(t, err)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to a plain traced run without a profile", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		expectTraceSession(mock)
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		expectTraceRow(mock, "SELECT 1", `{"steps": []}`)
		expectTraceDisable(mock)

		g := newTestGateway(db)
		result, err := g.RunWithProfile(context.Background(), nil, "SELECT 1")
		require.NoError(t, err)
		require.NotNil(t, result.Trace)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid session variable names", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		profile := &models.OptimizerProfile{
			Name:     "Bogus",
			Settings: map[string]string{"optimizer_switch; DROP TABLE artist": "on"},
		}

		g := newTestGateway(db)
		_, err = g.RunWithProfile(context.Background(), profile, "SELECT 1")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidParameter(err))

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQueryGateway_Close(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	g := newTestGateway(db)
	_, err = g.Run(context.Background(), "SELECT 1")
	require.NoError(t, err)

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteSessionValue(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "plain value", value: "on", expected: "'on'"},
		{name: "switch list", value: "mrr=on,mrr_cost_based=on", expected: "'mrr=on,mrr_cost_based=on'"},
		{name: "embedded quote", value: "o'clock", expected: "'o''clock'"},
		{name: "empty value", value: "", expected: "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteSessionValue(tt.value))
		})
	}
}

func TestSettingNames(t *testing.T) {
	names := settingNames(map[string]string{
		"optimizer_switch": "a",
		"join_buffer_size": "b",
		"max_seeks_for_key": "c",
	})
	assert.Equal(t, []string{"join_buffer_size", "max_seeks_for_key", "optimizer_switch"}, names)
}

func TestWrapQueryError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode string
	}{
		{
			name:         "invalid connection",
			err:          mysqldriver.ErrInvalidConn,
			expectedCode: pkgerrors.CodeConnectionFailed,
		},
		{
			name:         "closed connection",
			err:          sql.ErrConnDone,
			expectedCode: pkgerrors.CodeConnectionFailed,
		},
		{
			name:         "refused dial",
			err:          errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"),
			expectedCode: pkgerrors.CodeConnectionFailed,
		},
		{
			name:         "syntax error",
			err:          errors.New("You have an error in your SQL syntax"),
			expectedCode: pkgerrors.CodeQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapQueryError(tt.err, "query execution failed")
			assert.Equal(t, tt.expectedCode, pkgerrors.GetCode(wrapped))
		})
	}

	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, wrapQueryError(nil, "unused"))
	})
}

func TestTruncateQuery(t *testing.T) {
	t.Run("short query unchanged", func(t *testing.T) {
		assert.Equal(t, "SELECT 1", truncateQuery("SELECT 1"))
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		assert.Equal(t, "SELECT name FROM artist", truncateQuery("SELECT\n    name\nFROM artist"))
	})

	t.Run("long query truncated", func(t *testing.T) {
		long := "SELECT " + strings.Repeat("x", 200)
		got := truncateQuery(long)
		assert.Len(t, got, 103)
		assert.Contains(t, got, "...")
	})
}
