// Package mysql provides the MySQL implementation of the query gateway.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/infrastructure/converter"
	"github.com/TFMV/encore/pkg/infrastructure/metrics"
	"github.com/TFMV/encore/pkg/infrastructure/pool"
	"github.com/TFMV/encore/pkg/models"
	"github.com/TFMV/encore/pkg/repositories"
)

// Session statements for optimizer tracing.
const (
	enableTraceStmt  = "SET optimizer_trace='enabled=on'"
	disableTraceStmt = "SET optimizer_trace='enabled=off'"

	selectTraceStmt = "SELECT QUERY, TRACE, MISSING_BYTES_BEYOND_MAX_MEM_SIZE, " +
		"INSUFFICIENT_PRIVILEGES FROM information_schema.OPTIMIZER_TRACE"
)

// defaultTraceMaxMemSize keeps traces of the heavier join queries from being
// truncated by the server default.
const defaultTraceMaxMemSize = 1000000

func traceMemLimitStmt(bytes int64) string {
	return fmt.Sprintf("SET optimizer_trace_max_mem_size=%d", bytes)
}

// sessionGuardTimeout bounds the statements that reset session state after a
// run. Guards use a fresh context so cleanup still happens when the caller's
// context is already done.
const sessionGuardTimeout = 5 * time.Second

var sessionVarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// queryGateway implements repositories.QueryGateway on a pinned connection.
type queryGateway struct {
	pool            pool.ConnectionPool
	converter       converter.RowConverter
	metrics         metrics.Collector
	logger          zerolog.Logger
	traceMaxMemSize int64

	// mu serializes access to the pinned connection. Session state such as
	// the trace toggle and optimizer settings must not interleave.
	mu   sync.Mutex
	conn *sql.Conn
}

// Option adjusts gateway construction.
type Option func(*queryGateway)

// WithTraceMaxMemSize overrides the optimizer trace memory limit set before
// every traced run.
func WithTraceMaxMemSize(bytes int64) Option {
	return func(g *queryGateway) {
		if bytes > 0 {
			g.traceMaxMemSize = bytes
		}
	}
}

// NewQueryGateway creates a new MySQL query gateway.
func NewQueryGateway(pool pool.ConnectionPool, conv converter.RowConverter, collector metrics.Collector, logger zerolog.Logger, opts ...Option) repositories.QueryGateway {
	g := &queryGateway{
		pool:            pool,
		converter:       conv,
		metrics:         collector,
		logger:          logger,
		traceMaxMemSize: defaultTraceMaxMemSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run executes a statement and materializes its result set.
func (g *queryGateway) Run(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conn, err := g.ensureSessionLocked(ctx)
	if err != nil {
		return nil, err
	}
	return g.execute(ctx, conn, query, args...)
}

// RunTraced executes a statement with the optimizer trace enabled.
func (g *queryGateway) RunTraced(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conn, err := g.ensureSessionLocked(ctx)
	if err != nil {
		return nil, err
	}
	return g.runTracedLocked(ctx, conn, query, args...)
}

// RunWithProfile applies the optimizer profile, runs the statement traced,
// and restores the saved session values on every exit path.
func (g *queryGateway) RunWithProfile(ctx context.Context, profile *models.OptimizerProfile, query string, args ...interface{}) (*models.ExecutionResult, error) {
	if profile == nil || len(profile.Settings) == 0 {
		return g.RunTraced(ctx, query, args...)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	conn, err := g.ensureSessionLocked(ctx)
	if err != nil {
		return nil, err
	}

	names := settingNames(profile.Settings)
	saved, err := g.saveSettings(ctx, conn, names)
	if err != nil {
		return nil, err
	}
	defer g.restoreSettings(conn, saved)

	if err := g.applySettings(ctx, conn, profile.Settings, names); err != nil {
		return nil, err
	}

	g.logger.Debug().Str("profile", profile.Name).Msg("Optimizer profile applied")

	return g.runTracedLocked(ctx, conn, query, args...)
}

// HealthCheck verifies the pinned session, reconnecting at most once.
func (g *queryGateway) HealthCheck(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.ensureSessionLocked(ctx)
	return err
}

// Close releases the pinned session connection.
func (g *queryGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to close session connection")
	}
	return nil
}

// ensureSessionLocked returns a live pinned connection. A dead connection is
// replaced with a single fresh acquisition; the error surfaces if that fails
// too. Callers must hold g.mu.
func (g *queryGateway) ensureSessionLocked(ctx context.Context) (*sql.Conn, error) {
	if g.conn != nil {
		if err := g.conn.PingContext(ctx); err == nil {
			return g.conn, nil
		}
		g.logger.Warn().Msg("Session connection lost, reconnecting")
		if err := g.conn.Close(); err != nil {
			g.logger.Debug().Err(err).Msg("Failed to close dead session connection")
		}
		g.conn = nil
	}

	conn, err := g.pool.Session(ctx)
	if err != nil {
		return nil, err
	}
	g.conn = conn
	return conn, nil
}

// execute runs a statement on the pinned connection and collects its rows.
// Elapsed covers dispatch through full materialization.
func (g *queryGateway) execute(ctx context.Context, conn *sql.Conn, query string, args ...interface{}) (*models.ExecutionResult, error) {
	g.logger.Debug().
		Str("query", truncateQuery(query)).
		Int("args_count", len(args)).
		Msg("Executing query")

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		g.metrics.IncrementCounter("query_executions_total", "status", "error")
		return nil, wrapQueryError(err, "query execution failed")
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			g.logger.Debug().Err(cerr).Msg("Failed to close rows")
		}
	}()

	result, err := g.converter.CollectRows(rows)
	if err != nil {
		g.metrics.IncrementCounter("query_executions_total", "status", "error")
		return nil, err
	}
	result.Elapsed = time.Since(start)

	g.metrics.IncrementCounter("query_executions_total", "status", "success")
	g.metrics.RecordHistogram("query_duration_seconds", result.Elapsed.Seconds())

	g.logger.Debug().
		Dur("elapsed", result.Elapsed).
		Int("rows", result.RowCount()).
		Msg("Query executed")

	return result, nil
}

// runTracedLocked wraps execute with the optimizer trace toggled on. The
// trace is switched off again before returning, whatever the outcome.
func (g *queryGateway) runTracedLocked(ctx context.Context, conn *sql.Conn, query string, args ...interface{}) (*models.ExecutionResult, error) {
	if err := g.enableTrace(ctx, conn); err != nil {
		return nil, err
	}
	defer g.disableTrace(conn)

	result, err := g.execute(ctx, conn, query, args...)
	if err != nil {
		return nil, err
	}

	trace, err := g.fetchTrace(ctx, conn)
	if err != nil {
		g.metrics.IncrementCounter("trace_fetch_failures_total")
		g.logger.Warn().Err(err).Msg("Failed to fetch optimizer trace")
		return result, nil
	}
	result.Trace = trace

	return result, nil
}

func (g *queryGateway) enableTrace(ctx context.Context, conn *sql.Conn) error {
	if _, err := conn.ExecContext(ctx, enableTraceStmt); err != nil {
		return wrapQueryError(err, "failed to enable optimizer trace")
	}
	if _, err := conn.ExecContext(ctx, traceMemLimitStmt(g.traceMaxMemSize)); err != nil {
		g.disableTrace(conn)
		return wrapQueryError(err, "failed to raise optimizer trace memory limit")
	}
	return nil
}

func (g *queryGateway) disableTrace(conn *sql.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionGuardTimeout)
	defer cancel()

	if _, err := conn.ExecContext(ctx, disableTraceStmt); err != nil {
		g.logger.Warn().Err(err).Msg("Failed to disable optimizer trace")
	}
}

// fetchTrace reads the trace row the server captured for the last traced
// statement. A missing row returns nil without error.
func (g *queryGateway) fetchTrace(ctx context.Context, conn *sql.Conn) (*models.OptimizerTrace, error) {
	var (
		queryText    string
		traceJSON    []byte
		missingBytes int64
		insufficient bool
	)

	row := conn.QueryRowContext(ctx, selectTraceStmt)
	if err := row.Scan(&queryText, &traceJSON, &missingBytes, &insufficient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapQueryError(err, "failed to read optimizer trace")
	}

	if missingBytes > 0 {
		g.logger.Warn().
			Int64("missing_bytes", missingBytes).
			Msg("Optimizer trace truncated by memory limit")
	}
	if insufficient {
		g.logger.Warn().Msg("Optimizer trace withheld for insufficient privileges")
	}

	return &models.OptimizerTrace{
		Query:                  queryText,
		Trace:                  json.RawMessage(traceJSON),
		MissingBytes:           missingBytes,
		InsufficientPrivileges: insufficient,
	}, nil
}

// saveSettings reads the current values of the session variables a profile
// is about to change.
func (g *queryGateway) saveSettings(ctx context.Context, conn *sql.Conn, names []string) (map[string]string, error) {
	saved := make(map[string]string, len(names))
	for _, name := range names {
		if !sessionVarName.MatchString(name) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidParameter,
				fmt.Sprintf("invalid session variable name %q", name))
		}
		var value string
		if err := conn.QueryRowContext(ctx, "SELECT @@"+name).Scan(&value); err != nil {
			return nil, wrapQueryError(err, fmt.Sprintf("failed to read session variable %s", name))
		}
		saved[name] = value
	}
	return saved, nil
}

func (g *queryGateway) applySettings(ctx context.Context, conn *sql.Conn, settings map[string]string, names []string) error {
	for _, name := range names {
		stmt := fmt.Sprintf("SET SESSION %s=%s", name, quoteSessionValue(settings[name]))
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return wrapQueryError(err, fmt.Sprintf("failed to apply session variable %s", name))
		}
	}
	return nil
}

// restoreSettings writes saved values back, value-quoted exactly like apply.
// Restoration failures are logged per variable and do not stop the rest.
func (g *queryGateway) restoreSettings(conn *sql.Conn, saved map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionGuardTimeout)
	defer cancel()

	for _, name := range settingNames(saved) {
		stmt := fmt.Sprintf("SET SESSION %s=%s", name, quoteSessionValue(saved[name]))
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			g.logger.Error().Err(err).Str("variable", name).Msg("Failed to restore session variable")
		}
	}
}

// settingNames returns the variable names in sorted order so apply and
// restore run deterministically.
func settingNames(settings map[string]string) []string {
	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// quoteSessionValue renders a value as a quoted SQL string literal. Session
// variables cannot be bound as placeholders, and values such as
// optimizer_switch flag lists need quoting on apply and restore alike.
func quoteSessionValue(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// wrapQueryError classifies a driver error as a connection failure or a
// query failure.
func wrapQueryError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if isConnectionError(err) {
		return pkgerrors.Wrap(err, pkgerrors.CodeConnectionFailed, msg)
	}
	return pkgerrors.Wrap(err, pkgerrors.CodeQueryFailed, msg)
}

func isConnectionError(err error) bool {
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}

// truncateQuery truncates long queries for logging.
func truncateQuery(query string) string {
	const maxLen = 100
	query = strings.Join(strings.Fields(query), " ")
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
