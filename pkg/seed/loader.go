package seed

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TFMV/encore/pkg/errors"
)

// insertBatchSize caps the number of rows in one multi-row INSERT.
const insertBatchSize = 500

// databaseName guards the identifier interpolated into CREATE DATABASE;
// identifiers cannot be bound as statement parameters.
var databaseName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnsureDatabase creates the named database when it does not exist yet.
// The handle must point at the server without a default schema.
func EnsureDatabase(ctx context.Context, db *sql.DB, name string) error {
	if !databaseName.MatchString(name) {
		return errors.New(errors.CodeInvalidParameter, "invalid database name: "+name)
	}
	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+name+" DEFAULT CHARACTER SET utf8mb4"); err != nil {
		return errors.Wrapf(err, errors.CodeQueryFailed, "failed to create database %s", name)
	}
	return nil
}

// Loader creates the schema and loads the generated data through a plain
// database handle.
type Loader struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewLoader creates a loader that writes through db.
func NewLoader(db *sql.DB, logger zerolog.Logger) *Loader {
	return &Loader{
		db:     db,
		logger: logger.With().Str("component", "seed").Logger(),
	}
}

// Reset drops every known table and recreates the schema. Drops run with
// foreign key checks off so the order of existing tables does not matter;
// creation runs in dependency order with checks back on.
func (l *Loader) Reset(ctx context.Context) error {
	l.logger.Info().Msg("Resetting schema")

	if _, err := l.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
		return errors.Wrap(err, errors.CodeQueryFailed, "failed to disable foreign key checks")
	}
	for _, stmt := range DropStatements() {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, errors.CodeQueryFailed, "failed to drop table")
		}
	}
	if _, err := l.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1"); err != nil {
		return errors.Wrap(err, errors.CodeQueryFailed, "failed to enable foreign key checks")
	}

	for i, ddl := range Schema() {
		if _, err := l.db.ExecContext(ctx, ddl); err != nil {
			return errors.Wrapf(err, errors.CodeQueryFailed, "failed to create table %s", tables[i].name)
		}
	}

	l.logger.Info().Int("tables", len(tables)).Msg("Schema created")
	return nil
}

// Load generates a deterministic data set of the given size and inserts it
// in dependency order. It assumes the schema exists and the tables are
// empty; run Reset first for a clean slate.
func (l *Loader) Load(ctx context.Context, size Size) error {
	start := time.Now()
	total := 0
	for _, td := range generate(size) {
		if err := l.insertAll(ctx, td); err != nil {
			return err
		}
		total += len(td.rows)
		l.logger.Info().
			Str("table", td.table).
			Int("rows", len(td.rows)).
			Msg("Seeded table")
	}

	l.logger.Info().
		Int("rows", total).
		Dur("elapsed", time.Since(start)).
		Msg("Sample data loaded")
	return nil
}

func (l *Loader) insertAll(ctx context.Context, td tableData) error {
	for start := 0; start < len(td.rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(td.rows) {
			end = len(td.rows)
		}
		batch := td.rows[start:end]
		if _, err := l.db.ExecContext(ctx, buildInsert(td.table, td.columns, len(batch)), flatten(batch)...); err != nil {
			return errors.Wrapf(err, errors.CodeQueryFailed, "failed to seed %s", td.table)
		}
	}
	return nil
}

// buildInsert renders a multi-row INSERT with one placeholder group per row.
func buildInsert(table string, columns []string, rowCount int) string {
	group := "(" + strings.Repeat("?, ", len(columns)-1) + "?)"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < rowCount; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
	}
	return b.String()
}

func flatten(rows [][]interface{}) []interface{} {
	if len(rows) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		args = append(args, row...)
	}
	return args
}
