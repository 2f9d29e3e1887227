package models

import (
	"encoding/json"
	"time"
)

// Row holds one result record keyed by column name.
type Row map[string]interface{}

// OptimizerTrace is one row of information_schema.OPTIMIZER_TRACE captured
// alongside a traced statement.
type OptimizerTrace struct {
	// Query is the statement text the server associated with the trace.
	Query string `json:"query"`
	// Trace is the raw optimizer trace JSON document.
	Trace json.RawMessage `json:"trace"`
	// MissingBytes is nonzero when the trace was truncated by
	// optimizer_trace_max_mem_size.
	MissingBytes int64 `json:"missing_bytes_beyond_max_mem_size"`
	// InsufficientPrivileges is set when the server withheld the trace body.
	InsufficientPrivileges bool `json:"insufficient_privileges"`
}

// Empty reports whether the trace carries no usable document.
func (t *OptimizerTrace) Empty() bool {
	return t == nil || len(t.Trace) == 0
}

// ExecutionResult is the outcome of one successful statement execution.
type ExecutionResult struct {
	// Columns preserves the result column order as returned by the server.
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	// Elapsed is the wall-clock execution time measured at the gateway,
	// from dispatch to full materialization of the result set.
	Elapsed time.Duration `json:"elapsed"`
	// Trace is populated only for traced executions.
	Trace *OptimizerTrace `json:"trace,omitempty"`
}

// RowCount returns the number of records in the result.
func (r *ExecutionResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ElapsedSeconds returns the execution time in seconds.
func (r *ExecutionResult) ElapsedSeconds() float64 {
	if r == nil {
		return 0
	}
	return r.Elapsed.Seconds()
}

// Values returns the row's values in column order. Missing columns yield nil
// entries so the shape always matches the header.
func (r *ExecutionResult) Values(row Row) []interface{} {
	out := make([]interface{}, len(r.Columns))
	for i, col := range r.Columns {
		out[i] = row[col]
	}
	return out
}
