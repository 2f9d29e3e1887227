// Package repositories defines interfaces for data access operations.
package repositories

import (
	"context"

	"github.com/TFMV/encore/pkg/models"
)

// QueryGateway executes catalog statements on a pinned database session.
// Optimizer traces and session optimizer settings are connection-scoped in
// MySQL, so every execution runs on the same dedicated connection, and state
// set for one call never leaks into the next.
type QueryGateway interface {
	// Run executes a statement and materializes its result set. Elapsed
	// time is measured at the gateway, from dispatch to the last row.
	Run(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error)

	// RunTraced executes a statement with the optimizer trace enabled and
	// attaches the captured trace to the result. The trace is switched
	// off again on every exit path. A missing trace row yields a result
	// without a trace, not an error.
	RunTraced(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error)

	// RunWithProfile applies the optimizer profile to the session, runs
	// the statement traced, and restores the saved values afterwards even
	// when the execution fails. A nil profile degrades to RunTraced.
	RunWithProfile(ctx context.Context, profile *models.OptimizerProfile, query string, args ...interface{}) (*models.ExecutionResult, error)

	// HealthCheck verifies the pinned session is alive, reconnecting at
	// most once.
	HealthCheck(ctx context.Context) error

	// Close releases the pinned session connection.
	Close() error
}
