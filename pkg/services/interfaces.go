// Package services contains business logic implementations.
package services

import (
	"context"
	"time"

	"github.com/TFMV/encore/pkg/models"
)

// QueryService defines catalog-backed query execution operations.
type QueryService interface {
	List() []*models.QuerySpec
	Describe(queryID string) (*models.QuerySpec, error)
	Run(ctx context.Context, queryID string, rawParams []string) (*models.ExecutionResult, error)
	RunTraced(ctx context.Context, queryID string, rawParams []string) (*models.ExecutionResult, error)
}

// BenchmarkService defines join-strategy and plan comparison operations.
type BenchmarkService interface {
	Compare(ctx context.Context, req *models.CompareRequest) (*models.ComparisonReport, error)
	CompareJoinStrategies(ctx context.Context, queryID string, rawParams []string) (*models.ComparisonReport, error)
	ComparePlans(ctx context.Context, queryID string, rawParams []string) (*models.ComparisonReport, error)
}

// ExportService defines file export operations.
type ExportService interface {
	ExportQuery(ctx context.Context, queryID string, rawParams []string, dir string) ([]string, error)
	ExportResult(result *models.ExecutionResult, path string) error
}

// Logger defines logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsCollector defines metrics collection interface.
type MetricsCollector interface {
	IncrementCounter(name string, labels ...string)
	RecordHistogram(name string, value float64, labels ...string)
	RecordGauge(name string, value float64, labels ...string)
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	Stop() time.Duration
}
