package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/encore/pkg/catalog"
	"github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/models"
)

// mockGateway implements repositories.QueryGateway
type mockGateway struct {
	runFunc            func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error)
	runTracedFunc      func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error)
	runWithProfileFunc func(ctx context.Context, profile *models.OptimizerProfile, query string, args ...interface{}) (*models.ExecutionResult, error)
	healthCheckFunc    func(ctx context.Context) error
	closeFunc          func() error
}

func (m *mockGateway) Run(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
	return m.runFunc(ctx, query, args...)
}

func (m *mockGateway) RunTraced(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
	return m.runTracedFunc(ctx, query, args...)
}

func (m *mockGateway) RunWithProfile(ctx context.Context, profile *models.OptimizerProfile, query string, args ...interface{}) (*models.ExecutionResult, error) {
	return m.runWithProfileFunc(ctx, profile, query, args...)
}

func (m *mockGateway) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}

func (m *mockGateway) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

// mockLogger implements Logger
type mockLogger struct {
	debugFunc func(msg string, keysAndValues ...interface{})
	infoFunc  func(msg string, keysAndValues ...interface{})
	warnFunc  func(msg string, keysAndValues ...interface{})
	errorFunc func(msg string, keysAndValues ...interface{})
}

func (m *mockLogger) Debug(msg string, keysAndValues ...interface{}) {
	if m.debugFunc != nil {
		m.debugFunc(msg, keysAndValues...)
	}
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	if m.infoFunc != nil {
		m.infoFunc(msg, keysAndValues...)
	}
}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	if m.warnFunc != nil {
		m.warnFunc(msg, keysAndValues...)
	}
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	if m.errorFunc != nil {
		m.errorFunc(msg, keysAndValues...)
	}
}

// mockMetricsCollector implements MetricsCollector
type mockMetricsCollector struct {
	incrementCounterFunc func(name string, labels ...string)
	recordHistogramFunc  func(name string, value float64, labels ...string)
	recordGaugeFunc      func(name string, value float64, labels ...string)
	startTimerFunc       func(name string) Timer
}

func (m *mockMetricsCollector) IncrementCounter(name string, labels ...string) {
	if m.incrementCounterFunc != nil {
		m.incrementCounterFunc(name, labels...)
	}
}

func (m *mockMetricsCollector) RecordHistogram(name string, value float64, labels ...string) {
	if m.recordHistogramFunc != nil {
		m.recordHistogramFunc(name, value, labels...)
	}
}

func (m *mockMetricsCollector) RecordGauge(name string, value float64, labels ...string) {
	if m.recordGaugeFunc != nil {
		m.recordGaugeFunc(name, value, labels...)
	}
}

func (m *mockMetricsCollector) StartTimer(name string) Timer {
	if m.startTimerFunc != nil {
		return m.startTimerFunc(name)
	}
	return &mockTimer{}
}

// mockTimer implements Timer
type mockTimer struct{}

func (m *mockTimer) Stop() time.Duration {
	return 0
}

// annotatedTrace builds a trace payload carrying one access annotation.
func annotatedTrace(table string) *models.OptimizerTrace {
	payload := fmt.Sprintf(`{"steps": [{"join_preparation": {"tables": [{"table": %q, "access_type": "ref"}]}}]}`, table)
	return &models.OptimizerTrace{
		Query: "traced statement",
		Trace: json.RawMessage(payload),
	}
}

func setupTestQueryService() (QueryService, *mockGateway) {
	gateway := &mockGateway{}
	service := NewQueryService(catalog.New(), gateway, &mockLogger{}, &mockMetricsCollector{})
	return service, gateway
}

func TestQueryService_Run(t *testing.T) {
	service, gateway := setupTestQueryService()

	t.Run("runs catalog statement", func(t *testing.T) {
		var gotQuery string
		var gotArgs []interface{}
		gateway.runFunc = func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
			gotQuery = query
			gotArgs = args
			return &models.ExecutionResult{
				Columns: []string{"festival_year"},
				Rows:    []models.Row{{"festival_year": int64(2024)}},
				Elapsed: 10 * time.Millisecond,
			}, nil
		}

		result, err := service.Run(context.Background(), "revenue_by_year_payment", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount())

		expected, err := catalog.New().Statement("revenue_by_year_payment")
		require.NoError(t, err)
		assert.Equal(t, expected, gotQuery)
		assert.Empty(t, gotArgs)
	})

	t.Run("resolves queries by ordinal", func(t *testing.T) {
		gateway.runFunc = func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
			return &models.ExecutionResult{}, nil
		}

		_, err := service.Run(context.Background(), "1", nil)
		require.NoError(t, err)
	})

	t.Run("converts parameters before the gateway", func(t *testing.T) {
		var gotArgs []interface{}
		gateway.runFunc = func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
			gotArgs = args
			return &models.ExecutionResult{}, nil
		}

		_, err := service.Run(context.Background(), "artists_by_genre_participation", []string{"2024", "Rock"})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{2024, "Rock"}, gotArgs)
	})

	t.Run("rejects invalid parameters without touching the gateway", func(t *testing.T) {
		calls := 0
		gateway.runFunc = func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
			calls++
			return &models.ExecutionResult{}, nil
		}

		_, err := service.Run(context.Background(), "artists_by_genre_participation", []string{"2024"})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidParameter(err))
		assert.Zero(t, calls)
	})

	t.Run("unknown query", func(t *testing.T) {
		_, err := service.Run(context.Background(), "no_such_query", nil)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("gateway failure surfaces", func(t *testing.T) {
		gateway.runFunc = func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
			return nil, assert.AnError
		}

		result, err := service.Run(context.Background(), "1", nil)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestQueryService_RunTraced(t *testing.T) {
	service, gateway := setupTestQueryService()

	t.Run("passes the trace through", func(t *testing.T) {
		gateway.runTracedFunc = func(ctx context.Context, query string, args ...interface{}) (*models.ExecutionResult, error) {
			return &models.ExecutionResult{
				Columns: []string{"artist_name"},
				Trace:   annotatedTrace("artist"),
			}, nil
		}

		result, err := service.RunTraced(context.Background(), "artist_average_ratings", []string{"7"})
		require.NoError(t, err)
		require.NotNil(t, result.Trace)
		assert.False(t, result.Trace.Empty())
	})

	t.Run("parameter arity is enforced", func(t *testing.T) {
		_, err := service.RunTraced(context.Background(), "artist_average_ratings", nil)
		require.Error(t, err)
		assert.True(t, errors.IsInvalidParameter(err))
	})
}

func TestQueryService_Describe(t *testing.T) {
	service, _ := setupTestQueryService()

	spec, err := service.Describe("4")
	require.NoError(t, err)
	assert.Equal(t, "artist_average_ratings", spec.ID)
	assert.True(t, spec.JoinComparison)

	_, err = service.Describe("unknown")
	assert.True(t, errors.IsNotFound(err))
}

func TestQueryService_List(t *testing.T) {
	service, _ := setupTestQueryService()

	specs := service.List()
	require.Len(t, specs, 15)
	assert.Equal(t, 1, specs[0].Number)
	assert.Equal(t, 15, specs[14].Number)
}
