package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TFMV/encore/pkg/catalog"
	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/models"
	"github.com/TFMV/encore/pkg/repositories"
	"github.com/TFMV/encore/pkg/trace"
)

const (
	// JoinSweepIterations is the number of timed runs per join strategy.
	JoinSweepIterations = 5

	// PlanCompareIterations is the number of timed runs per plan form.
	PlanCompareIterations = 1
)

// benchmarkService implements BenchmarkService.
type benchmarkService struct {
	catalog *catalog.Catalog
	gateway repositories.QueryGateway
	logger  Logger
	metrics MetricsCollector

	sweepIterations int
	planIterations  int
}

// BenchmarkOption adjusts benchmark service construction.
type BenchmarkOption func(*benchmarkService)

// WithSweepIterations overrides the per-strategy run count of the join
// strategy sweep.
func WithSweepIterations(n int) BenchmarkOption {
	return func(s *benchmarkService) {
		if n > 0 {
			s.sweepIterations = n
		}
	}
}

// WithPlanIterations overrides the per-form run count of the plan
// comparison.
func WithPlanIterations(n int) BenchmarkOption {
	return func(s *benchmarkService) {
		if n > 0 {
			s.planIterations = n
		}
	}
}

// NewBenchmarkService creates a new benchmark service.
func NewBenchmarkService(
	cat *catalog.Catalog,
	gateway repositories.QueryGateway,
	logger Logger,
	metrics MetricsCollector,
	opts ...BenchmarkOption,
) BenchmarkService {
	s := &benchmarkService{
		catalog:         cat,
		gateway:         gateway,
		logger:          logger,
		metrics:         metrics,
		sweepIterations: JoinSweepIterations,
		planIterations:  PlanCompareIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare runs every requested strategy sequentially, in caller order, and
// aggregates per-strategy timing statistics into a report. Strategies run
// one at a time because they share session-scoped optimizer state.
func (s *benchmarkService) Compare(ctx context.Context, req *models.CompareRequest) (*models.ComparisonReport, error) {
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest, "compare request cannot be nil")
	}
	if req.Iterations < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest, "iterations must be at least 1")
	}
	if len(req.Strategies) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest, "at least one strategy is required")
	}

	spec, err := s.catalog.Get(req.QueryID)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.StartTimer("benchmark_sweep")
	defer timer.Stop()

	s.logger.Info("Starting benchmark sweep",
		"query_id", spec.ID,
		"strategies", len(req.Strategies),
		"iterations", req.Iterations)

	report := &models.ComparisonReport{
		ID:         uuid.New(),
		QueryID:    spec.ID,
		Args:       req.Args,
		Iterations: req.Iterations,
		StartedAt:  time.Now(),
		Samples:    make(map[string]*models.BenchmarkSample, len(req.Strategies)),
	}

	for _, strategy := range req.Strategies {
		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(ctx.Err(), pkgerrors.CodeCanceled, "benchmark sweep canceled")
		default:
		}

		sample := s.runStrategy(ctx, spec, strategy, req.Args, req.Iterations)
		report.Order = append(report.Order, strategy.Name)
		report.Samples[strategy.Name] = sample
	}

	report.FinishedAt = time.Now()

	s.logger.Info("Benchmark sweep finished",
		"query_id", spec.ID,
		"report_id", report.ID,
		"elapsed", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

// CompareJoinStrategies runs the full join-strategy sweep for a query that
// supports it.
func (s *benchmarkService) CompareJoinStrategies(ctx context.Context, queryID string, rawParams []string) (*models.ComparisonReport, error) {
	spec, args, err := s.resolve(queryID, rawParams)
	if err != nil {
		return nil, err
	}
	if !spec.JoinComparison {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest,
			fmt.Sprintf("query %q does not support join strategy comparison", spec.ID))
	}

	return s.Compare(ctx, &models.CompareRequest{
		QueryID:    spec.ID,
		Args:       args,
		Strategies: catalog.JoinStrategies(),
		Iterations: s.sweepIterations,
	})
}

// ComparePlans compares the baseline statement against its indexed variant.
func (s *benchmarkService) ComparePlans(ctx context.Context, queryID string, rawParams []string) (*models.ComparisonReport, error) {
	spec, args, err := s.resolve(queryID, rawParams)
	if err != nil {
		return nil, err
	}
	if !spec.Special || !spec.HasVariant(catalog.VariantWithIndex) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest,
			fmt.Sprintf("query %q has no optimized variant to compare", spec.ID))
	}

	return s.Compare(ctx, &models.CompareRequest{
		QueryID:    spec.ID,
		Args:       args,
		Strategies: catalog.PlanStrategies(),
		Iterations: s.planIterations,
	})
}

// runStrategy times one strategy. A missing variant marks the sample
// unavailable; per-run failures are recorded and skipped so the rest of the
// sweep still completes.
func (s *benchmarkService) runStrategy(ctx context.Context, spec *models.QuerySpec, strategy models.StrategySpec, args []interface{}, iterations int) *models.BenchmarkSample {
	sample := &models.BenchmarkSample{Strategy: strategy.Name}

	stmt := spec.SQL
	if strategy.Variant != "" {
		variant, err := s.catalog.Variant(spec.ID, strategy.Variant)
		if err != nil {
			s.metrics.IncrementCounter("benchmark_unavailable_strategies")
			s.logger.Warn("Strategy variant unavailable",
				"query_id", spec.ID,
				"strategy", strategy.Name,
				"variant", strategy.Variant)
			sample.Unavailable = true
			return sample
		}
		stmt = variant
	}

	for i := 0; i < iterations; i++ {
		result, err := s.gateway.RunWithProfile(ctx, strategy.Profile, stmt, args...)
		if err != nil {
			s.metrics.IncrementCounter("benchmark_run_errors")
			s.logger.Error("Benchmark run failed",
				"strategy", strategy.Name,
				"iteration", i+1,
				"error", err)
			sample.RunErrors = append(sample.RunErrors, err.Error())
			continue
		}

		sample.Timings = append(sample.Timings, result.ElapsedSeconds())
		sample.Last = result
	}

	if sample.Last != nil {
		sample.AccessPlan = trace.ExtractStrategy(sample.Last.Trace)
	} else {
		sample.AccessPlan = trace.LabelUnknown
	}
	sample.Stats = models.ComputeTimingStats(sample.Timings)

	if len(sample.Timings) > 0 {
		s.metrics.RecordHistogram("benchmark_strategy_mean_seconds", sample.Stats.Mean, "strategy", strategy.Name)
	}

	s.logger.Debug("Strategy sweep complete",
		"strategy", strategy.Name,
		"valid_runs", len(sample.Timings),
		"failed_runs", len(sample.RunErrors),
		"access_plan", sample.AccessPlan)

	return sample
}

// resolve looks up a query and converts its raw parameters.
func (s *benchmarkService) resolve(queryID string, rawParams []string) (*models.QuerySpec, []interface{}, error) {
	spec, err := s.catalog.Get(queryID)
	if err != nil {
		return nil, nil, err
	}

	args, err := catalog.ConvertParams(spec, rawParams)
	if err != nil {
		return nil, nil, err
	}

	return spec, args, nil
}
