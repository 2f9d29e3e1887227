package models

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// OptimizerProfile is a named set of session optimizer settings applied for
// the duration of a single benchmarked execution. Values are stored unquoted;
// the gateway quotes them on apply and on restore.
type OptimizerProfile struct {
	Name     string            `json:"name"`
	Settings map[string]string `json:"settings"`
}

// StrategySpec names one execution strategy of a plan comparison: which SQL
// variant to run and which optimizer profile to run it under. A zero Variant
// means the baseline statement, a nil Profile means server defaults.
type StrategySpec struct {
	Name    string            `json:"name"`
	Variant string            `json:"variant,omitempty"`
	Profile *OptimizerProfile `json:"profile,omitempty"`
}

// TimingStats summarizes the successful timings of one strategy.
type TimingStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// ComputeTimingStats derives summary statistics from per-run timings in
// seconds. A single sample has zero deviation; no samples at all yield NaN
// means so downstream formatting can render them as unavailable.
func ComputeTimingStats(timings []float64) TimingStats {
	stats := TimingStats{Count: len(timings)}
	if len(timings) == 0 {
		stats.Mean = math.NaN()
		stats.Median = math.NaN()
		stats.Min = math.NaN()
		stats.Max = math.NaN()
		return stats
	}

	stats.Min = timings[0]
	stats.Max = timings[0]
	sum := 0.0
	for _, t := range timings {
		sum += t
		if t < stats.Min {
			stats.Min = t
		}
		if t > stats.Max {
			stats.Max = t
		}
	}
	stats.Mean = sum / float64(len(timings))

	sorted := append([]float64(nil), timings...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	if len(timings) < 2 {
		return stats
	}
	var sq float64
	for _, t := range timings {
		d := t - stats.Mean
		sq += d * d
	}
	stats.StdDev = math.Sqrt(sq / float64(len(timings)-1))
	return stats
}

// BenchmarkSample is the per-strategy outcome of a plan comparison.
type BenchmarkSample struct {
	Strategy string `json:"strategy"`
	// Unavailable is set when the catalog query does not define the SQL
	// variant the strategy asks for. No runs are attempted.
	Unavailable bool `json:"unavailable,omitempty"`
	// Timings holds elapsed seconds of the successful runs only.
	Timings []float64 `json:"timings,omitempty"`
	// RunErrors records failed iterations without aborting the sweep.
	RunErrors []string `json:"run_errors,omitempty"`
	// AccessPlan is the table access summary extracted from the optimizer
	// trace of the last successful run.
	AccessPlan string      `json:"access_plan,omitempty"`
	Stats      TimingStats `json:"stats"`
	// Last keeps the rows and trace of the final successful run. Earlier
	// results are discarded to bound memory.
	Last *ExecutionResult `json:"-"`
}

// Succeeded reports whether at least one run of the strategy completed.
func (s *BenchmarkSample) Succeeded() bool {
	return s != nil && !s.Unavailable && len(s.Timings) > 0
}

// CompareRequest asks the benchmark service to race a catalog query under a
// set of strategies.
type CompareRequest struct {
	QueryID    string         `json:"query_id"`
	Args       []interface{}  `json:"args,omitempty"`
	Strategies []StrategySpec `json:"strategies"`
	Iterations int            `json:"iterations"`
}

// ComparisonReport aggregates the samples of one plan comparison.
type ComparisonReport struct {
	ID         uuid.UUID     `json:"id"`
	QueryID    string        `json:"query_id"`
	Args       []interface{} `json:"args,omitempty"`
	Iterations int           `json:"iterations"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	// Order preserves the caller-supplied strategy order for rendering.
	Order   []string                    `json:"order"`
	Samples map[string]*BenchmarkSample `json:"samples"`
}

// Sample returns the named strategy sample.
func (r *ComparisonReport) Sample(name string) (*BenchmarkSample, bool) {
	s, ok := r.Samples[name]
	return s, ok
}

// Baseline returns the first strategy sample in caller order, which by
// convention is the unhinted regular execution.
func (r *ComparisonReport) Baseline() (*BenchmarkSample, bool) {
	if len(r.Order) == 0 {
		return nil, false
	}
	return r.Sample(r.Order[0])
}
