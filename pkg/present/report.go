package present

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/TFMV/encore/pkg/infrastructure/converter"
	"github.com/TFMV/encore/pkg/models"
)

// BoxPlotData is the chart-ready payload for a timing distribution plot:
// one box of raw per-run timings per strategy, in report order.
type BoxPlotData struct {
	Labels  []string    `json:"labels"`
	Samples [][]float64 `json:"samples"`
}

// BoxPlot collects the distribution-plot payload from a comparison report.
// Strategies without successful runs contribute no box.
func BoxPlot(report *models.ComparisonReport) BoxPlotData {
	var data BoxPlotData
	if report == nil {
		return data
	}
	for _, name := range report.Order {
		sample, ok := report.Sample(name)
		if !ok || !sample.Succeeded() {
			continue
		}
		data.Labels = append(data.Labels, name)
		data.Samples = append(data.Samples, sample.Timings)
	}
	return data
}

// RenderReport renders the text timing summary for a comparison report:
// one block per strategy in report order, with unavailable and fully failed
// strategies marked instead of carrying NaN statistics. Two-strategy
// reports close with a baseline-versus-candidate improvement block.
func RenderReport(report *models.ComparisonReport) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Strategy Performance Summary: %s\n", report.QueryID)
	fmt.Fprintf(&b, "Iterations: %d\n\n", report.Iterations)

	for _, name := range report.Order {
		sample, ok := report.Sample(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", name)
		switch {
		case sample.Unavailable:
			fmt.Fprintf(&b, "  unavailable: no matching SQL variant\n")
		case !sample.Succeeded():
			fmt.Fprintf(&b, "  no successful runs (%d failed)\n", len(sample.RunErrors))
		default:
			fmt.Fprintf(&b, "  Avg Time: %.4fs\n", sample.Stats.Mean)
			fmt.Fprintf(&b, "  Median Time: %.4fs\n", sample.Stats.Median)
			fmt.Fprintf(&b, "  Min Time: %.4fs\n", sample.Stats.Min)
			fmt.Fprintf(&b, "  Max Time: %.4fs\n", sample.Stats.Max)
			fmt.Fprintf(&b, "  Std Dev: %.4fs\n", sample.Stats.StdDev)
			if len(sample.RunErrors) > 0 {
				fmt.Fprintf(&b, "  Failed Runs: %d\n", len(sample.RunErrors))
			}
			fmt.Fprintf(&b, "  Access Plan: %s\n", sample.AccessPlan)
		}
		b.WriteString("\n")
	}

	if regular, optimized, ok := planPair(report); ok {
		fmt.Fprintf(&b, "Regular Query: %.4f seconds\n", regular.Stats.Mean)
		fmt.Fprintf(&b, "Optimized Query: %.4f seconds\n", optimized.Stats.Mean)
		fmt.Fprintf(&b, "Difference: %.4f seconds\n", math.Abs(regular.Stats.Mean-optimized.Stats.Mean))
		fmt.Fprintf(&b, "Improvement: %.2f%%\n", (1-optimized.Stats.Mean/regular.Stats.Mean)*100)
	}

	return b.String()
}

// WriteReport writes RenderReport output to w.
func WriteReport(w io.Writer, report *models.ComparisonReport) error {
	_, err := io.WriteString(w, RenderReport(report))
	return err
}

// planPair returns the baseline and candidate samples of a two-strategy
// report when both succeeded. The improvement block is undefined for a
// zero-time baseline and is withheld.
func planPair(report *models.ComparisonReport) (*models.BenchmarkSample, *models.BenchmarkSample, bool) {
	if len(report.Order) != 2 {
		return nil, nil, false
	}
	regular, ok := report.Sample(report.Order[0])
	if !ok || !regular.Succeeded() {
		return nil, nil, false
	}
	optimized, ok := report.Sample(report.Order[1])
	if !ok || !optimized.Succeeded() {
		return nil, nil, false
	}
	if regular.Stats.Mean == 0 {
		return nil, nil, false
	}
	return regular, optimized, true
}

// RenderTable renders an execution result as an aligned text table, one
// header row, a dashed underline, then one line per row.
func RenderTable(result *models.ExecutionResult) string {
	if result == nil || len(result.Columns) == 0 {
		return ""
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 2, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
	underline := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		underline[i] = strings.Repeat("-", len(col))
	}
	fmt.Fprintln(tw, strings.Join(underline, "\t"))

	for _, row := range result.Rows {
		cells := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			cells[i] = converter.ToString(row[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	tw.Flush()
	return b.String()
}

// RenderCatalog renders the numbered query listing with descriptions and
// parameter schemas, one block per query.
func RenderCatalog(specs []*models.QuerySpec) string {
	var b strings.Builder
	for i, spec := range specs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  [%s]", spec.DisplayName(), spec.ID)
		if spec.JoinComparison {
			b.WriteString("  (join comparison)")
		} else if spec.Special {
			b.WriteString("  (indexed variant)")
		}
		b.WriteString("\n")
		if spec.Description != "" {
			fmt.Fprintf(&b, "    %s\n", spec.Description)
		}
		for _, p := range spec.Params {
			fmt.Fprintf(&b, "    param %s (%s): %s\n", p.Name, p.Type, p.Description)
		}
	}
	return b.String()
}
