// Package present prepares query results and benchmark reports for display:
// chart series, boxplot payloads, timing summaries, and table rendering.
package present

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/infrastructure/converter"
	"github.com/TFMV/encore/pkg/models"
)

// ChartKind enumerates the chart shapes offered for query results.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
	ChartLine ChartKind = "line"
)

// ColumnHints drives axis-column selection for one chart. Exact names are
// tried first, then case-insensitive substring matches. The positional
// fallback applies only when the schema has at least MinColumns columns;
// a negative index counts from the end.
type ColumnHints struct {
	XColumns    []string
	XSubstrings []string
	XFallback   int
	YColumns    []string
	YSubstrings []string
	YFallback   int
	MinColumns  int
}

// ChartSpec describes one chart offered for a query's result view.
type ChartSpec struct {
	Kind        ChartKind
	Title       string
	XLabel      string
	YLabel      string
	Hints       ColumnHints
	Aggregate   bool // sum values per distinct label before plotting
	SortDesc    bool // order points by value, largest first
	SortByX     bool // order points by label, numeric-aware
	Limit       int  // keep the top N points, 0 keeps all
	GroupOthers bool // fold points beyond Limit into an "Others" entry
}

// Series is chart-ready data, one label and one value per point.
type Series struct {
	Title  string
	Kind   ChartKind
	XLabel string
	YLabel string
	Labels []string
	Values []float64
}

// chartCatalog maps query identifiers to their chart specs. Only these
// queries offer visualization; everything else renders as a table only.
var chartCatalog = map[string][]ChartSpec{
	"revenue_by_year_payment": {
		{
			Kind:   ChartBar,
			Title:  "Total Revenue by Year",
			XLabel: "Year",
			YLabel: "Total Revenue",
			Hints: ColumnHints{
				XSubstrings: []string{"year"},
				YSubstrings: []string{"revenue", "total"},
				XFallback:   0,
				YFallback:   2,
				MinColumns:  3,
			},
			Aggregate: true,
		},
		{
			Kind:  ChartPie,
			Title: "Revenue Distribution by Payment Method",
			Hints: ColumnHints{
				XSubstrings: []string{"payment", "method"},
				YSubstrings: []string{"revenue", "total"},
				XFallback:   1,
				YFallback:   2,
				MinColumns:  3,
			},
			Aggregate: true,
		},
		{
			Kind:   ChartLine,
			Title:  "Revenue Trend by Year",
			XLabel: "Year",
			YLabel: "Total Revenue",
			Hints: ColumnHints{
				XSubstrings: []string{"year"},
				YSubstrings: []string{"revenue", "total"},
				XFallback:   0,
				YFallback:   2,
				MinColumns:  3,
			},
			Aggregate: true,
			SortByX:   true,
		},
	},
	"frequent_warmup_artists": {
		{
			Kind:     ChartBar,
			Title:    "Artists by Warm-up Performance Count",
			XLabel:   "Artist",
			YLabel:   "Warm-up Count",
			Hints:    ColumnHints{XColumns: []string{"name"}, YColumns: []string{"warmup_count"}},
			SortDesc: true,
		},
		{
			Kind:  ChartPie,
			Title: "Warm-up Performances Distribution by Artist",
			Hints: ColumnHints{XColumns: []string{"name"}, YColumns: []string{"warmup_count"}},
		},
	},
	"young_artists_participation": {
		{
			Kind:     ChartBar,
			Title:    "Young Artists by Festival Participation Count",
			XLabel:   "Artist",
			YLabel:   "Festival Count",
			Hints:    ColumnHints{XColumns: []string{"name"}, YColumns: []string{"festival_count"}},
			SortDesc: true,
			Limit:    15,
		},
		{
			Kind:        ChartPie,
			Title:       "Festival Participation Distribution by Young Artist",
			Hints:       ColumnHints{XColumns: []string{"name"}, YColumns: []string{"festival_count"}},
			Limit:       10,
			GroupOthers: true,
		},
	},
	"visitor_performances_ratings": {
		{
			Kind:   ChartBar,
			Title:  "Performances by Rating",
			XLabel: "Performance",
			YLabel: "Rating",
			Hints: ColumnHints{
				XSubstrings: []string{"event", "performance", "name"},
				YSubstrings: []string{"rating", "avg", "average", "score"},
				XFallback:   0,
				YFallback:   -1,
				MinColumns:  2,
			},
			SortDesc: true,
			Limit:    15,
		},
		{
			Kind:  ChartPie,
			Title: "Performances by Rating",
			Hints: ColumnHints{
				XSubstrings: []string{"event", "performance", "name", "performer"},
				YSubstrings: []string{"rating", "avg", "average"},
				XFallback:   0,
				YFallback:   -1,
				MinColumns:  2,
			},
			SortDesc: true,
			Limit:    10,
		},
	},
	"less_frequent_artists": {
		{
			Kind:     ChartBar,
			Title:    "Artists by Festival Count",
			XLabel:   "Artist",
			YLabel:   "Festival Count",
			Hints:    ColumnHints{XColumns: []string{"name"}, YColumns: []string{"festival_count"}},
			SortDesc: true,
			Limit:    15,
		},
		{
			Kind:        ChartPie,
			Title:       "Festival Count Distribution by Artist",
			Hints:       ColumnHints{XColumns: []string{"name"}, YColumns: []string{"festival_count"}},
			Limit:       10,
			GroupOthers: true,
		},
	},
	"artists_multiple_continents": {
		{
			Kind:     ChartBar,
			Title:    "Artists by Number of Continents Performed",
			XLabel:   "Artist",
			YLabel:   "Number of Continents",
			Hints:    ColumnHints{XColumns: []string{"name"}, YColumns: []string{"continent_count"}},
			SortDesc: true,
		},
		{
			Kind:  ChartPie,
			Title: "Distribution of Continents Performed by Artist",
			Hints: ColumnHints{XColumns: []string{"name"}, YColumns: []string{"continent_count"}},
		},
	},
}

// ChartsFor returns the chart specs for a query identifier.
func ChartsFor(queryID string) ([]ChartSpec, bool) {
	specs, ok := chartCatalog[queryID]
	return specs, ok
}

// CanVisualize reports whether a query offers chart rendering.
func CanVisualize(queryID string) bool {
	_, ok := chartCatalog[queryID]
	return ok
}

// InferColumns selects the x and y columns for a chart from a result
// schema. Each axis resolves independently: exact names, then substring
// matches in schema order, then the positional fallback. Selection fails
// when either axis stays unresolved or both land on the same column.
func InferColumns(schema []string, hints ColumnHints) (string, string, bool) {
	x := matchColumn(schema, hints.XColumns, hints.XSubstrings)
	y := matchColumn(schema, hints.YColumns, hints.YSubstrings)

	if hints.MinColumns > 0 && len(schema) >= hints.MinColumns {
		if x == "" {
			x = columnAt(schema, hints.XFallback)
		}
		if y == "" {
			y = columnAt(schema, hints.YFallback)
		}
	}

	if x == "" || y == "" || x == y {
		return "", "", false
	}
	return x, y, true
}

// BuildSeries extracts chart points from a result according to a spec.
// Rows whose value cannot be read as a number are dropped, matching the
// tolerant conversion the result views apply before plotting.
func BuildSeries(result *models.ExecutionResult, spec ChartSpec) (*Series, error) {
	if result == nil || result.RowCount() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest, "no rows to chart")
	}

	xCol, yCol, ok := InferColumns(result.Columns, spec.Hints)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest,
			fmt.Sprintf("could not identify chart columns for %q", spec.Title))
	}

	series := &Series{
		Title:  spec.Title,
		Kind:   spec.Kind,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
	}

	for _, row := range result.Rows {
		value, ok := chartValue(row[yCol])
		if !ok {
			continue
		}
		series.Labels = append(series.Labels, converter.ToString(row[xCol]))
		series.Values = append(series.Values, value)
	}
	if len(series.Values) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRequest,
			fmt.Sprintf("no numeric data in column %q", yCol))
	}

	if spec.Aggregate {
		aggregateSeries(series)
	}
	if spec.SortByX {
		sortSeriesByLabel(series)
	}
	if spec.SortDesc {
		sortSeriesByValue(series)
	}
	if spec.Limit > 0 && len(series.Values) > spec.Limit {
		truncateSeries(series, spec.Limit, spec.GroupOthers)
	}

	return series, nil
}

func matchColumn(schema []string, exact, substrings []string) string {
	for _, want := range exact {
		for _, col := range schema {
			if strings.EqualFold(col, want) {
				return col
			}
		}
	}
	for _, col := range schema {
		lower := strings.ToLower(col)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				return col
			}
		}
	}
	return ""
}

func columnAt(schema []string, idx int) string {
	if idx < 0 {
		idx = len(schema) + idx
	}
	if idx < 0 || idx >= len(schema) {
		return ""
	}
	return schema[idx]
}

// chartValue reads a cell as a number, stripping the currency formatting
// that revenue columns sometimes carry.
func chartValue(value interface{}) (float64, bool) {
	if s, isString := value.(string); isString {
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, "$", "")
		return converter.ToFloat(strings.TrimSpace(s))
	}
	return converter.ToFloat(value)
}

// aggregateSeries sums values per distinct label, keeping first-encounter
// label order.
func aggregateSeries(series *Series) {
	totals := make(map[string]float64, len(series.Labels))
	var order []string
	for i, label := range series.Labels {
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += series.Values[i]
	}

	series.Labels = order
	series.Values = make([]float64, len(order))
	for i, label := range order {
		series.Values[i] = totals[label]
	}
}

func sortSeriesByValue(series *Series) {
	idx := sortedIndexes(len(series.Values), func(a, b int) bool {
		return series.Values[a] > series.Values[b]
	})
	reorderSeries(series, idx)
}

// sortSeriesByLabel orders points by label, numerically when both labels
// parse as numbers.
func sortSeriesByLabel(series *Series) {
	idx := sortedIndexes(len(series.Labels), func(a, b int) bool {
		la, lb := series.Labels[a], series.Labels[b]
		na, errA := strconv.ParseFloat(la, 64)
		nb, errB := strconv.ParseFloat(lb, 64)
		if errA == nil && errB == nil {
			return na < nb
		}
		return la < lb
	})
	reorderSeries(series, idx)
}

func sortedIndexes(n int, less func(a, b int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}

func reorderSeries(series *Series, idx []int) {
	labels := make([]string, len(idx))
	values := make([]float64, len(idx))
	for i, j := range idx {
		labels[i] = series.Labels[j]
		values[i] = series.Values[j]
	}
	series.Labels = labels
	series.Values = values
}

func truncateSeries(series *Series, limit int, groupOthers bool) {
	if !groupOthers {
		series.Labels = series.Labels[:limit]
		series.Values = series.Values[:limit]
		return
	}

	var rest float64
	for _, v := range series.Values[limit:] {
		rest += v
	}
	series.Labels = append(series.Labels[:limit], "Others")
	series.Values = append(series.Values[:limit], rest)
}
