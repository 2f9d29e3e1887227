// Package converter translates database result sets into domain results.
package converter

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/models"
)

// RowConverter drains sql.Rows into column-ordered execution results.
type RowConverter interface {
	// CollectRows materializes the full result set. The caller keeps
	// ownership of rows and must close them.
	CollectRows(rows *sql.Rows) (*models.ExecutionResult, error)
}

type rowConverter struct {
	logger zerolog.Logger
}

// New creates a new row converter.
func New(logger zerolog.Logger) RowConverter {
	return &rowConverter{logger: logger}
}

func (c *rowConverter) CollectRows(rows *sql.Rows) (*models.ExecutionResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to read result columns")
	}

	result := &models.ExecutionResult{Columns: columns}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to scan result row")
		}

		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = NormalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed while iterating result rows")
	}

	c.logger.Debug().
		Int("rows", len(result.Rows)).
		Int("columns", len(columns)).
		Msg("Collected result set")

	return result, nil
}

// NormalizeValue maps raw driver values to presentation-friendly Go types.
// The MySQL driver hands back []byte for most textual and numeric columns.
func NormalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		return string(v)
	default:
		return value
	}
}

// ToFloat coerces a cell value to float64. The second return reports whether
// the value was numeric; charts use this to pick plottable columns.
func ToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	default:
		return 0, false
	}
}

// ToString renders a cell value for tabular and file output. Nil becomes the
// empty string, dates keep their date-only form.
func ToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
