// Package trace parses MySQL optimizer traces into human-readable
// access-plan summaries.
//
// Trace layouts vary across server versions, so extraction is best-effort:
// unrecognized shapes degrade to sentinel labels instead of failing the
// benchmark that produced them.
package trace

import (
	"bytes"
	"encoding/json"
	"strings"

	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/models"
)

const (
	// LabelUnknown is the strategy label when no trace payload was captured.
	LabelUnknown = "Unknown"

	// LabelNotFound is the strategy label when a payload parses but carries
	// no recognizable access annotations.
	LabelNotFound = "Information not found in trace"
)

// TableAccess is one per-table access method chosen by the planner.
type TableAccess struct {
	Table      string `json:"table"`
	AccessType string `json:"access_type"`
}

func (a TableAccess) String() string {
	return a.Table + ": " + a.AccessType
}

// ExtractStrategy summarizes the access methods in a trace as a single
// label, one "table: access_type" pair per annotation in encounter order.
// A missing payload yields LabelUnknown; a payload without annotations,
// or one that cannot be parsed, yields LabelNotFound.
func ExtractStrategy(t *models.OptimizerTrace) string {
	if t.Empty() {
		return LabelUnknown
	}

	accesses, err := TableAccesses(t)
	if err != nil || len(accesses) == 0 {
		return LabelNotFound
	}

	parts := make([]string, len(accesses))
	for i, access := range accesses {
		parts[i] = access.String()
	}
	return strings.Join(parts, ", ")
}

// TableAccesses walks the trace payload and returns every per-table access
// annotation it recognizes. The walk covers the two sections the server
// writes them to: join_preparation table lists and the plans considered
// during join optimization.
func TableAccesses(t *models.OptimizerTrace) ([]TableAccess, error) {
	if t.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeTraceParse, "no optimizer trace payload captured")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(t.Trace, &doc); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeTraceParse, "optimizer trace is not valid JSON")
	}

	var accesses []TableAccess
	for _, rawStep := range asSlice(doc["steps"]) {
		step, ok := asMap(rawStep)
		if !ok {
			continue
		}

		if prep, ok := asMap(step["join_preparation"]); ok {
			for _, rawTable := range asSlice(prep["tables"]) {
				if table, ok := asMap(rawTable); ok {
					if access, ok := accessFrom(table, "table"); ok {
						accesses = append(accesses, access)
					}
				}
			}
		}

		if opt, ok := asMap(step["join_optimization"]); ok {
			for _, rawPlan := range asSlice(opt["considered_execution_plans"]) {
				candidate, ok := asMap(rawPlan)
				if !ok {
					continue
				}
				plan, ok := asMap(candidate["plan"])
				if !ok {
					continue
				}
				if table, ok := asMap(plan["table"]); ok {
					if access, ok := accessFrom(table, "table_name"); ok {
						accesses = append(accesses, access)
					}
				}
			}
		}
	}

	return accesses, nil
}

// Format renders the trace payload as indented JSON for trace panels and
// exports. Byte-level indentation keeps the server's key order. A payload
// that is not valid JSON is returned raw behind an explanatory header.
func Format(t *models.OptimizerTrace) string {
	if t.Empty() {
		return LabelUnknown
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, t.Trace, "", "  "); err != nil {
		return "trace payload is not valid JSON:\n" + string(t.Trace)
	}
	return buf.String()
}

// accessFrom reads one access annotation from a table node. An annotation
// exists only when access_type is present; a missing name degrades to
// LabelUnknown rather than dropping the entry.
func accessFrom(table map[string]interface{}, nameKey string) (TableAccess, bool) {
	accessType, ok := asString(table["access_type"])
	if !ok {
		return TableAccess{}, false
	}
	name, ok := asString(table[nameKey])
	if !ok {
		name = LabelUnknown
	}
	return TableAccess{Table: name, AccessType: accessType}, true
}

func asSlice(value interface{}) []interface{} {
	slice, _ := value.([]interface{})
	return slice
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	m, ok := value.(map[string]interface{})
	return m, ok
}

func asString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}
