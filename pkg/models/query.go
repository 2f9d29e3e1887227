// Package models provides data structures used throughout the encore toolkit.
package models

import "fmt"

// ParamType identifies the declared type of a catalog query parameter.
type ParamType string

const (
	// ParamTypeInt is a base-10 integer parameter.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat is a decimal parameter.
	ParamTypeFloat ParamType = "float"
	// ParamTypeDate is a calendar date parameter in YYYY-MM-DD form.
	ParamTypeDate ParamType = "date"
	// ParamTypeString is a free-text parameter.
	ParamTypeString ParamType = "string"
)

// ParamSpec describes one positional parameter of a catalog query.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// QuerySpec is one entry of the fixed query catalog. Specs are defined at
// process start and never mutated.
type QuerySpec struct {
	ID string `json:"id"`
	// Number is the catalog ordinal, usable as a lookup alias for ID.
	Number      int               `json:"number"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	SQL         string            `json:"-"`
	Variants    map[string]string `json:"-"`
	Params      []ParamSpec       `json:"params,omitempty"`
	// Special marks queries that ship hinted variants for plan comparison.
	Special bool `json:"special,omitempty"`
	// JoinComparison marks queries eligible for the join-strategy sweep.
	JoinComparison bool `json:"join_comparison,omitempty"`
}

// HasVariant reports whether the spec defines the named variant.
func (q *QuerySpec) HasVariant(name string) bool {
	_, ok := q.Variants[name]
	return ok
}

// DisplayName returns the numbered title used in listings and export
// headers, for example "4. Artist Average Ratings".
func (q *QuerySpec) DisplayName() string {
	return fmt.Sprintf("%d. %s", q.Number, q.Title)
}
