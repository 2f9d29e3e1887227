// Package catalog defines the fixed analytical query set of the encore
// toolkit. Every statement targets the festival schema and is addressed by a
// stable ID or its catalog ordinal.
package catalog

import (
	"fmt"
	"strconv"

	"github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/models"
)

// Catalog resolves query specs by ID or ordinal. The set is fixed at process
// start and lookups never mutate it.
type Catalog struct {
	ordered []*models.QuerySpec
	byID    map[string]*models.QuerySpec
}

// New builds the catalog from the built-in query set.
func New() *Catalog {
	c := &Catalog{
		ordered: specs,
		byID:    make(map[string]*models.QuerySpec, 2*len(specs)),
	}
	for _, spec := range specs {
		c.byID[spec.ID] = spec
		c.byID[strconv.Itoa(spec.Number)] = spec
	}
	return c
}

// List returns all query specs in catalog order.
func (c *Catalog) List() []*models.QuerySpec {
	out := make([]*models.QuerySpec, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Get resolves a spec by ID or ordinal.
func (c *Catalog) Get(id string) (*models.QuerySpec, error) {
	spec, ok := c.byID[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("query %q not found in catalog", id)).
			WithDetail("query_id", id)
	}
	return spec, nil
}

// Statement returns the baseline SQL of a query.
func (c *Catalog) Statement(id string) (string, error) {
	spec, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return spec.SQL, nil
}

// Variant returns the named hinted rewrite of a query. Unknown queries and
// unknown variants both resolve to not-found errors, distinguished by the
// error message and details.
func (c *Catalog) Variant(id, variant string) (string, error) {
	spec, err := c.Get(id)
	if err != nil {
		return "", err
	}
	sql, ok := spec.Variants[variant]
	if !ok {
		return "", errors.New(errors.CodeNotFound,
			fmt.Sprintf("query %q has no variant %q", spec.ID, variant)).
			WithDetail("query_id", spec.ID).
			WithDetail("variant", variant)
	}
	return sql, nil
}
