// Package services contains business logic implementations.
package services

import (
	"context"

	"github.com/TFMV/encore/pkg/catalog"
	"github.com/TFMV/encore/pkg/models"
	"github.com/TFMV/encore/pkg/repositories"
)

// queryService implements QueryService on the catalog and gateway.
type queryService struct {
	catalog *catalog.Catalog
	gateway repositories.QueryGateway
	logger  Logger
	metrics MetricsCollector
}

// NewQueryService creates a new query service.
func NewQueryService(
	cat *catalog.Catalog,
	gateway repositories.QueryGateway,
	logger Logger,
	metrics MetricsCollector,
) QueryService {
	return &queryService{
		catalog: cat,
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
	}
}

// List returns every catalog query in display order.
func (s *queryService) List() []*models.QuerySpec {
	return s.catalog.List()
}

// Describe returns the spec for one catalog query.
func (s *queryService) Describe(queryID string) (*models.QuerySpec, error) {
	return s.catalog.Get(queryID)
}

// Run executes a catalog query with validated parameters.
func (s *queryService) Run(ctx context.Context, queryID string, rawParams []string) (*models.ExecutionResult, error) {
	timer := s.metrics.StartTimer("catalog_query_run")
	defer timer.Stop()

	spec, args, err := s.resolve(queryID, rawParams)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Running catalog query", "query_id", spec.ID, "params", len(args))

	result, err := s.gateway.Run(ctx, spec.SQL, args...)
	if err != nil {
		s.metrics.IncrementCounter("catalog_query_errors")
		s.logger.Error("Catalog query failed", "error", err, "query_id", spec.ID)
		return nil, err
	}

	s.metrics.IncrementCounter("catalog_queries_total")
	s.logger.Info("Catalog query executed",
		"query_id", spec.ID,
		"rows", result.RowCount(),
		"elapsed", result.Elapsed)

	return result, nil
}

// RunTraced executes a catalog query with the optimizer trace captured.
func (s *queryService) RunTraced(ctx context.Context, queryID string, rawParams []string) (*models.ExecutionResult, error) {
	timer := s.metrics.StartTimer("catalog_query_run_traced")
	defer timer.Stop()

	spec, args, err := s.resolve(queryID, rawParams)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Running traced catalog query", "query_id", spec.ID, "params", len(args))

	result, err := s.gateway.RunTraced(ctx, spec.SQL, args...)
	if err != nil {
		s.metrics.IncrementCounter("catalog_query_errors")
		s.logger.Error("Traced catalog query failed", "error", err, "query_id", spec.ID)
		return nil, err
	}

	s.metrics.IncrementCounter("catalog_traced_queries_total")
	s.logger.Info("Traced catalog query executed",
		"query_id", spec.ID,
		"rows", result.RowCount(),
		"traced", result.Trace != nil,
		"elapsed", result.Elapsed)

	return result, nil
}

// resolve looks up a query and converts its raw parameters. Conversion
// failures never reach the gateway.
func (s *queryService) resolve(queryID string, rawParams []string) (*models.QuerySpec, []interface{}, error) {
	spec, err := s.catalog.Get(queryID)
	if err != nil {
		s.metrics.IncrementCounter("catalog_lookup_errors")
		return nil, nil, err
	}

	args, err := catalog.ConvertParams(spec, rawParams)
	if err != nil {
		s.metrics.IncrementCounter("parameter_validation_errors")
		return nil, nil, err
	}

	return spec, args, nil
}
