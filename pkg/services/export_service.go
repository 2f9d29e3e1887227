package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TFMV/encore/pkg/catalog"
	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/export"
	"github.com/TFMV/encore/pkg/models"
	"github.com/TFMV/encore/pkg/repositories"
)

// exportService writes the audit export: the statement and a result
// snapshot per catalog query, plus the optimized pair for special queries.
type exportService struct {
	catalog *catalog.Catalog
	gateway repositories.QueryGateway
	logger  Logger
	metrics MetricsCollector
}

// NewExportService creates a new export service.
func NewExportService(
	cat *catalog.Catalog,
	gateway repositories.QueryGateway,
	logger Logger,
	metrics MetricsCollector,
) ExportService {
	return &exportService{
		catalog: cat,
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
	}
}

// ExportQuery writes Q<nn>.sql and Q<nn>_out.txt for a catalog query into
// dir, then the optimized pair when the query is special, has a with_index
// variant, and the regular run returned rows. It returns the paths written.
// On failure the files written so far stay on disk.
func (s *exportService) ExportQuery(ctx context.Context, queryID string, rawParams []string, dir string) ([]string, error) {
	timer := s.metrics.StartTimer("query_export")
	defer timer.Stop()

	spec, args, err := s.resolve(queryID, rawParams)
	if err != nil {
		return nil, err
	}

	if err := export.EnsureDir(dir); err != nil {
		s.metrics.IncrementCounter("export_errors")
		return nil, err
	}

	sqlFile, outFile, optSQLFile, optOutFile := export.FileNames(spec.Number)
	params := paramComment(spec, rawParams)

	var written []string

	sqlPath := filepath.Join(dir, sqlFile)
	header := fmt.Sprintf("-- Query %d: %s\n\n", spec.Number, spec.ID) + params
	if err := export.WriteSQL(sqlPath, header, spec.SQL); err != nil {
		s.metrics.IncrementCounter("export_errors")
		return written, err
	}
	written = append(written, sqlPath)

	result, err := s.gateway.Run(ctx, spec.SQL, args...)
	if err != nil {
		s.metrics.IncrementCounter("export_errors")
		s.logger.Error("Query execution failed during export",
			"query_id", spec.ID,
			"error", err,
		)
		return written, err
	}

	outPath := filepath.Join(dir, outFile)
	outHeader := fmt.Sprintf("-- Results for Query %d: %s\n\n", spec.Number, spec.ID) + params
	if err := export.WriteSnapshot(outPath, outHeader, result); err != nil {
		s.metrics.IncrementCounter("export_errors")
		return written, err
	}
	written = append(written, outPath)

	if result.RowCount() > 0 && spec.Special && spec.HasVariant(catalog.VariantWithIndex) {
		variantSQL := spec.Variants[catalog.VariantWithIndex]

		optSQLPath := filepath.Join(dir, optSQLFile)
		optHeader := fmt.Sprintf("-- Optimized version of Query %d: %s\n\n", spec.Number, spec.ID) + params
		if err := export.WriteSQL(optSQLPath, optHeader, variantSQL); err != nil {
			s.metrics.IncrementCounter("export_errors")
			return written, err
		}
		written = append(written, optSQLPath)

		optResult, err := s.gateway.Run(ctx, variantSQL, args...)
		switch {
		case err != nil:
			s.logger.Warn("Optimized query failed during export",
				"query_id", spec.ID,
				"error", err,
			)
		case optResult.RowCount() > 0:
			optOutPath := filepath.Join(dir, optOutFile)
			optOutHeader := fmt.Sprintf("-- Results for Optimized Query %d: %s\n\n", spec.Number, spec.ID) + params
			if err := export.WriteSnapshot(optOutPath, optOutHeader, optResult); err != nil {
				s.metrics.IncrementCounter("export_errors")
				return written, err
			}
			written = append(written, optOutPath)
		}
	}

	s.metrics.IncrementCounter("query_exports_total")
	s.logger.Info("Exported catalog query",
		"query_id", spec.ID,
		"dir", dir,
		"files", len(written),
	)
	return written, nil
}

// ExportResult writes a single result in the format implied by the file
// extension: .csv, .xlsx, or aligned text.
func (s *exportService) ExportResult(result *models.ExecutionResult, path string) error {
	if result == nil {
		return pkgerrors.New(pkgerrors.CodeInvalidRequest, "no result to export")
	}

	if err := export.WriteResult(path, result); err != nil {
		s.metrics.IncrementCounter("export_errors")
		return err
	}

	s.metrics.IncrementCounter("result_exports_total")
	s.logger.Info("Exported result",
		"path", path,
		"rows", result.RowCount(),
	)
	return nil
}

func (s *exportService) resolve(queryID string, rawParams []string) (*models.QuerySpec, []interface{}, error) {
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

// paramComment renders the entered parameter values as a comment block.
// Arity is already validated, so raw values pair up with the declared
// parameter names.
func paramComment(spec *models.QuerySpec, rawParams []string) string {
	if len(spec.Params) == 0 {
		return ""
	}
	pairs := make([]string, len(spec.Params))
	for i, param := range spec.Params {
		pairs[i] = fmt.Sprintf("%s=%s", param.Name, rawParams[i])
	}
	return fmt.Sprintf("-- Parameters: %s\n\n", strings.Join(pairs, ", "))
}
