// Package export writes query results and catalog statements to files:
// CSV, XLSX, aligned text, and the commented SQL audit files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/TFMV/encore/pkg/errors"
	"github.com/TFMV/encore/pkg/infrastructure/converter"
	"github.com/TFMV/encore/pkg/models"
	"github.com/TFMV/encore/pkg/present"
)

// EmptyResultNotice is written in place of a table when a snapshot has no
// rows.
const EmptyResultNotice = "No results returned."

// WriteResult writes a result in the format implied by the file extension:
// .csv, .xlsx, or aligned text for anything else.
func WriteResult(path string, result *models.ExecutionResult) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV(path, result)
	case ".xlsx":
		return WriteXLSX(path, result)
	default:
		return WriteText(path, result)
	}
}

// WriteCSV writes a result as a CSV file with a header row.
func WriteCSV(path string, result *models.ExecutionResult) error {
	if result == nil {
		return pkgerrors.New(pkgerrors.CodeExportFailed, "no result to export")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(result.Columns); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to encode CSV header")
	}
	for _, row := range result.Rows {
		record := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			record[i] = converter.ToString(row[col])
		}
		if err := w.Write(record); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to encode CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to encode CSV")
	}

	return writeFile(path, buf.Bytes())
}

// WriteXLSX writes a result as an XLSX workbook with a header row and typed
// cells on the default sheet.
func WriteXLSX(path string, result *models.ExecutionResult) error {
	if result == nil {
		return pkgerrors.New(pkgerrors.CodeExportFailed, "no result to export")
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	for i, col := range result.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to address XLSX header cell")
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to write XLSX header cell")
		}
	}
	for r, row := range result.Rows {
		for c, col := range result.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to address XLSX cell")
			}
			if err := f.SetCellValue(sheet, cell, row[col]); err != nil {
				return pkgerrors.Wrap(err, pkgerrors.CodeExportFailed, "failed to write XLSX cell")
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CodeExportFailed, "failed to save %s", path)
	}
	return nil
}

// WriteText writes a result as an aligned text table.
func WriteText(path string, result *models.ExecutionResult) error {
	if result == nil {
		return pkgerrors.New(pkgerrors.CodeExportFailed, "no result to export")
	}
	return writeFile(path, []byte(present.RenderTable(result)))
}

// WriteSQL writes a statement with a commented header block. Surrounding
// whitespace is trimmed and the statement ends with a single newline.
func WriteSQL(path, header, statement string) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString(strings.TrimSpace(statement))
	buf.WriteString("\n")
	return writeFile(path, buf.Bytes())
}

// WriteSnapshot writes a commented header block followed by the result as
// an aligned table, or by the empty-result notice when no rows came back.
func WriteSnapshot(path, header string, result *models.ExecutionResult) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	if result == nil || result.RowCount() == 0 {
		buf.WriteString(EmptyResultNotice)
		buf.WriteString("\n")
	} else {
		buf.WriteString(present.RenderTable(result))
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CodeExportFailed, "failed to write %s", path)
	}
	return nil
}

// EnsureDir creates the export directory tree when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CodeExportFailed, "failed to create export directory %s", dir)
	}
	return nil
}

// FileNames returns the audit-export file names for a catalog query number:
// the statement file, its snapshot, and the optimized pair.
func FileNames(number int) (sqlFile, outFile, optimizedSQLFile, optimizedOutFile string) {
	sqlFile = fmt.Sprintf("Q%02d.sql", number)
	outFile = fmt.Sprintf("Q%02d_out.txt", number)
	optimizedSQLFile = fmt.Sprintf("Q%02d_optimized.sql", number)
	optimizedOutFile = fmt.Sprintf("Q%02d_optimized_out.txt", number)
	return sqlFile, outFile, optimizedSQLFile, optimizedOutFile
}
