// Package spreadsheet reads incident exports from xlsx workbooks.
package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/intake"
	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
	"safetyops/internal/ports"
)

// DefaultSheet is the export's data sheet name.
const DefaultSheet = "query"

// ExcelReader implements ports.WorkbookReader with excelize. Cells are read
// raw so dates arrive as serial numbers rather than locale-formatted text.
type ExcelReader struct{}

var _ ports.WorkbookReader = (*ExcelReader)(nil)

func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

func (r *ExcelReader) ReadSheet(ctx context.Context, data []byte, preferred string) (intake.Sheet, error) {
	if ctx == nil {
		return intake.Sheet{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return intake.Sheet{}, errs.Wrap(err, "check context")
	}
	if len(data) == 0 {
		return intake.Sheet{}, safety.ErrEmptyWorkbook
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return intake.Sheet{}, errs.Wrap(err, "open workbook")
	}
	defer func() {
		_ = f.Close()
	}()

	if strings.TrimSpace(preferred) == "" {
		preferred = DefaultSheet
	}
	name, ok := SelectSheet(f.GetSheetList(), preferred)
	if !ok {
		return intake.Sheet{}, safety.ErrEmptyWorkbook
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return intake.Sheet{}, errs.Wrapf(err, "read sheet %q", name)
	}

	sheet := intake.Sheet{Name: name}
	header := -1
	for i, row := range rows {
		if !blank(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return sheet, nil
	}
	sheet.Header = rows[header]
	for _, row := range rows[header+1:] {
		if blank(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	logging.Debug(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.spreadsheet")),
		"sheet read",
		slog.String("sheet", name),
		slog.Int("columns", len(sheet.Header)),
		slog.Int("rows", len(sheet.Rows)),
	)
	return sheet, nil
}

// SelectSheet picks the sheet named preferred, then the first whose name
// contains it, then the first sheet.
func SelectSheet(names []string, preferred string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	want := normalize.Canonical(preferred)
	for _, n := range names {
		if normalize.Canonical(n) == want {
			return n, true
		}
	}
	for _, n := range names {
		if want != "" && strings.Contains(normalize.Canonical(n), want) {
			return n, true
		}
	}
	return names[0], true
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
