package ports

import (
	"context"

	"safetyops/internal/domain/intake"
)

// WorkbookReader extracts one sheet from a binary workbook. preferred names
// the sheet to look for first; empty means the default selection.
type WorkbookReader interface {
	ReadSheet(ctx context.Context, data []byte, preferred string) (intake.Sheet, error)
}
