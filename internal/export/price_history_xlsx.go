// Package export renders ledger data as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

const (
	ChangesSheet = "Price Changes"
	BulkSheet    = "Bulk Updates"
)

var (
	changesHeader = []any{"Changed At", "Product ID", "SKU", "Product", "Previous Price", "New Price", "Reason", "Rule ID", "Bulk Update ID", "Changed By"}
	bulkHeader    = []any{"Created At", "Bulk Update ID", "Adjustment Type", "Adjustment Value", "Apply To", "Targets", "Affected", "Created By", "Reverted", "Reverted At"}
)

// PriceHistoryXLSX writes recent price changes and bulk updates to a
// two-sheet workbook and returns the encoded file.
func PriceHistoryXLSX(changes []models.PriceChange, bulk []models.BulkPriceUpdate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ChangesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(BulkSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, ChangesSheet, 1, changesHeader); err != nil {
		return nil, err
	}
	for i, c := range changes {
		row := []any{
			c.CreatedAt.UTC().Format(time.RFC3339),
			c.ProductID,
			c.ProductSKU,
			c.ProductName,
			c.PreviousPrice.StringFixed(2),
			c.NewPrice.StringFixed(2),
			string(c.ChangeReason),
			deref(c.RuleID),
			deref(c.BulkUpdateID),
			c.ChangedBy,
		}
		if err := writeRow(f, ChangesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, BulkSheet, 1, bulkHeader); err != nil {
		return nil, err
	}
	for i, b := range bulk {
		revertedAt := ""
		if b.RevertedAt != nil {
			revertedAt = b.RevertedAt.UTC().Format(time.RFC3339)
		}
		row := []any{
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.ID,
			string(b.AdjustmentType),
			b.AdjustmentValue.String(),
			string(b.ApplyTo),
			strings.Join(b.TargetIDs, ", "),
			b.AffectedCount,
			b.CreatedBy,
			b.IsReverted,
			revertedAt,
		}
		if err := writeRow(f, BulkSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
