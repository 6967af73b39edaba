// Package export renders transaction lists as spreadsheet downloads.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/models"
)

// SheetName is the name of the worksheet holding the transactions.
const SheetName = "Transactions"

// ContentTypeXLSX is the media type of the workbook written by TransactionsXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Date", "Description", "Category", "Type", "Payment Method", "Amount", "Receipt"}

// TransactionsXLSX writes txs as a single-sheet workbook to w, one row per
// transaction in the given order.
func TransactionsXLSX(w io.Writer, txs []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for idx, tx := range txs {
		row := idx + 2

		category, categoryType := "", ""
		if tx.Category != nil {
			category = tx.Category.Name
			categoryType = string(tx.Category.Type)
		}
		receipt := ""
		if tx.Receipt != nil {
			receipt = *tx.Receipt
		}

		values := []interface{}{
			tx.Date.String(),
			tx.Description,
			category,
			categoryType,
			string(tx.PaymentMethod),
			tx.Amount.Decimal().InexactFloat64(),
			receipt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}

		amountCell, _ := excelize.CoordinatesToCellName(6, row)
		if err := f.SetCellStyle(SheetName, amountCell, amountCell, amountStyle); err != nil {
			return fmt.Errorf("style row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 12)
	_ = f.SetColWidth(SheetName, "B", "B", 30)
	_ = f.SetColWidth(SheetName, "C", "C", 20)
	_ = f.SetColWidth(SheetName, "D", "E", 15)
	_ = f.SetColWidth(SheetName, "F", "F", 14)
	_ = f.SetColWidth(SheetName, "G", "G", 30)

	return f.Write(w)
}
