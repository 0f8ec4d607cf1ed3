// Package export renders the filtered ledger as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maayanb/amuta-ledger/internal/domain"
	"github.com/maayanb/amuta-ledger/internal/service"
)

const sheetName = "Transactions"

var columns = []string{
	"ID", "Type", "Name", "Amount", "Date",
	"Invoice number", "Receipt number", "Description", "Attachments",
}

// Write renders the transactions and their summary into an xlsx workbook
// and writes it to w. The transactions are expected already filtered and
// sorted by the service.
func Write(w io.Writer, txs []domain.Transaction, sum service.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, tx := range txs {
		values := []any{
			tx.ID,
			string(tx.Type),
			tx.Name,
			tx.Amount,
			tx.Date.UTC().Format(time.RFC3339),
			tx.InvoiceNumber,
			tx.ReceiptNumber,
			tx.Description,
			len(tx.Files),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", rowIdx+2, err)
			}
		}
	}

	// Summary block two rows below the data.
	summaryRow := len(txs) + 3
	summary := [][]any{
		{"Total income", sum.TotalIncome},
		{"Total expenses", sum.TotalExpenses},
		{"Balance", sum.Balance},
	}
	for i, pair := range summary {
		labelCell, err := excelize.CoordinatesToCellName(1, summaryRow+i)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(2, summaryRow+i)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, labelCell, pair[0]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		if err := f.SetCellValue(sheetName, valueCell, pair[1]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
