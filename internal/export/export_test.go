package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maayanb/amuta-ledger/internal/domain"
	"github.com/maayanb/amuta-ledger/internal/service"
)

func TestWrite(t *testing.T) {
	txs := []domain.Transaction{
		{
			ID:            "tx-1",
			Type:          domain.TypeExpense,
			Name:          "Acme",
			Amount:        150,
			Date:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			InvoiceNumber: "INV-1",
			Files:         map[string]string{"invoice": "https://drive.google.com/uc?id=f1"},
		},
		{
			ID:            "tx-2",
			Type:          domain.TypeIncome,
			Name:          "Foundation",
			Amount:        500,
			Date:          time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			ReceiptNumber: "RCP-1",
		},
	}
	sum := service.Summary{TotalIncome: 500, TotalExpenses: 150, Balance: 350}

	var buf bytes.Buffer
	if err := Write(&buf, txs, sum); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	get := func(cell string) string {
		t.Helper()
		v, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		return v
	}

	if got := get("A1"); got != "ID" {
		t.Errorf("A1 = %q, want header", got)
	}
	if got := get("C2"); got != "Acme" {
		t.Errorf("C2 = %q", got)
	}
	if got := get("D2"); got != "150" {
		t.Errorf("D2 = %q", got)
	}
	if got := get("B3"); got != "income" {
		t.Errorf("B3 = %q", got)
	}

	// Summary block sits two rows below the data: rows 5..7.
	if got := get("A5"); got != "Total income" {
		t.Errorf("A5 = %q", got)
	}
	if got := get("B7"); got != "350" {
		t.Errorf("B7 = %q", got)
	}
}

func TestWrite_EmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, service.Summary{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(sheetName, "A3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "Total income" {
		t.Errorf("A3 = %q, want summary label directly below header", v)
	}
}
