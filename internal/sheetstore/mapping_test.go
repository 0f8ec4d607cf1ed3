package sheetstore

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRowToTransaction(t *testing.T) {
	row := []any{
		"tx-1", "expense", "Acme", "150.5", "2024-01-10T00:00:00Z",
		"INV-1", "", "office supplies",
		"https://drive.google.com/uc?id=f1", "", "", "https://drive.google.com/uc?id=f2", "",
		"2024-01-10T08:00:00Z", "2024-01-11T08:00:00Z",
	}

	tx := rowToTransaction(row, testNow)

	if tx.ID != "tx-1" || tx.Type != domain.TypeExpense || tx.Name != "Acme" {
		t.Errorf("unexpected identity fields: %+v", tx)
	}
	if tx.Amount != 150.5 {
		t.Errorf("Amount = %v", tx.Amount)
	}
	if !tx.Date.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", tx.Date)
	}
	if tx.InvoiceNumber != "INV-1" || tx.ReceiptNumber != "" {
		t.Errorf("number fields = %q / %q", tx.InvoiceNumber, tx.ReceiptNumber)
	}
	if len(tx.Files) != 2 {
		t.Fatalf("Files = %v", tx.Files)
	}
	if tx.Files["invoice"] != "https://drive.google.com/uc?id=f1" ||
		tx.Files["bankTransfer"] != "https://drive.google.com/uc?id=f2" {
		t.Errorf("Files = %v", tx.Files)
	}
}

func TestRowToTransaction_Normalization(t *testing.T) {
	// Malformed stored amount and date come back as 0 and now rather than
	// failing the read.
	row := []any{"tx-2", "income", "Donor", "abc", "not-a-date", "", "RCP-1", "", "", "", "", "", "", "", ""}

	tx := rowToTransaction(row, testNow)

	if tx.Amount != 0 {
		t.Errorf("Amount = %v, want 0", tx.Amount)
	}
	if !tx.Date.Equal(testNow) {
		t.Errorf("Date = %v, want fallback %v", tx.Date, testNow)
	}
	if tx.Files != nil {
		t.Errorf("Files = %v, want nil", tx.Files)
	}
}

func TestRowToTransaction_ShortRow(t *testing.T) {
	// Trailing empty cells are omitted by the API; mapping must tolerate it.
	tx := rowToTransaction([]any{"tx-3", "income", "Donor", "10"}, testNow)

	if tx.ID != "tx-3" || tx.Amount != 10 {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if tx.Description != "" || tx.Files != nil {
		t.Errorf("expected empty tail fields, got %+v", tx)
	}
}

func TestTransactionRowRoundTrip(t *testing.T) {
	tx := domain.Transaction{
		ID:            "tx-4",
		Type:          domain.TypeIncome,
		Name:          "Foundation",
		Amount:        1200,
		Date:          time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
		ReceiptNumber: "RCP-7",
		Description:   "annual grant",
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	tx.SetFileURL("receipt", "https://drive.google.com/uc?id=r1")

	row := transactionToRow(tx)
	if len(row) != len(Header) {
		t.Fatalf("row has %d cells, want %d", len(row), len(Header))
	}
	// Absent slots are stored as empty strings, not omitted.
	if row[colInvoice] != "" || row[colReceipt] != "https://drive.google.com/uc?id=r1" {
		t.Errorf("file cells = %v / %v", row[colInvoice], row[colReceipt])
	}

	back := rowToTransaction(row, testNow)
	if back.ID != tx.ID || back.Amount != tx.Amount || !back.Date.Equal(tx.Date) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, tx)
	}
	if back.Files["receipt"] != tx.Files["receipt"] {
		t.Errorf("round trip files mismatch: %v", back.Files)
	}
}

func TestIsQuota(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", &googleapi.Error{Code: 429}, true},
		{"rate limit reason", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}, true},
		{"quota text", errors.New("Quota exceeded for quota metric 'Read requests'"), true},
		{"resource exhausted", errors.New("rpc error: code = RESOURCE_EXHAUSTED"), true},
		{"sentinel", domain.ErrQuotaExceeded, true},
		{"plain 500", &googleapi.Error{Code: 500}, false},
		{"other error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuota(tt.err); got != tt.want {
				t.Errorf("IsQuota(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
