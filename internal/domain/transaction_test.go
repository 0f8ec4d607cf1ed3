package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"150", 150},
		{"150.75", 150.75},
		{" 42.5 ", 42.5},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"+Inf", 0},
		{"12,5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseAmount(tt.input); got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-01-10T00:00:00Z", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 with offset", "2024-01-10T02:00:00+02:00", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"date only", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"garbage falls back", "not-a-date", fallback},
		{"empty falls back", "", fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input, fallback); !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileSlots(t *testing.T) {
	for _, slot := range []string{"invoice", "receipt", "taxInvoice", "bankTransfer", "taxReceipt"} {
		if !IsFileSlot(slot) {
			t.Errorf("expected %q to be a file slot", slot)
		}
	}
	if IsFileSlot("contract") {
		t.Error("unexpected slot accepted")
	}
}

func TestSetFileURL(t *testing.T) {
	var tx Transaction

	tx.SetFileURL("invoice", "https://example.com/a")
	if got := tx.FileURL("invoice"); got != "https://example.com/a" {
		t.Fatalf("FileURL = %q", got)
	}

	// Clearing the last slot drops the map so serialization omits it.
	tx.SetFileURL("invoice", "")
	if tx.Files != nil {
		t.Errorf("expected nil Files after clearing last slot, got %v", tx.Files)
	}
}

func TestTransactionJSON_OmitsEmptyFiles(t *testing.T) {
	tx := Transaction{ID: "t1", Type: TypeExpense, Name: "Acme", Amount: 150}

	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "\"files\"") {
		t.Errorf("expected files to be omitted when empty: %s", raw)
	}
}

func TestTransactionInputValidate(t *testing.T) {
	valid := TransactionInput{Name: "Acme", Amount: 10, Date: "2024-01-01T00:00:00Z"}

	tests := []struct {
		name    string
		input   TransactionInput
		typ     Type
		wantErr bool
	}{
		{"valid expense", valid, TypeExpense, false},
		{"valid income", valid, TypeIncome, false},
		{"unknown type", valid, Type("transfer"), true},
		{"short name", TransactionInput{Name: "A", Amount: 10}, TypeExpense, true},
		{"whitespace name", TransactionInput{Name: "  x ", Amount: 10}, TypeExpense, true},
		{"zero amount", TransactionInput{Name: "Acme", Amount: 0}, TypeExpense, true},
		{"negative amount", TransactionInput{Name: "Acme", Amount: -5}, TypeExpense, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate(tt.typ)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestNumberFields(t *testing.T) {
	in := TransactionInput{InvoiceNumber: "INV-1", ReceiptNumber: "RCP-9"}

	if inv, rcp := in.NumberFields(TypeExpense); inv != "INV-1" || rcp != "" {
		t.Errorf("expense NumberFields = (%q, %q)", inv, rcp)
	}
	if inv, rcp := in.NumberFields(TypeIncome); inv != "" || rcp != "RCP-9" {
		t.Errorf("income NumberFields = (%q, %q)", inv, rcp)
	}
}
