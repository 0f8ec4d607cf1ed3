// Package domain holds the transaction ledger entity and the read-path
// normalization rules applied to values coming back from the row store.
package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Type classifies a ledger entry.
type Type string

// Transaction types.
const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// FileSlots are the fixed attachment categories a transaction may carry,
// in worksheet column order.
var FileSlots = []string{"invoice", "receipt", "taxInvoice", "bankTransfer", "taxReceipt"}

// IsFileSlot reports whether name is one of the fixed attachment slots.
func IsFileSlot(name string) bool {
	for _, slot := range FileSlots {
		if slot == name {
			return true
		}
	}
	return false
}

// Transaction is one income or expense ledger entry. Files maps attachment
// slots to retrieval URLs; slots without an uploaded file are absent.
type Transaction struct {
	ID            string            `json:"id"`
	Type          Type              `json:"type"`
	Name          string            `json:"name"`
	Amount        float64           `json:"amount"`
	Date          time.Time         `json:"date"`
	InvoiceNumber string            `json:"invoiceNumber"`
	ReceiptNumber string            `json:"receiptNumber"`
	Description   string            `json:"description"`
	Files         map[string]string `json:"files,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// FileURL returns the stored retrieval URL for a slot, or "".
func (t *Transaction) FileURL(slot string) string {
	if t.Files == nil {
		return ""
	}
	return t.Files[slot]
}

// SetFileURL records a retrieval URL for a slot. Empty URLs clear the slot
// so that serialized records omit it.
func (t *Transaction) SetFileURL(slot, url string) {
	if url == "" {
		if t.Files != nil {
			delete(t.Files, slot)
			if len(t.Files) == 0 {
				t.Files = nil
			}
		}
		return
	}
	if t.Files == nil {
		t.Files = make(map[string]string)
	}
	t.Files[slot] = url
}

// ParseAmount converts a stored amount to a float. Malformed values read as
// 0 rather than failing the read; the stored data is not trusted.
func ParseAmount(raw string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}

// dateLayouts are tried in order when parsing stored date strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate converts a stored date string to a time. Unparseable values are
// replaced with the fallback, matching the lossy-recovery read policy.
func ParseDate(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return fallback
}
