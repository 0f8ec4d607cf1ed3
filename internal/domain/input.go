package domain

import "strings"

// TransactionInput carries the caller-supplied fields of a create or update
// request. Date stays a raw string here; the service normalizes it.
type TransactionInput struct {
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	InvoiceNumber string  `json:"invoiceNumber"`
	ReceiptNumber string  `json:"receiptNumber"`
	Description   string  `json:"description"`
}

// minNameLength is the shortest accepted counterparty name.
const minNameLength = 2

// Validate checks the input against a transaction type. It runs before any
// call to the external stores.
func (in *TransactionInput) Validate(typ Type) error {
	if !typ.Valid() {
		return &ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	if len(strings.TrimSpace(in.Name)) < minNameLength {
		return &ValidationError{Field: "name", Reason: "must be at least 2 characters"}
	}
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	return nil
}

// NumberFields returns the invoice and receipt numbers with the field that
// does not apply to the type forced to the empty string. The two fields are
// mutually exclusive by convention.
func (in *TransactionInput) NumberFields(typ Type) (invoiceNumber, receiptNumber string) {
	if typ == TypeExpense {
		return in.InvoiceNumber, ""
	}
	return "", in.ReceiptNumber
}
