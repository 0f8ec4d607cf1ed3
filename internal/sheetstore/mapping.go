package sheetstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// Header is the fixed column layout of the transactions worksheet. Row
// cells are addressed by position, so the order is load-bearing.
var Header = []string{
	"id", "type", "name", "amount", "date",
	"invoiceNumber", "receiptNumber", "description",
	"invoice", "receipt", "taxInvoice", "bankTransfer", "taxReceipt",
	"createdAt", "updatedAt",
}

// Column indexes into Header.
const (
	colID = iota
	colType
	colName
	colAmount
	colDate
	colInvoiceNumber
	colReceiptNumber
	colDescription
	colInvoice
	colReceipt
	colTaxInvoice
	colBankTransfer
	colTaxReceipt
	colCreatedAt
	colUpdatedAt
)

// fileColumns maps attachment slots to their worksheet columns, in
// domain.FileSlots order.
var fileColumns = []int{colInvoice, colReceipt, colTaxInvoice, colBankTransfer, colTaxReceipt}

func cell(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}

// rowToTransaction maps one worksheet row to a transaction, applying the
// lossy read normalization: malformed amounts read as 0 and unparseable
// dates as now.
func rowToTransaction(row []any, now time.Time) domain.Transaction {
	tx := domain.Transaction{
		ID:            cell(row, colID),
		Type:          domain.Type(cell(row, colType)),
		Name:          cell(row, colName),
		Amount:        domain.ParseAmount(cell(row, colAmount)),
		Date:          domain.ParseDate(cell(row, colDate), now),
		InvoiceNumber: cell(row, colInvoiceNumber),
		ReceiptNumber: cell(row, colReceiptNumber),
		Description:   cell(row, colDescription),
		CreatedAt:     domain.ParseDate(cell(row, colCreatedAt), now),
		UpdatedAt:     domain.ParseDate(cell(row, colUpdatedAt), now),
	}
	for i, slot := range domain.FileSlots {
		tx.SetFileURL(slot, cell(row, fileColumns[i]))
	}
	return tx
}

// transactionToRow maps a transaction to worksheet cells. Absent file slots
// are written as empty strings, not left out.
func transactionToRow(tx domain.Transaction) []any {
	row := make([]any, len(Header))
	row[colID] = tx.ID
	row[colType] = string(tx.Type)
	row[colName] = tx.Name
	row[colAmount] = strconv.FormatFloat(tx.Amount, 'f', -1, 64)
	row[colDate] = tx.Date.UTC().Format(time.RFC3339)
	row[colInvoiceNumber] = tx.InvoiceNumber
	row[colReceiptNumber] = tx.ReceiptNumber
	row[colDescription] = tx.Description
	for i, slot := range domain.FileSlots {
		row[fileColumns[i]] = tx.FileURL(slot)
	}
	row[colCreatedAt] = tx.CreatedAt.UTC().Format(time.RFC3339)
	row[colUpdatedAt] = tx.UpdatedAt.UTC().Format(time.RFC3339)
	return row
}

// IsQuota classifies transient quota signals from the Sheets API. Only
// these are retried; everything else propagates immediately.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrQuotaExceeded) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return true
		}
		for _, e := range apiErr.Errors {
			if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted")
}
