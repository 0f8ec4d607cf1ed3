package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// TypeAll disables the type filter.
const TypeAll = "all"

// defaultPageSize applies when the caller does not give one.
const defaultPageSize = 10

// Filter narrows the ledger for listing, summary and export. Zero values
// mean "no constraint".
type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Query     string
	Type      string
}

// Page is a zero-based pagination window.
type Page struct {
	Number int
	Size   int
}

// ListResult is one page plus the total count after filtering but before
// pagination; callers derive page counts from Total.
type ListResult struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

// Filtered returns the full filtered set, sorted by date descending with
// storage order preserved among ties.
func (s *Transactions) Filtered(ctx context.Context, f Filter) ([]domain.Transaction, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	txs = applyFilter(txs, f)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}

// List applies the filter, sort and pagination in that fixed order. A page
// starting at or beyond the filtered count yields an empty page with the
// true total still reported.
func (s *Transactions) List(ctx context.Context, f Filter, page Page) (ListResult, error) {
	txs, err := s.Filtered(ctx, f)
	if err != nil {
		return ListResult{}, err
	}

	if page.Size <= 0 {
		page.Size = defaultPageSize
	}
	if page.Number < 0 {
		page.Number = 0
	}

	total := len(txs)
	start := page.Number * page.Size
	if start >= total {
		return ListResult{Transactions: []domain.Transaction{}, Total: total}, nil
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return ListResult{Transactions: txs[start:end], Total: total}, nil
}

func applyFilter(txs []domain.Transaction, f Filter) []domain.Transaction {
	out := txs[:0:0]
	for _, tx := range txs {
		if matches(tx, f) {
			out = append(out, tx)
		}
	}
	return out
}

func matches(tx domain.Transaction, f Filter) bool {
	if f.Query != "" && !matchesQuery(tx, f.Query) {
		return false
	}
	if f.Type != "" && f.Type != TypeAll && string(tx.Type) != f.Type {
		return false
	}
	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}
	return true
}

// matchesQuery is a case-insensitive substring match against the name,
// description, both document numbers, and the stringified amount. Any hit
// includes the record.
func matchesQuery(tx domain.Transaction, query string) bool {
	q := strings.ToLower(query)
	fields := []string{
		tx.Name,
		tx.Description,
		tx.InvoiceNumber,
		tx.ReceiptNumber,
		strconv.FormatFloat(tx.Amount, 'f', -1, 64),
	}
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
