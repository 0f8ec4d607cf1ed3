// Package service implements the transaction ledger: CRUD over the row
// store composed with attachment handling against the file store, plus
// in-memory filtering, sorting, pagination and summary aggregation.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// Upload is one caller-supplied attachment, keyed by slot in the request.
type Upload struct {
	Content     io.Reader
	FileName    string
	ContentType string
}

// UpdateRequest carries everything a transaction update can change. New
// uploads win over retained existing URLs; slots marked deleted lose their
// stored file.
type UpdateRequest struct {
	Uploads       map[string]Upload
	ExistingFiles map[string]string
	DeletedFiles  map[string]bool
	Input         domain.TransactionInput
	Type          domain.Type
}

// Summary is the income/expense aggregate over the filtered ledger.
type Summary struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Balance       float64 `json:"balance"`
}

// Transactions is the ledger service over the injected stores.
type Transactions struct {
	repo  TransactionRepository
	files FileStore
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewTransactions wires the service.
func NewTransactions(repo TransactionRepository, files FileStore, log zerolog.Logger) *Transactions {
	return &Transactions{
		repo:  repo,
		files: files,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create validates the payload, uploads any supplied attachments in
// parallel, and appends one row. Any single upload failure aborts the whole
// create; files already uploaded for other slots stay behind in the store.
func (s *Transactions) Create(ctx context.Context, typ domain.Type, in domain.TransactionInput, uploads map[string]Upload) (string, error) {
	if err := in.Validate(typ); err != nil {
		return "", err
	}
	if err := checkSlots(uploads); err != nil {
		return "", err
	}

	urls, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	id := s.newID()
	invoiceNumber, receiptNumber := in.NumberFields(typ)

	tx := domain.Transaction{
		ID:            id,
		Type:          typ,
		Name:          in.Name,
		Amount:        in.Amount,
		Date:          domain.ParseDate(in.Date, now),
		InvoiceNumber: invoiceNumber,
		ReceiptNumber: receiptNumber,
		Description:   in.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for slot, url := range urls {
		tx.SetFileURL(slot, url)
	}

	if err := s.repo.Append(ctx, tx); err != nil {
		return "", fmt.Errorf("persist transaction: %w", err)
	}

	s.log.Info().Str("id", id).Str("type", string(typ)).Msg("Transaction created")
	return id, nil
}

// Get returns one record by id.
func (s *Transactions) Get(ctx context.Context, id string) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces the record's fields and reconciles its attachments.
// Explicitly deleted files are removed first (best effort), then new
// uploads run; a slot ends up with the new upload URL, else the retained
// existing URL, else nothing.
func (s *Transactions) Update(ctx context.Context, id string, req UpdateRequest) error {
	if err := req.Input.Validate(req.Type); err != nil {
		return err
	}
	if err := checkSlots(req.Uploads); err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	var doomed []string
	for slot, deleted := range req.DeletedFiles {
		if deleted && req.ExistingFiles[slot] != "" {
			doomed = append(doomed, req.ExistingFiles[slot])
		}
	}
	s.deleteAll(ctx, doomed)

	uploaded, err := s.uploadAll(ctx, req.Uploads)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	invoiceNumber, receiptNumber := req.Input.NumberFields(req.Type)

	tx := domain.Transaction{
		ID:            id,
		Type:          req.Type,
		Name:          req.Input.Name,
		Amount:        req.Input.Amount,
		Date:          domain.ParseDate(req.Input.Date, now),
		InvoiceNumber: invoiceNumber,
		ReceiptNumber: receiptNumber,
		Description:   req.Input.Description,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     now,
	}
	for _, slot := range domain.FileSlots {
		switch {
		case uploaded[slot] != "":
			tx.SetFileURL(slot, uploaded[slot])
		case req.ExistingFiles[slot] != "" && !req.DeletedFiles[slot]:
			tx.SetFileURL(slot, req.ExistingFiles[slot])
		}
	}

	if err := s.repo.Update(ctx, tx); err != nil {
		return fmt.Errorf("persist update: %w", err)
	}

	s.log.Info().Str("id", id).Msg("Transaction updated")
	return nil
}

// Delete removes the record and, best effort, every attached file.
func (s *Transactions) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	var urls []string
	for _, slot := range domain.FileSlots {
		if url := existing.FileURL(slot); url != "" {
			urls = append(urls, url)
		}
	}
	s.deleteAll(ctx, urls)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("id", id).Int("files_deleted", len(urls)).Msg("Transaction deleted")
	return nil
}

// Summarize sums amounts over the filtered set. Accumulation runs in
// decimal so the balance identity holds exactly.
func (s *Transactions) Summarize(ctx context.Context, f Filter) (Summary, error) {
	txs, err := s.Filtered(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case domain.TypeIncome:
			income = income.Add(amount)
		case domain.TypeExpense:
			expenses = expenses.Add(amount)
		}
	}

	return Summary{
		TotalIncome:   income.InexactFloat64(),
		TotalExpenses: expenses.InexactFloat64(),
		Balance:       income.Sub(expenses).InexactFloat64(),
	}, nil
}

// uploadAll runs every upload concurrently and joins; the first failure
// cancels the batch and propagates.
func (s *Transactions) uploadAll(ctx context.Context, uploads map[string]Upload) (map[string]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	urls := make([]string, len(domain.FileSlots))
	g, ctx := errgroup.WithContext(ctx)

	for i, slot := range domain.FileSlots {
		upload, ok := uploads[slot]
		if !ok {
			continue
		}
		g.Go(func() error {
			name := fmt.Sprintf("%s_%s_%s", slot, s.newID(), upload.FileName)
			url, err := s.files.Upload(ctx, name, upload.ContentType, upload.Content)
			if err != nil {
				return fmt.Errorf("slot %s: %w", slot, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(uploads))
	for i, slot := range domain.FileSlots {
		if urls[i] != "" {
			result[slot] = urls[i]
		}
	}
	return result, nil
}

// deleteAll issues best-effort concurrent deletions and waits for all of
// them. Failures are logged, never propagated: a failed cleanup must not
// block the record mutation that triggered it.
func (s *Transactions) deleteAll(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deleted, err := s.files.Delete(ctx, url)
			if err != nil {
				s.log.Warn().Err(err).Str("url", url).Msg("Attachment cleanup failed")
				return
			}
			if !deleted {
				s.log.Warn().Str("url", url).Msg("Attachment was already gone")
			}
		}()
	}
	wg.Wait()
}

// checkSlots rejects uploads for unknown attachment slots before any
// external call.
func checkSlots(uploads map[string]Upload) error {
	for slot := range uploads {
		if !domain.IsFileSlot(slot) {
			return &domain.ValidationError{Field: slot, Reason: "unknown file slot"}
		}
	}
	return nil
}
