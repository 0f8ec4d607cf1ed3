// Package sheetstore adapts one Google Sheets worksheet into the
// transaction row store: rows keyed by id, columns fixed by the header row.
package sheetstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/maayanb/amuta-ledger/internal/domain"
	"github.com/maayanb/amuta-ledger/internal/retry"
)

// Worksheet titles inside the shared spreadsheet.
const (
	SheetName       = "transactions"
	ConfigSheetName = "config"
)

// dataRange covers every record column; data starts below the header row.
const (
	dataRange   = SheetName + "!A2:O"
	appendRange = SheetName + "!A:O"
	idRange     = SheetName + "!A2:A"
)

// Store is the worksheet-backed transaction repository. Every API call runs
// under the injected retry policy with quota errors as the retryable class.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	policy        retry.Policy
	log           zerolog.Logger
	now           func() time.Time
}

// New builds a Store over an authenticated HTTP client.
func New(ctx context.Context, client *http.Client, spreadsheetID string, log zerolog.Logger) (*Store, error) {
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		policy:        retry.DefaultPolicy(IsQuota, log),
		log:           log,
		now:           time.Now,
	}, nil
}

// List returns every record in the worksheet in storage order. The sheet is
// fetched in full; filtering and pagination happen in the service layer.
func (s *Store) List(ctx context.Context) ([]domain.Transaction, error) {
	var resp *sheets.ValueRange
	err := s.policy.Do(ctx, "sheets.list", func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, dataRange).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	now := s.now().UTC()
	txs := make([]domain.Transaction, 0, len(resp.Values))
	for _, row := range resp.Values {
		tx := rowToTransaction(row, now)
		if tx.ID == "" {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Get returns the record with the given id, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (domain.Transaction, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return domain.Transaction{}, domain.ErrNotFound
}

// Append writes one new row below the existing data.
func (s *Store) Append(ctx context.Context, tx domain.Transaction) error {
	vr := &sheets.ValueRange{Values: [][]any{transactionToRow(tx)}}
	err := s.policy.Do(ctx, "sheets.append", func() error {
		_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, appendRange, vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// Update overwrites the row holding tx.ID with the given record.
func (s *Store) Update(ctx context.Context, tx domain.Transaction) error {
	rowNum, err := s.findRow(ctx, tx.ID)
	if err != nil {
		return err
	}

	target := fmt.Sprintf("%s!A%d:O%d", SheetName, rowNum, rowNum)
	vr := &sheets.ValueRange{Values: [][]any{transactionToRow(tx)}}
	err = s.policy.Do(ctx, "sheets.update", func() error {
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, target, vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("update row %d: %w", rowNum, err)
	}
	return nil
}

// Delete removes the row holding id. The deletion is permanent.
func (s *Store) Delete(ctx context.Context, id string) error {
	rowNum, err := s.findRow(ctx, id)
	if err != nil {
		return err
	}
	sheetID, err := s.sheetID(ctx, SheetName)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	err = s.policy.Do(ctx, "sheets.delete", func() error {
		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete row %d: %w", rowNum, err)
	}
	return nil
}

// findRow locates a record id by linear scan of the id column and returns
// its 1-based worksheet row number.
func (s *Store) findRow(ctx context.Context, id string) (int, error) {
	var resp *sheets.ValueRange
	err := s.policy.Do(ctx, "sheets.scan", func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, idRange).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("scan ids: %w", err)
	}

	for i, row := range resp.Values {
		if cell(row, 0) == id {
			return i + 2, nil // +1 for the header row, +1 for 1-based rows
		}
	}
	return 0, domain.ErrNotFound
}

// sheetID resolves a worksheet title to its numeric sheet id.
func (s *Store) sheetID(ctx context.Context, title string) (int64, error) {
	var doc *sheets.Spreadsheet
	err := s.policy.Do(ctx, "sheets.meta", func() error {
		var err error
		doc, err = s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found", title)
}

// Ensure creates the transactions and config worksheets when missing: the
// transactions sheet gets its header row, the config sheet a single seed
// row for organization metadata.
func (s *Store) Ensure(ctx context.Context) error {
	var doc *sheets.Spreadsheet
	err := s.policy.Do(ctx, "sheets.meta", func() error {
		var err error
		doc, err = s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(doc.Sheets))
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil {
			existing[sheet.Properties.Title] = true
		}
	}

	if !existing[SheetName] {
		if err := s.addSheet(ctx, SheetName); err != nil {
			return err
		}
		header := make([]any, len(Header))
		for i, h := range Header {
			header[i] = h
		}
		if err := s.writeRow(ctx, SheetName+"!A1", header); err != nil {
			return err
		}
		s.log.Info().Str("sheet", SheetName).Msg("Created transactions worksheet")
	}

	if !existing[ConfigSheetName] {
		if err := s.addSheet(ctx, ConfigSheetName); err != nil {
			return err
		}
		seed := [][]any{
			{"key", "value", "description", "updatedAt"},
			{"organizationName", "", "Display name shown in reports", s.now().UTC().Format(time.RFC3339)},
		}
		for i, row := range seed {
			if err := s.writeRow(ctx, fmt.Sprintf("%s!A%d", ConfigSheetName, i+1), row); err != nil {
				return err
			}
		}
		s.log.Info().Str("sheet", ConfigSheetName).Msg("Created config worksheet")
	}

	return nil
}

func (s *Store) addSheet(ctx context.Context, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	err := s.policy.Do(ctx, "sheets.addsheet", func() error {
		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("add worksheet %q: %w", title, err)
	}
	return nil
}

func (s *Store) writeRow(ctx context.Context, target string, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	err := s.policy.Do(ctx, "sheets.write", func() error {
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, target, vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
