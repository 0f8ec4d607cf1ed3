// Package sweep reclaims orphaned attachments. A create that fails after
// some uploads succeeded leaves files behind in the store with no row
// referencing them; the sweeper deletes those once they outlive a grace
// window.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/maayanb/amuta-ledger/internal/filestore"
	"github.com/maayanb/amuta-ledger/internal/service"
)

// FileStore is the slice of the attachment store the sweeper needs.
type FileStore interface {
	ListFiles(ctx context.Context) ([]filestore.StoredFile, error)
	Delete(ctx context.Context, urlOrID string) (bool, error)
}

// DefaultGrace keeps freshly uploaded files safe from the sweep while their
// create request may still be in flight.
const DefaultGrace = 24 * time.Hour

// Sweeper deletes stored files referenced by no transaction row.
type Sweeper struct {
	repo  service.TransactionRepository
	files FileStore
	log   zerolog.Logger
	grace time.Duration
	now   func() time.Time
}

// New wires a sweeper. A non-positive grace falls back to DefaultGrace.
func New(repo service.TransactionRepository, files FileStore, grace time.Duration, log zerolog.Logger) *Sweeper {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Sweeper{repo: repo, files: files, log: log, grace: grace, now: time.Now}
}

// Run performs one sweep pass and returns the number of files deleted.
// Individual deletion failures are logged and skipped; they will be retried
// on the next pass.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rows: %w", err)
	}

	referenced := make(map[string]bool)
	for _, tx := range txs {
		for _, url := range tx.Files {
			referenced[url] = true
		}
	}

	stored, err := s.files.ListFiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored files: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	deleted := 0
	for _, f := range stored {
		if referenced[f.URL] {
			continue
		}
		if f.CreatedAt.After(cutoff) {
			continue
		}

		ok, err := s.files.Delete(ctx, f.URL)
		if err != nil {
			s.log.Warn().Err(err).Str("file", f.Name).Msg("Orphan deletion failed")
			continue
		}
		if ok {
			deleted++
			s.log.Info().Str("file", f.Name).Str("url", f.URL).Msg("Deleted orphaned attachment")
		}
	}

	s.log.Info().
		Int("stored", len(stored)).
		Int("referenced", len(referenced)).
		Int("deleted", deleted).
		Msg("Orphan sweep finished")
	return deleted, nil
}

// Schedule registers the sweep on a cron schedule and starts the scheduler.
// The caller stops the returned cron on shutdown.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			s.log.Error().Err(err).Msg("Orphan sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	s.log.Info().Str("schedule", spec).Msg("Orphan sweep scheduled")
	return c, nil
}
