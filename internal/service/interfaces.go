package service

import (
	"context"
	"io"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// TransactionRepository is the row store seam. The sheets adapter is the
// production implementation; tests inject an in-memory fake.
type TransactionRepository interface {
	List(ctx context.Context) ([]domain.Transaction, error)
	Get(ctx context.Context, id string) (domain.Transaction, error)
	Append(ctx context.Context, tx domain.Transaction) error
	Update(ctx context.Context, tx domain.Transaction) error
	Delete(ctx context.Context, id string) error
}

// FileStore is the attachment store seam. Delete reports a missing or
// untouchable target as (false, nil); the service never lets attachment
// cleanup block a record mutation.
type FileStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, urlOrID string) (bool, error)
}
