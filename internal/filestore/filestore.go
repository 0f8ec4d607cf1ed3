// Package filestore stores binary attachments in a shared cloud folder and
// hands back stable retrieval URLs. Two backends implement the contract:
// Google Drive (the default) and Cloud Storage.
package filestore

import (
	"context"
	"io"
	"time"
)

// FileStore uploads and deletes attachment blobs.
//
// Delete accepts either a bare file identifier or a full retrieval URL. A
// missing target or denied permission is reported as (false, nil): the
// caller treats cleanup as best-effort and a lost file must never block a
// record mutation.
type FileStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, urlOrID string) (deleted bool, err error)
}

// StoredFile describes one object in the attachment folder.
type StoredFile struct {
	CreatedAt time.Time
	ID        string
	Name      string
	URL       string
}

// Lister enumerates the attachment folder. The orphan sweep uses it to find
// files no row references.
type Lister interface {
	ListFiles(ctx context.Context) ([]StoredFile, error)
}
