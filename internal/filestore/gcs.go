package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// GCSStore keeps attachments under a prefix in a Cloud Storage bucket. The
// bucket must allow public reads for the stored URLs to dereference.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewGCS builds a GCSStore authenticated with the shared credential.
func NewGCS(ctx context.Context, ts oauth2.TokenSource, bucket, prefix string, log zerolog.Logger) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix, log: log}, nil
}

// Close releases the underlying client.
func (g *GCSStore) Close() error {
	return g.client.Close()
}

// Upload writes the file under the configured prefix and returns its public
// URL.
func (g *GCSStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	object := g.prefix + name

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: writing %q: %v", domain.ErrUpload, object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: finalizing %q: %v", domain.ErrUpload, object, err)
	}

	fileURL := g.objectURL(object)
	g.log.Debug().Str("object", object).Str("url", fileURL).Msg("Uploaded attachment to GCS")
	return fileURL, nil
}

// Delete removes an object by name or public URL. A missing object is a
// non-fatal outcome.
func (g *GCSStore) Delete(ctx context.Context, urlOrID string) (bool, error) {
	object := g.objectPath(urlOrID)
	if object == "" {
		g.log.Warn().Str("target", urlOrID).Msg("Could not resolve a GCS object path, skipping delete")
		return false, nil
	}

	err := g.client.Bucket(g.bucket).Object(object).Delete(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		g.log.Warn().Str("object", object).Msg("Attachment already gone")
		return false, nil
	}
	return false, fmt.Errorf("gcs delete %s: %w", object, err)
}

// ListFiles enumerates the attachment prefix.
func (g *GCSStore) ListFiles(ctx context.Context) ([]StoredFile, error) {
	var files []StoredFile
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", g.bucket, err)
		}
		files = append(files, StoredFile{
			ID:        attrs.Name,
			Name:      strings.TrimPrefix(attrs.Name, g.prefix),
			URL:       g.objectURL(attrs.Name),
			CreatedAt: attrs.Created,
		})
	}
	return files, nil
}

func (g *GCSStore) objectURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, object)
}

// objectPath resolves a public URL, gs:// URI, or bare object name to the
// object path inside the bucket.
func (g *GCSStore) objectPath(urlOrID string) string {
	for _, scheme := range []string{"https://storage.googleapis.com/", "gs://"} {
		if rest, ok := strings.CutPrefix(urlOrID, scheme); ok {
			bucket, object, found := strings.Cut(rest, "/")
			if !found || bucket != g.bucket {
				return ""
			}
			return object
		}
	}
	if strings.Contains(urlOrID, "://") {
		return ""
	}
	if strings.HasPrefix(urlOrID, g.prefix) {
		return urlOrID
	}
	return g.prefix + urlOrID
}
