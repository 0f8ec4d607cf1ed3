package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// DriveStore keeps attachments in one shared Google Drive folder.
type DriveStore struct {
	svc      *drive.Service
	folderID string
	log      zerolog.Logger
}

// NewDrive builds a DriveStore over an authenticated HTTP client.
func NewDrive(ctx context.Context, client *http.Client, folderID string, log zerolog.Logger) (*DriveStore, error) {
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{svc: svc, folderID: folderID, log: log}, nil
}

// Upload stores the file in the shared folder, makes it link-readable, and
// returns its retrieval URL.
func (d *DriveStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	meta := &drive.File{
		Name:    name,
		Parents: []string{d.folderID},
	}
	created, err := d.svc.Files.Create(meta).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: drive upload of %q: %v", domain.ErrUpload, name, err)
	}

	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := d.svc.Permissions.Create(created.Id, perm).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("%w: sharing %q: %v", domain.ErrUpload, name, err)
	}

	fileURL := DriveFileURL(created.Id)
	d.log.Debug().Str("file", name).Str("url", fileURL).Msg("Uploaded attachment to Drive")
	return fileURL, nil
}

// Delete removes a file by bare id or retrieval URL. A file that is already
// gone, or one we may not touch, is a non-fatal outcome.
func (d *DriveStore) Delete(ctx context.Context, urlOrID string) (bool, error) {
	id := ExtractDriveFileID(urlOrID)
	if id == "" {
		d.log.Warn().Str("target", urlOrID).Msg("Could not extract a Drive file id, skipping delete")
		return false, nil
	}

	err := d.svc.Files.Delete(id).Context(ctx).Do()
	if err == nil {
		return true, nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusForbidden) {
		d.log.Warn().Str("file_id", id).Int("status", apiErr.Code).Msg("Attachment already gone or not ours to delete")
		return false, nil
	}
	return false, fmt.Errorf("drive delete %s: %w", id, err)
}

// ListFiles enumerates the shared folder.
func (d *DriveStore) ListFiles(ctx context.Context) ([]StoredFile, error) {
	var files []StoredFile
	query := fmt.Sprintf("'%s' in parents and trashed = false", d.folderID)

	call := d.svc.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, createdTime)").
		PageSize(1000)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			created, _ := time.Parse(time.RFC3339, f.CreatedTime)
			files = append(files, StoredFile{
				ID:        f.Id,
				Name:      f.Name,
				URL:       DriveFileURL(f.Id),
				CreatedAt: created,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drive folder: %w", err)
	}
	return files, nil
}

// DriveFileURL is the stable retrieval link stored in the ledger.
func DriveFileURL(id string) string {
	return "https://drive.google.com/uc?id=" + id
}

// ExtractDriveFileID pulls the file id out of the retrieval URL forms Drive
// hands out (uc?id=, open?id=, /file/d/<id>/view). Bare ids pass through.
func ExtractDriveFileID(urlOrID string) string {
	if !strings.ContainsAny(urlOrID, "/?") {
		return urlOrID
	}

	parsed, err := url.Parse(urlOrID)
	if err != nil {
		return ""
	}
	if id := parsed.Query().Get("id"); id != "" {
		return id
	}

	// /file/d/<id>/view and /d/<id> path forms.
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "d" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}
