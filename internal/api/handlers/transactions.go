// Package handlers exposes the transaction ledger over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/maayanb/amuta-ledger/internal/api/middleware"
	"github.com/maayanb/amuta-ledger/internal/domain"
	"github.com/maayanb/amuta-ledger/internal/export"
	"github.com/maayanb/amuta-ledger/internal/service"
)

// LedgerService is the transaction service surface the handlers consume.
type LedgerService interface {
	Create(ctx context.Context, typ domain.Type, in domain.TransactionInput, uploads map[string]service.Upload) (string, error)
	Get(ctx context.Context, id string) (domain.Transaction, error)
	List(ctx context.Context, f service.Filter, page service.Page) (service.ListResult, error)
	Update(ctx context.Context, id string, req service.UpdateRequest) error
	Delete(ctx context.Context, id string) error
	Summarize(ctx context.Context, f service.Filter) (service.Summary, error)
	Filtered(ctx context.Context, f service.Filter) ([]domain.Transaction, error)
}

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// TransactionsHandler serves the /transactions endpoints.
type TransactionsHandler struct {
	svc LedgerService
	log zerolog.Logger
}

// NewTransactionsHandler creates the handler.
func NewTransactionsHandler(svc LedgerService, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, log: log}
}

// List handles GET /transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	res, err := h.svc.List(r.Context(), filter, parsePage(r))
	if err != nil {
		h.writeFailure(w, err, "Failed to fetch transactions")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// Get handles GET /transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeFailure(w, err, "Failed to fetch transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Create handles POST /transactions, as JSON or multipart form.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	typ, input, uploads, _, _, err := h.parseMutation(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	id, err := h.svc.Create(r.Context(), typ, input, uploads)
	if err != nil {
		h.writeFailure(w, err, "Failed to create transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// Update handles PUT /transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	typ, input, uploads, existing, deleted, err := h.parseMutation(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	err = h.svc.Update(r.Context(), id, service.UpdateRequest{
		Type:          typ,
		Input:         input,
		Uploads:       uploads,
		ExistingFiles: existing,
		DeletedFiles:  deleted,
	})
	if err != nil {
		h.writeFailure(w, err, "Failed to update transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// Delete handles DELETE /transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeFailure(w, err, "Failed to delete transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Summary handles GET /transactions/summary.
func (h *TransactionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	sum, err := h.svc.Summarize(r.Context(), filter)
	if err != nil {
		h.writeFailure(w, err, "Failed to calculate summary")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sum)
}

// Export handles GET /transactions/export, streaming the filtered ledger as
// an xlsx workbook.
func (h *TransactionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	txs, err := h.svc.Filtered(r.Context(), filter)
	if err != nil {
		h.writeFailure(w, err, "Failed to export transactions")
		return
	}
	sum, err := h.svc.Summarize(r.Context(), filter)
	if err != nil {
		h.writeFailure(w, err, "Failed to export transactions")
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.Write(w, txs, sum); err != nil {
		h.log.Error().Err(err).Msg("Failed to stream export")
	}
}

// writeFailure maps service errors to the response contract: 400 for
// validation, 404 for missing records, 500 for everything else.
func (h *TransactionsHandler) writeFailure(w http.ResponseWriter, err error, msg string) {
	switch {
	case domain.IsValidation(err):
		middleware.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found", "")
	default:
		h.log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusInternalServerError, msg, err.Error())
	}
}

// parseMutation reads a create/update body in either of its two shapes:
// plain JSON, or a multipart form carrying `type`, a JSON-encoded `data`
// field, optional `existingFiles`/`deletedFiles` maps, and up to one file
// part per attachment slot.
func (h *TransactionsHandler) parseMutation(r *http.Request) (domain.Type, domain.TransactionInput, map[string]service.Upload, map[string]string, map[string]bool, error) {
	var input domain.TransactionInput

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var body struct {
			domain.TransactionInput
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", input, nil, nil, nil, fmt.Errorf("decode json body: %w", err)
		}
		return domain.Type(body.Type), body.TransactionInput, nil, nil, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return "", input, nil, nil, nil, fmt.Errorf("parse multipart form: %w", err)
	}

	typ := domain.Type(r.FormValue("type"))
	if raw := r.FormValue("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return "", input, nil, nil, nil, fmt.Errorf("decode data field: %w", err)
		}
	}

	existing := map[string]string{}
	if raw := r.FormValue("existingFiles"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return "", input, nil, nil, nil, fmt.Errorf("decode existingFiles: %w", err)
		}
	}
	deleted := map[string]bool{}
	if raw := r.FormValue("deletedFiles"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &deleted); err != nil {
			return "", input, nil, nil, nil, fmt.Errorf("decode deletedFiles: %w", err)
		}
	}

	uploads := map[string]service.Upload{}
	for _, slot := range domain.FileSlots {
		file, header, err := r.FormFile(slot)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return "", input, nil, nil, nil, fmt.Errorf("read %s part: %w", slot, err)
		}
		if header.Size == 0 {
			_ = file.Close()
			continue
		}
		uploads[slot] = service.Upload{
			Content:     file,
			FileName:    header.Filename,
			ContentType: partContentType(header),
		}
	}

	return typ, input, uploads, existing, deleted, nil
}

func partContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// parseFilter reads the shared query/type/date-range parameters.
func parseFilter(r *http.Request) (service.Filter, error) {
	q := r.URL.Query()
	f := service.Filter{
		Query: q.Get("query"),
		Type:  q.Get("type"),
	}

	if raw := q.Get("startDate"); raw != "" {
		t, err := parseBound(raw)
		if err != nil {
			return f, fmt.Errorf("startDate: %w", err)
		}
		f.StartDate = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := parseBound(raw)
		if err != nil {
			return f, fmt.Errorf("endDate: %w", err)
		}
		f.EndDate = &t
	}
	return f, nil
}

func parseBound(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// parsePage reads the zero-based pagination window, tolerating absent or
// malformed numbers.
func parsePage(r *http.Request) service.Page {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("pageSize"))
	if err != nil || size <= 0 {
		size = 10
	}
	return service.Page{Number: page, Size: size}
}
