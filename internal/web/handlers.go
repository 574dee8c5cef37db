package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kobimazuz/pi-order-system-sub000/internal/archive"
	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
	"github.com/kobimazuz/pi-order-system-sub000/internal/engine"
	"github.com/kobimazuz/pi-order-system-sub000/internal/logging"
	"github.com/kobimazuz/pi-order-system-sub000/internal/postgres"
	"github.com/kobimazuz/pi-order-system-sub000/internal/xlsx"
)

// tenantHeader carries the tenant identity resolved by the upstream gateway.
const tenantHeader = "X-Tenant-ID"

// importResponse is the JSON shape returned for a processed batch.
type importResponse struct {
	ImportID  string      `json:"import_id"`
	Status    string      `json:"status"`
	TotalRows int         `json:"total_rows"`
	Added     int         `json:"added"`
	Updated   int         `json:"updated"`
	Deleted   int         `json:"deleted"`
	Skipped   int         `json:"skipped"`
	Errors    int         `json:"errors"`
	Rows      []rowResult `json:"rows"`
}

// rowResult is the per-row outcome in the response, in file order.
type rowResult struct {
	Line          int    `json:"line"`
	Code          string `json:"code,omitempty"`
	Action        string `json:"action"`
	Status        string `json:"status"`
	EntityID      string `json:"entity_id,omitempty"`
	ImageAttached bool   `json:"image_attached,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

// handleImport accepts a multipart form with the spreadsheet under "file" and
// an optional image ZIP under "images", runs the batch, and returns the
// ledger summary with per-row outcomes.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	tenant := r.Header.Get(tenantHeader)
	if tenant == "" {
		writeError(w, r, http.StatusBadRequest, "missing "+tenantHeader+" header")
		return
	}

	kind, ok := catalog.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "unknown entity kind")
		return
	}

	maxSize := s.cfg.Import.MaxFileSize + s.cfg.Import.MaxArchiveSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "upload too large or malformed form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no spreadsheet provided under \"file\"")
		return
	}
	defer file.Close()

	rows, err := xlsx.Decode(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "spreadsheet could not be read")
		return
	}

	images, ok := s.readImages(w, r)
	if !ok {
		return
	}

	log := logging.WithFields(r.Context(), "tenant", tenant, "kind", string(kind), "file", header.Filename)
	log.Info("import received", "rows", len(rows), "images", len(images))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	result, err := s.importer.Run(ctx, engine.Batch{
		Tenant:   tenant,
		Kind:     kind,
		FileName: header.Filename,
		Rows:     rows,
		Images:   images,
	})
	if err != nil {
		var batchErr *engine.BatchError
		if errors.As(err, &batchErr) && batchErr.Err == nil {
			// Structural rejection: the file itself is unusable.
			writeError(w, r, http.StatusUnprocessableEntity, batchErr.Reason)
			return
		}
		log.Error("import failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "import could not be processed")
		return
	}

	writeJSON(w, toResponse(result))
}

// readImages extracts the optional image archive. The second return value is
// false when a response has already been written.
func (s *Server) readImages(w http.ResponseWriter, r *http.Request) (map[string]engine.Blob, bool) {
	zipFile, _, err := r.FormFile("images")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		writeError(w, r, http.StatusBadRequest, "image archive could not be read")
		return nil, false
	}
	defer zipFile.Close()

	data, err := io.ReadAll(zipFile)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "image archive could not be read")
		return nil, false
	}
	images, err := archive.Extract(data)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "image archive is not a valid ZIP")
		return nil, false
	}
	return images, true
}

func toResponse(result *engine.BatchResult) importResponse {
	resp := importResponse{
		ImportID:  result.LedgerID,
		Status:    string(result.Summary.Status),
		TotalRows: result.Summary.TotalRows,
		Added:     result.Summary.Added,
		Updated:   result.Summary.Updated,
		Deleted:   result.Summary.Deleted,
		Skipped:   result.Summary.Skipped,
		Errors:    result.Summary.Errors,
		Rows:      make([]rowResult, 0, len(result.Outcomes)),
	}
	for _, out := range result.Outcomes {
		resp.Rows = append(resp.Rows, rowResult{
			Line:          out.Line,
			Code:          out.Code,
			Action:        string(out.Action),
			Status:        string(out.Status),
			EntityID:      out.EntityID,
			ImageAttached: out.ImageAttached,
			Reason:        out.Reason,
			Warning:       out.Warning,
		})
	}
	return resp
}

// handleListImports returns the tenant's recent import history.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	tenant := r.Header.Get(tenantHeader)
	if tenant == "" {
		writeError(w, r, http.StatusBadRequest, "missing "+tenantHeader+" header")
		return
	}

	records, err := s.history.ListRecent(r.Context(), tenant, 50)
	if err != nil {
		logging.FromContext(r.Context()).Error("list imports failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "import history is unavailable")
		return
	}
	if records == nil {
		records = []postgres.ImportRecord{}
	}
	writeJSON(w, map[string]any{"imports": records})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// writeJSON encodes v as a JSON response body. Encoding errors are logged
// since the headers have already been sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// writeError logs the failure with its request id and returns a sanitized
// JSON error to the client.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"reason", message,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
