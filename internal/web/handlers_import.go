package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/JonMunkholm/sheetmerge/internal/core"
	"github.com/JonMunkholm/sheetmerge/internal/merge"
	"github.com/JonMunkholm/sheetmerge/internal/source"
)

const (
	msgMerged     = "Excel imported and storage overwritten with latest data."
	msgEmptyBatch = "Source had no data rows; storage left unchanged."
	msgPreview    = "Preview only; storage left unchanged."

	// multipartMemory is the in-memory part of a parsed upload; the rest spills to disk.
	multipartMemory = 10 << 20
)

// importResponse is the JSON body for a finished import or preview.
type importResponse struct {
	Message  string `json:"message"`
	ImportID string `json:"importId"`
	Source   string `json:"source"`
	DryRun   bool   `json:"dryRun,omitempty"`
	Rows     int    `json:"rows"`
	merge.Report
}

func newImportResponse(res *core.ImportResult) importResponse {
	msg := msgMerged
	switch {
	case res.DryRun:
		msg = msgPreview
	case res.Report.Empty():
		msg = msgEmptyBatch
	}
	return importResponse{
		Message:  msg,
		ImportID: res.ImportID,
		Source:   res.Source,
		DryRun:   res.DryRun,
		Rows:     res.Report.TotalRows,
		Report:   res.Report,
	}
}

// handleImportConfigured imports the spreadsheet at the configured source path.
func (s *Server) handleImportConfigured(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ImportConfigured(withRequestMetadata(r.Context(), r))
	if err != nil {
		if errors.Is(err, source.ErrSourceNotFound) {
			s.respondSourceMissing(w, r, err)
			return
		}
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(res))
}

// respondSourceMissing reports the configured path, which is what an operator needs to fix.
func (s *Server) respondSourceMissing(w http.ResponseWriter, r *http.Request, err error) {
	path := s.cfg.Source.Path
	if abs, absErr := filepath.Abs(path); absErr == nil {
		path = abs
	}
	userMsg := core.MapError(err)
	resp := ErrorResponse{
		Error:   err.Error(),
		Message: fmt.Sprintf("Excel file not found at %s", path),
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	writeJSON(w, http.StatusNotFound, resp)
}

// handleImportUpload merges an uploaded CSV or workbook from the "file" form field.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, s.service.ImportUpload)
}

// handlePreview runs the merge for an uploaded file without saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, s.service.Preview)
}

type uploadFunc func(ctx context.Context, name string, r io.Reader) (*core.ImportResult, error)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, run uploadFunc) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Source.MaxFileSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, fmt.Errorf("%w: %w", source.ErrFileTooLarge, err), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("parse form: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := run(withRequestMetadata(r.Context(), r), header.Filename, file)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(res))
}
