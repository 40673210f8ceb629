package web

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/JonMunkholm/sheetswap/internal/logging"
	"github.com/JonMunkholm/sheetswap/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// handlePage serves the upload page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(templates.Page(templates.PageParams{
		Title:       "Sheetswap",
		MaxFiles:    s.cfg.Upload.MaxFiles,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
	})).ServeHTTP(w, r)
}

// handleProcess runs every uploaded file through the pipeline and renders
// the results fragment.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.processUpload(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Results(batch).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render results", "error", err)
	}
}

// handleAPIProcess is handleProcess for programmatic clients.
func (s *Server) handleAPIProcess(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.processUpload(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, newBatchResponse(batch))
}

func (s *Server) processUpload(w http.ResponseWriter, r *http.Request) (*core.BatchResult, bool) {
	form, err := parseUploadForm(w, r, &s.cfg.Upload)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	batch, err := s.service.ProcessBatch(r.Context(), form.Files, form.OptionsFor)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return batch, true
}

// handleDownload re-runs the pipeline for one file of the upload and sends
// the export as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	form, err := parseUploadForm(w, r, &s.cfg.Upload)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	i, err := fileIndex(chi.URLParam(r, "index"), len(form.Files))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	file := form.Files[i]
	dl, err := s.service.ExportFile(r.Context(), i, file, form.OptionsFor(i, file.Name))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", dl.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(dl.Data); err != nil {
		logging.FromContext(r.Context()).Warn("write download", "file", dl.Filename, "error", err)
	}
}

// handleHealth reports liveness and batch slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"batches": s.service.LimiterStatus(),
	})
}
