package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/dgallion1/doclink/internal/editor"
	"github.com/dgallion1/doclink/internal/parser"
	"github.com/dgallion1/doclink/internal/pipeline"
	"github.com/dgallion1/doclink/internal/render"
	"github.com/dgallion1/doclink/internal/ulid"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleLinkify(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format, err := render.ParseFormat(r.FormValue("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(ulid.New(), filename, r.FormValue("title"), format, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"poll_url":   fmt.Sprintf("/api/linkify/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/linkify/%s/result", job.ID),
	})
}

func (s *Server) handleLinkifyStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":       snap.ID,
		"status":       snap.Status,
		"phase":        snap.Phase,
		"filename":     snap.Filename,
		"format":       snap.Format,
		"content_hash": snap.ContentHash,
		"progress":     snap.Progress,
		"events":       job.Events(),
	})
}

func (s *Server) handleLinkifyResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusFailed:
		jsonError(w, "job failed: "+strings.Join(snap.Progress.Errors, "; "), http.StatusUnprocessableEntity)
		return
	default:
		jsonError(w, fmt.Sprintf("job not finished (%s)", snap.Status), http.StatusConflict)
		return
	}
	out, _ := job.Result()
	w.Header().Set("Content-Type", snap.Format.ContentType())
	w.Write(out)
}

// textRequest carries a document inline. Markdown wins when both are set.
type textRequest struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Markdown string `json:"markdown"`
	Format   string `json:"format"`
}

func (req textRequest) tree() (*doctree.Tree, error) {
	title := req.Title
	if title == "" {
		title = "untitled"
	}
	if req.Markdown != "" {
		return parser.ParseMarkdown(title, req.Markdown)
	}
	return parser.ParseText(title, req.Text)
}

func (s *Server) decodeTextRequest(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	if req.Text == "" && req.Markdown == "" {
		jsonError(w, "text or markdown is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleLinkifyText(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTextRequest(w, r)
	if !ok {
		return
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := req.tree()
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, events, err := s.orchestrator.Linkify(tree, format)
	if err != nil {
		s.log.Error("linkify text failed", "error", err)
		jsonError(w, "linkify: "+err.Error(), linkifyErrorStatus(err))
		return
	}

	resp := map[string]any{"format": format, "events": events}
	if format == render.FormatJSON {
		resp["document"] = json.RawMessage(out)
	} else {
		resp["content"] = string(out)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func linkifyErrorStatus(err error) int {
	if errors.Is(err, editor.ErrTransformLoop) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
