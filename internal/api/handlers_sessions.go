package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/doclink/internal/session"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTextRequest(w, r)
	if !ok {
		return
	}
	tree, err := req.tree()
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Create(tree)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sess.View())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.View())
}

type editsRequest struct {
	Edits []session.Edit `json:"edits"`
}

func (s *Server) handleSessionEdits(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req editsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Edits) == 0 {
		jsonError(w, "at least one edit is required", http.StatusBadRequest)
		return
	}

	events, err := sess.Apply(req.Edits)
	if err != nil {
		s.log.Warn("session edit rejected", "session_id", sess.ID, "error", err)
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"events":  events,
		"session": sess.View(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidEdit):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	}
	return linkifyErrorStatus(err)
}
