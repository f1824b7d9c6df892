// Package session keeps in-memory editing sessions. Each session owns a
// document with the auto-link engine attached and applies edits to it one
// update at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/ulid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Session is one editable document.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	doc      *linkify.Document
	lastUsed time.Time
}

// View is a JSON-safe copy of session state.
type View struct {
	ID        string          `json:"session_id"`
	Title     string          `json:"title"`
	Text      string          `json:"text"`
	Document  doctree.State   `json:"document"`
	Events    []linkify.Event `json:"events"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Apply runs edits in order inside a single update and returns the link
// events they caused. Edits before a failing one stay applied.
func (s *Session) Apply(edits []Edit) ([]linkify.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	return s.doc.Update(func(tree *doctree.Tree) error {
		for i, e := range edits {
			if err := apply(tree, e); err != nil {
				return fmt.Errorf("edit %d: %w", i, err)
			}
		}
		return nil
	})
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree := s.doc.Tree()
	return View{
		ID:        s.ID,
		Title:     tree.Title,
		Text:      tree.TextContent(tree.Root()),
		Document:  tree.State(),
		Events:    s.doc.Events(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.lastUsed,
	}
}

// Read runs fn with exclusive access to the session tree. fn must not keep
// the tree.
func (s *Session) Read(fn func(tree *doctree.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc.Tree())
}

func (s *Session) idle(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// Config configures a Store.
type Config struct {
	TTL         time.Duration
	MaxSessions int
	Linkify     linkify.Options
	NewID       func() string
	Logger      *slog.Logger
}

// Store is a thread-safe session registry with idle eviction.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	log      *slog.Logger
}

func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.NewID == nil {
		cfg.NewID = ulid.New
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		log:      log,
	}
}

// Create links tree and registers it as a new session.
func (s *Store) Create(tree *doctree.Tree) (*Session, error) {
	s.mu.RLock()
	full := s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions
	s.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	doc, err := linkify.Attach(tree, s.cfg.Linkify)
	if err != nil {
		return nil, fmt.Errorf("attach linker: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:        s.cfg.NewID(),
		CreatedAt: now,
		doc:       doc,
		lastUsed:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		doc.Close()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.ID] = sess
	s.log.Info("session created", "session_id", sess.ID, "links", len(doc.Events()))
	return sess, nil
}

// Get returns a session by ID.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete closes and removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.close()
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how many
// it removed.
func (s *Store) Cleanup() int {
	now := time.Now()
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.idle(now) > s.cfg.TTL {
			delete(s.sessions, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	if len(expired) > 0 {
		s.log.Info("sessions expired", "count", len(expired))
	}
	return len(expired)
}

// Run evicts idle sessions until ctx is done.
func (s *Store) Run(ctx context.Context) {
	interval := s.cfg.TTL / 2
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Close()
}
