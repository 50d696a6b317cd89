// Package web provides the HTTP API for the listening eras service.
package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/justestif/go-listening-eras/internal/history"
	"github.com/justestif/go-listening-eras/internal/playlist"
	"github.com/justestif/go-listening-eras/internal/segmentation"
)

// sessionTTL is how long an uploaded session's results are kept.
const sessionTTL = time.Hour

// Analysis progress stages, in pipeline order.
const (
	StageParsed      = "parsed"
	StageAggregating = "aggregating"
	StageNaming      = "naming"
	StageComplete    = "complete"
)

// Progress reports how far a session's analysis has gotten.
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// Session is the transient state of one uploaded export. All state is
// in-memory and per invocation; nothing is persisted.
type Session struct {
	ID        string
	CreatedAt time.Time
	Progress  Progress
	Summary   history.Summary
	Eras      []segmentation.Era
	Playlists []playlist.Playlist
	Token     *oauth2.Token // Spotify token, set after OAuth callback
}

// SessionStore manages upload sessions in memory. All mutation goes
// through the store so the analysis goroutine and request handlers never
// share a session struct directly; readers get copies.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a session seeded with the parse summary. Expired
// sessions are swept on each create, mirroring the upload-driven cleanup
// of the request layer.
func (s *SessionStore) Create(summary history.Summary) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > sessionTTL {
			delete(s.sessions, id)
		}
	}

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Progress:  Progress{Stage: StageParsed, Percent: 20},
		Summary:   summary,
	}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session, or false if it is unknown or expired.
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || s.now().Sub(sess.CreatedAt) > sessionTTL {
		return Session{}, false
	}
	return *sess, true
}

// SetProgress updates a session's analysis progress.
func (s *SessionStore) SetProgress(id string, p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Progress = p
	}
}

// SetResults stores the final eras and playlists and marks the session
// complete.
func (s *SessionStore) SetResults(id string, eras []segmentation.Era, playlists []playlist.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Eras = eras
		sess.Playlists = playlists
		sess.Progress = Progress{Stage: StageComplete, Percent: 100}
	}
}

// SetToken attaches a Spotify OAuth token to the session.
func (s *SessionStore) SetToken(id string, token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Token = token
	}
}

// ClearToken removes the session's Spotify token.
func (s *SessionStore) ClearToken(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Token = nil
	}
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
