package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	zmb3 "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/go-listening-eras/internal/history"
	"github.com/justestif/go-listening-eras/internal/naming"
	"github.com/justestif/go-listening-eras/internal/playlist"
	"github.com/justestif/go-listening-eras/internal/segmentation"
	"github.com/justestif/go-listening-eras/internal/spotify"
)

// maxUploadBytes caps the upload request body.
const maxUploadBytes = 500 << 20

const (
	oauthStateCookie   = "oauth_state"
	oauthSessionCookie = "oauth_session"
)

// Handlers contains the HTTP handlers and their dependencies. The auth
// field is nil when Spotify credentials are not configured; export
// endpoints respond 503 in that case.
type Handlers struct {
	logger   *log.Logger
	parser   *history.Parser
	sessions *SessionStore
	namer    *naming.Namer
	auth     *spotifyauth.Authenticator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *log.Logger, parser *history.Parser, sessions *SessionStore, namer *naming.Namer, auth *spotifyauth.Authenticator) *Handlers {
	return &Handlers{
		logger:   logger,
		parser:   parser,
		sessions: sessions,
		namer:    namer,
		auth:     auth,
	}
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Upload ingests an export file (POST /upload). The file is parsed
// synchronously; segmentation and naming run in a background goroutine
// with progress exposed via the session.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	if !validUploadType(data, header.Filename) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload a .json or .zip file")
		return
	}

	var events []history.Event
	if history.IsZip(data) {
		events, err = h.parser.ParseZip(data)
	} else {
		events, err = h.parser.ParseJSON(data)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse file: %v", err))
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusBadRequest, "No listening history found in file")
		return
	}

	// Stats must be computed now; the event list is not retained past
	// analysis.
	sess := h.sessions.Create(history.Stats(events))
	go h.analyze(sess.ID, events)

	writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID})
}

// analyze runs segmentation and naming for one session, updating progress
// as stages complete.
func (h *Handlers) analyze(sessionID string, events []history.Event) {
	h.sessions.SetProgress(sessionID, Progress{Stage: StageAggregating, Percent: 40})
	eras := segmentation.Segment(events)
	events = nil

	h.sessions.SetProgress(sessionID, Progress{Stage: StageNaming, Percent: 70})
	ctx := context.Background()
	for i := range eras {
		named := h.namer.Name(ctx, eras[i])
		eras[i].Title = named.Title
		eras[i].Summary = named.Summary
	}

	h.sessions.SetResults(sessionID, eras, playlist.FromEras(eras))
	h.logger.Info("analysis complete", "session", sessionID, "eras", len(eras))
}

// Progress reports analysis progress (GET /sessions/{id}/progress).
func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess.Progress)
}

// Results returns the summary view (GET /sessions/{id}/results). Zero eras
// is a valid empty list, not an error.
func (h *Handlers) Results(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if sess.Progress.Stage != StageComplete {
		writeError(w, http.StatusConflict, "Analysis still in progress")
		return
	}
	writeJSON(w, http.StatusOK, newResultsView(sess))
}

// EraDetail returns the detail view for one era
// (GET /sessions/{id}/eras/{eraID}).
func (h *Handlers) EraDetail(w http.ResponseWriter, r *http.Request) {
	_, era, pl, ok := h.lookupEra(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newEraDetailView(era, pl))
}

// ExportEra creates a Spotify playlist for one era
// (POST /sessions/{id}/eras/{eraID}/export). Requires a session that has
// completed the OAuth flow.
func (h *Handlers) ExportEra(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "Spotify integration is not configured")
		return
	}

	sess, era, pl, ok := h.lookupEra(w, r)
	if !ok {
		return
	}
	if sess.Token == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated with Spotify")
		return
	}
	if pl == nil {
		writeError(w, http.StatusNotFound, "No playlist for era")
		return
	}

	client := spotify.New(zmb3.New(h.auth.Client(r.Context(), sess.Token)))
	export, err := client.ExportEra(r.Context(), era, *pl)
	if err != nil {
		h.logger.Error("playlist export failed", "session", sess.ID, "era", era.ID, "err", err)
		writeError(w, http.StatusBadGateway, "Failed to export playlist")
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// lookupEra resolves the session, era and its playlist from the request,
// writing the error response itself on failure.
func (h *Handlers) lookupEra(w http.ResponseWriter, r *http.Request) (Session, segmentation.Era, *playlist.Playlist, bool) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return Session{}, segmentation.Era{}, nil, false
	}

	eraID, err := strconv.Atoi(chi.URLParam(r, "eraID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid era ID")
		return Session{}, segmentation.Era{}, nil, false
	}

	for _, era := range sess.Eras {
		if era.ID != eraID {
			continue
		}
		var pl *playlist.Playlist
		for i := range sess.Playlists {
			if sess.Playlists[i].EraID == eraID {
				pl = &sess.Playlists[i]
				break
			}
		}
		return sess, era, pl, true
	}

	writeError(w, http.StatusNotFound, "Era not found")
	return Session{}, segmentation.Era{}, nil, false
}

// Login initiates the Spotify OAuth flow for a session
// (GET /auth/login?session={id}).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "Spotify integration is not configured")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if _, ok := h.sessions.Get(sessionID); !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	state, err := generateOAuthState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate state")
		return
	}

	// State cookie for CSRF protection, session cookie to route the token
	// back to the upload session on callback.
	setShortCookie(w, oauthStateCookie, state)
	setShortCookie(w, oauthSessionCookie, sessionID)

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the Spotify OAuth flow (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "Spotify integration is not configured")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing state cookie")
		return
	}
	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		writeError(w, http.StatusBadRequest, "State mismatch")
		return
	}

	sessionCookie, err := r.Cookie(oauthSessionCookie)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing session cookie")
		return
	}

	clearCookie(w, oauthStateCookie)
	clearCookie(w, oauthSessionCookie)

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Spotify auth error: %s", errMsg))
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get token")
		return
	}

	h.sessions.SetToken(sessionCookie.Value, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

// Logout drops the session's Spotify token (POST /auth/logout?session={id}).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearToken(r.URL.Query().Get("session"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// validUploadType accepts ZIPs by binary signature and otherwise falls
// back to the declared file extension.
func validUploadType(data []byte, filename string) bool {
	if history.IsZip(data) {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".zip":
		return true
	}
	return false
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
