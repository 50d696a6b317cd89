package web

import (
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/justestif/go-listening-eras/internal/history"
	"github.com/justestif/go-listening-eras/internal/playlist"
	"github.com/justestif/go-listening-eras/internal/segmentation"
)

func TestSessionStoreCreateGet(t *testing.T) {
	store := NewSessionStore()
	summary := history.Summary{TotalTracks: 5, TotalArtists: 2, TotalMS: 300_000}

	sess := store.Create(summary)
	if sess.ID == "" {
		t.Fatal("empty session id")
	}
	if sess.Progress.Stage != StageParsed || sess.Progress.Percent != 20 {
		t.Errorf("initial progress = %+v", sess.Progress)
	}

	got, ok := store.Get(sess.ID)
	if !ok {
		t.Fatal("session not found")
	}
	if got.Summary != summary {
		t.Errorf("Summary = %+v, want %+v", got.Summary, summary)
	}
}

func TestSessionStoreGetUnknown(t *testing.T) {
	store := NewSessionStore()
	if _, ok := store.Get("nope"); ok {
		t.Error("unknown session should not be found")
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	sess := store.Create(history.Summary{})

	current = current.Add(sessionTTL)
	if _, ok := store.Get(sess.ID); !ok {
		t.Error("session at exactly the TTL should still be readable")
	}

	current = current.Add(time.Second)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("expired session should not be readable")
	}

	// The next create sweeps it out entirely.
	store.Create(history.Summary{})
	if len(store.sessions) != 1 {
		t.Errorf("len(sessions) = %d after sweep, want 1", len(store.sessions))
	}
}

func TestSessionStoreSetProgress(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(history.Summary{})

	store.SetProgress(sess.ID, Progress{Stage: StageNaming, Percent: 70})

	got, _ := store.Get(sess.ID)
	if got.Progress.Stage != StageNaming || got.Progress.Percent != 70 {
		t.Errorf("Progress = %+v", got.Progress)
	}
}

func TestSessionStoreSetResults(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(history.Summary{})

	eras := []segmentation.Era{{ID: 1, Title: "First"}}
	playlists := []playlist.Playlist{{EraID: 1}}
	store.SetResults(sess.ID, eras, playlists)

	got, _ := store.Get(sess.ID)
	if got.Progress.Stage != StageComplete || got.Progress.Percent != 100 {
		t.Errorf("Progress = %+v, want complete/100", got.Progress)
	}
	if len(got.Eras) != 1 || got.Eras[0].Title != "First" {
		t.Errorf("Eras = %+v", got.Eras)
	}
	if len(got.Playlists) != 1 {
		t.Errorf("Playlists = %+v", got.Playlists)
	}
}

func TestSessionStoreToken(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(history.Summary{})

	store.SetToken(sess.ID, &oauth2.Token{AccessToken: "abc"})
	got, _ := store.Get(sess.ID)
	if got.Token == nil || got.Token.AccessToken != "abc" {
		t.Errorf("Token = %+v", got.Token)
	}

	store.ClearToken(sess.ID)
	got, _ = store.Get(sess.ID)
	if got.Token != nil {
		t.Error("token should be cleared")
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(history.Summary{})

	store.Delete(sess.ID)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("deleted session should not be found")
	}
}
