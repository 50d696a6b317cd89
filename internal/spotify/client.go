// Package spotify provides a wrapper around the Spotify Web API for
// exporting era playlists.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// SearchTrackID resolves a (track, artist) pair to a Spotify track ID via
// search, taking the top hit. Returns an empty ID when nothing matches.
func (c *Client) SearchTrackID(ctx context.Context, track, artist string) (spotify.ID, error) {
	query := fmt.Sprintf("track:%s artist:%s", track, artist)
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", fmt.Errorf("searching for %q by %q: %w", track, artist, err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return "", nil
	}
	return result.Tracks.Tracks[0].ID, nil
}
