package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-listening-eras/internal/playlist"
	"github.com/justestif/go-listening-eras/internal/segmentation"
)

const maxTracksPerRequest = 100

// CreatePlaylist creates a new playlist for the current user.
// Returns the playlist ID and its public URL.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (spotify.ID, string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", "", err
	}

	pl, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", "", fmt.Errorf("creating playlist: %w", err)
	}

	return pl.ID, pl.ExternalURLs["spotify"], nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for
// large sets. Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID spotify.ID, trackIDs []spotify.ID) error {
	for i := 0; i < len(trackIDs); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(trackIDs))
		if _, err := c.api.AddTracksToPlaylist(ctx, playlistID, trackIDs[i:end]...); err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}
	return nil
}

// Export is the outcome of materializing one era playlist on Spotify.
type Export struct {
	PlaylistID string `json:"playlist_id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	TrackCount int    `json:"track_count"`
}

// ExportEra creates a private Spotify playlist for an era and fills it
// with its top tracks. Track URIs are not retained through aggregation, so
// each track is resolved by search; unresolvable tracks are skipped.
func (c *Client) ExportEra(ctx context.Context, era segmentation.Era, pl playlist.Playlist) (*Export, error) {
	name := playlistName(era)
	description := playlistDescription(era, len(pl.Tracks))

	var trackIDs []spotify.ID
	for _, t := range pl.Tracks {
		id, err := c.SearchTrackID(ctx, t.TrackName, t.ArtistName)
		if err != nil {
			return nil, err
		}
		if id == "" {
			continue
		}
		trackIDs = append(trackIDs, id)
	}

	playlistID, url, err := c.CreatePlaylist(ctx, name, description, false)
	if err != nil {
		return nil, err
	}
	if err := c.AddTracksToPlaylist(ctx, playlistID, trackIDs); err != nil {
		return nil, err
	}

	return &Export{
		PlaylistID: playlistID.String(),
		Name:       name,
		URL:        url,
		TrackCount: len(trackIDs),
	}, nil
}

// playlistName uses the era's generated title, falling back to a numbered
// name for unnamed eras.
func playlistName(era segmentation.Era) string {
	if era.Title != "" {
		return era.Title
	}
	return fmt.Sprintf("Era %d", era.ID)
}

func playlistDescription(era segmentation.Era, trackCount int) string {
	return fmt.Sprintf("%s - %s • %d top tracks",
		era.StartDate.Format("Jan 2, 2006"), era.EndDate.Format("Jan 2, 2006"), trackCount)
}
