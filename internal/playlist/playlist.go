// Package playlist materializes playlists from era top-track rankings.
package playlist

import "github.com/justestif/go-listening-eras/internal/segmentation"

// Track is one playlist entry derived from an era's top tracks.
type Track struct {
	TrackName  string `json:"track_name"`
	ArtistName string `json:"artist_name"`
	PlayCount  int    `json:"play_count"`
	URI        string `json:"uri,omitempty"` // unknown after aggregation; resolved at export time
}

// Playlist is the ordered track list for one era, keyed by era id.
type Playlist struct {
	EraID  int     `json:"era_id"`
	Tracks []Track `json:"tracks"`
}

// FromEra builds a playlist from an era's top tracks, one entry per ranked
// track in ranking order.
func FromEra(era segmentation.Era) Playlist {
	tracks := make([]Track, len(era.TopTracks))
	for i, t := range era.TopTracks {
		tracks[i] = Track{
			TrackName:  t.Track,
			ArtistName: t.Artist,
			PlayCount:  t.Plays,
		}
	}
	return Playlist{EraID: era.ID, Tracks: tracks}
}

// FromEras builds one playlist per era.
func FromEras(eras []segmentation.Era) []Playlist {
	playlists := make([]Playlist, len(eras))
	for i, era := range eras {
		playlists[i] = FromEra(era)
	}
	return playlists
}
