package segmentation

import "time"

// ArtistPlays is one ranked entry of an era's top artists.
type ArtistPlays struct {
	Artist string
	Plays  int
}

// TrackPlays is one ranked entry of an era's top tracks.
type TrackPlays struct {
	Track  string
	Artist string
	Plays  int
}

// Era is a contiguous period of stable listening taste. IDs are sequential
// and 1-indexed but stable only within one filtered result set; FilterEras
// renumbers survivors. Title and Summary start empty and are written only
// by the naming layer.
type Era struct {
	ID            int
	StartDate     time.Time // inclusive, UTC date
	EndDate       time.Time // inclusive, UTC date
	TopArtists    []ArtistPlays
	TopTracks     []TrackPlays
	TotalMSPlayed int64
	Title         string
	Summary       string
}
