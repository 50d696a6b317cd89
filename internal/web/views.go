package web

import (
	"time"

	"github.com/justestif/go-listening-eras/internal/history"
	"github.com/justestif/go-listening-eras/internal/playlist"
	"github.com/justestif/go-listening-eras/internal/segmentation"
)

const dateLayout = "2006-01-02"

// dateRangeView is an inclusive calendar range; both fields are null for
// an empty history.
type dateRangeView struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type statsView struct {
	TotalTracks  int           `json:"total_tracks"`
	TotalArtists int           `json:"total_artists"`
	TotalMS      int64         `json:"total_ms"`
	DateRange    dateRangeView `json:"date_range"`
}

// eraSummaryView is the list-level era representation: top three artist
// names only, no summary text.
type eraSummaryView struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	TopArtists []string `json:"top_artists"`
	TrackCount int      `json:"track_count"`
}

type resultsView struct {
	Stats statsView        `json:"stats"`
	Eras  []eraSummaryView `json:"eras"`
}

type artistPlaysView struct {
	Artist string `json:"artist"`
	Plays  int    `json:"plays"`
}

type trackPlaysView struct {
	Track  string `json:"track"`
	Artist string `json:"artist"`
	Plays  int    `json:"plays"`
}

// eraDetailView adds the summary text, full rankings, total listening time
// and the era's playlist to the summary view.
type eraDetailView struct {
	ID            int                `json:"id"`
	Title         string             `json:"title"`
	Summary       string             `json:"summary"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	TopArtists    []artistPlaysView  `json:"top_artists"`
	TopTracks     []trackPlaysView   `json:"top_tracks"`
	TotalMSPlayed int64              `json:"total_ms_played"`
	Playlist      *playlist.Playlist `json:"playlist,omitempty"`
}

func newStatsView(s history.Summary) statsView {
	v := statsView{
		TotalTracks:  s.TotalTracks,
		TotalArtists: s.TotalArtists,
		TotalMS:      s.TotalMS,
	}
	v.DateRange.Start = formatDate(s.Start)
	v.DateRange.End = formatDate(s.End)
	return v
}

func newEraSummaryView(era segmentation.Era) eraSummaryView {
	artists := make([]string, 0, 3)
	for i, a := range era.TopArtists {
		if i >= 3 {
			break
		}
		artists = append(artists, a.Artist)
	}
	return eraSummaryView{
		ID:         era.ID,
		Title:      era.Title,
		StartDate:  era.StartDate.Format(dateLayout),
		EndDate:    era.EndDate.Format(dateLayout),
		TopArtists: artists,
		TrackCount: len(era.TopTracks),
	}
}

func newResultsView(sess Session) resultsView {
	eras := make([]eraSummaryView, len(sess.Eras))
	for i, era := range sess.Eras {
		eras[i] = newEraSummaryView(era)
	}
	return resultsView{Stats: newStatsView(sess.Summary), Eras: eras}
}

func newEraDetailView(era segmentation.Era, pl *playlist.Playlist) eraDetailView {
	artists := make([]artistPlaysView, len(era.TopArtists))
	for i, a := range era.TopArtists {
		artists[i] = artistPlaysView{Artist: a.Artist, Plays: a.Plays}
	}
	tracks := make([]trackPlaysView, len(era.TopTracks))
	for i, t := range era.TopTracks {
		tracks[i] = trackPlaysView{Track: t.Track, Artist: t.Artist, Plays: t.Plays}
	}
	return eraDetailView{
		ID:            era.ID,
		Title:         era.Title,
		Summary:       era.Summary,
		StartDate:     era.StartDate.Format(dateLayout),
		EndDate:       era.EndDate.Format(dateLayout),
		TopArtists:    artists,
		TopTracks:     tracks,
		TotalMSPlayed: era.TotalMSPlayed,
		Playlist:      pl,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
