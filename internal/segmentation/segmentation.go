// Package segmentation partitions a listening history into contiguous eras
// of stable taste: events are bucketed by ISO week, boundaries are detected
// from inter-week artist similarity and listening gaps, and boundary-
// delimited runs of weeks are merged into era records and filtered for
// significance.
package segmentation

import (
	"time"

	"github.com/justestif/go-listening-eras/internal/history"
)

const (
	// similarityThreshold starts a new era when adjacent weeks are less
	// similar than this.
	similarityThreshold = 0.3

	// maxGapDays starts a new era after a listening hiatus longer than
	// this, regardless of similarity.
	maxGapDays = 28

	topArtistCount = 10
	topTrackCount  = 20

	// minEraWeeks and minEraMS are the significance thresholds below which
	// an era is discarded.
	minEraWeeks = 2
	minEraMS    = 3_600_000 // one hour
)

// DetectBoundaries returns the week indices at which new eras start. The
// first week is always a boundary; only the immediately preceding week is
// consulted for similarity. Empty input yields no boundaries.
func DetectBoundaries(weeks []WeekBucket) []int {
	if len(weeks) == 0 {
		return nil
	}

	boundaries := []int{0}
	for i := 1; i < len(weeks); i++ {
		if daysBetween(weeks[i-1].WeekStart, weeks[i].WeekStart) > maxGapDays {
			boundaries = append(boundaries, i)
			continue
		}
		if Similarity(weeks[i-1], weeks[i]) < similarityThreshold {
			boundaries = append(boundaries, i)
		}
	}
	return boundaries
}

// BuildEras merges each boundary-delimited run of weeks into an era; the
// final run extends to the end of the list. Per-run artist and track
// multisets are summed, top rankings cut at 10 artists and 20 tracks with
// first-seen tie-breaks, and the date range closes on the Sunday of the
// last week. IDs are 1-indexed in chronological order.
func BuildEras(weeks []WeekBucket, boundaries []int) []Era {
	if len(weeks) == 0 || len(boundaries) == 0 {
		return nil
	}

	eras := make([]Era, 0, len(boundaries))
	for i, start := range boundaries {
		end := len(weeks)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		run := weeks[start:end]
		if len(run) == 0 {
			continue
		}

		artists := NewCounter[string]()
		tracks := NewCounter[TrackKey]()
		var totalMS int64
		for _, w := range run {
			artists.Merge(w.Artists)
			tracks.Merge(w.Tracks)
			totalMS += w.TotalMS
		}

		topArtists := make([]ArtistPlays, 0, topArtistCount)
		for _, e := range artists.MostCommon(topArtistCount) {
			topArtists = append(topArtists, ArtistPlays{Artist: e.Key, Plays: e.Count})
		}
		topTracks := make([]TrackPlays, 0, topTrackCount)
		for _, e := range tracks.MostCommon(topTrackCount) {
			topTracks = append(topTracks, TrackPlays{
				Track:  e.Key.Track,
				Artist: e.Key.Artist,
				Plays:  e.Count,
			})
		}

		eras = append(eras, Era{
			ID:            len(eras) + 1,
			StartDate:     run[0].WeekStart,
			EndDate:       run[len(run)-1].WeekStart.AddDate(0, 0, 6),
			TopArtists:    topArtists,
			TopTracks:     topTracks,
			TotalMSPlayed: totalMS,
		})
	}
	return eras
}

// FilterEras drops eras spanning fewer than two weeks or carrying less
// than an hour of listening, then renumbers survivors 1..N into a fresh
// slice. An empty result is a valid outcome, distinct from a parse failure
// upstream.
func FilterEras(eras []Era) []Era {
	filtered := make([]Era, 0, len(eras))
	for _, era := range eras {
		weekSpan := daysBetween(era.StartDate, era.EndDate)/7 + 1
		if weekSpan < minEraWeeks {
			continue
		}
		if era.TotalMSPlayed < minEraMS {
			continue
		}
		era.ID = len(filtered) + 1
		filtered = append(filtered, era)
	}
	return filtered
}

// Segment runs the full pipeline: weekly aggregation, boundary detection,
// era merging, significance filtering. The result may be empty.
func Segment(events []history.Event) []Era {
	weeks := AggregateByWeek(events)
	boundaries := DetectBoundaries(weeks)
	eras := BuildEras(weeks, boundaries)
	return FilterEras(eras)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
