package history

import "time"

// Summary holds aggregate statistics over the full event list. Compute it
// before discarding events; downstream stages do not retain them.
type Summary struct {
	TotalTracks  int
	TotalArtists int
	TotalMS      int64
	Start        *time.Time // earliest event date, nil on empty input
	End          *time.Time // latest event date, nil on empty input
}

// Stats computes the summary for a list of events. Empty input yields
// zeroed counts and a nil date range, not an error.
func Stats(events []Event) Summary {
	if len(events) == 0 {
		return Summary{}
	}

	tracks := make(map[[2]string]struct{})
	artists := make(map[string]struct{})
	var totalMS int64
	minTS, maxTS := events[0].Timestamp, events[0].Timestamp

	for _, e := range events {
		tracks[[2]string{e.TrackName, e.ArtistName}] = struct{}{}
		artists[e.ArtistName] = struct{}{}
		totalMS += e.MSPlayed
		if e.Timestamp.Before(minTS) {
			minTS = e.Timestamp
		}
		if e.Timestamp.After(maxTS) {
			maxTS = e.Timestamp
		}
	}

	start := dateOf(minTS)
	end := dateOf(maxTS)
	return Summary{
		TotalTracks:  len(tracks),
		TotalArtists: len(artists),
		TotalMS:      totalMS,
		Start:        &start,
		End:          &end,
	}
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
