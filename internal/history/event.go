// Package history parses Spotify extended streaming history exports into
// validated, deduplicated listening events.
package history

import "time"

// Event is one validated play from a streaming history export. Events are
// immutable once created; callers may drop the event list after aggregate
// stats and week buckets have been derived from it.
type Event struct {
	Timestamp  time.Time
	ArtistName string
	TrackName  string
	MSPlayed   int64
	TrackURI   string // empty when the export omits it
}
