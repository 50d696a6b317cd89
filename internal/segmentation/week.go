package segmentation

import (
	"slices"
	"time"

	"github.com/justestif/go-listening-eras/internal/history"
)

// TrackKey identifies a track by name and artist.
type TrackKey struct {
	Track  string
	Artist string
}

// WeekBucket aggregates one ISO calendar week of listening.
type WeekBucket struct {
	ISOYear   int
	ISOWeek   int
	WeekStart time.Time // Monday of the ISO week, UTC midnight
	Artists   *Counter[string]
	Tracks    *Counter[TrackKey]
	TotalMS   int64
}

// AggregateByWeek groups events into per-ISO-week buckets sorted by week
// start ascending. Empty input yields an empty result, not an error.
func AggregateByWeek(events []history.Event) []WeekBucket {
	type weekKey struct{ year, week int }
	buckets := make(map[weekKey]*WeekBucket)

	for _, e := range events {
		year, week := e.Timestamp.ISOWeek()
		key := weekKey{year, week}
		b, ok := buckets[key]
		if !ok {
			b = &WeekBucket{
				ISOYear:   year,
				ISOWeek:   week,
				WeekStart: isoWeekStart(year, week),
				Artists:   NewCounter[string](),
				Tracks:    NewCounter[TrackKey](),
			}
			buckets[key] = b
		}
		b.Artists.Add(e.ArtistName, 1)
		b.Tracks.Add(TrackKey{Track: e.TrackName, Artist: e.ArtistName}, 1)
		b.TotalMS += e.MSPlayed
	}

	out := make([]WeekBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b WeekBucket) int {
		return a.WeekStart.Compare(b.WeekStart)
	})
	return out
}

// isoWeekStart returns the Monday of the given ISO week. January 4th is
// always in ISO week 1, so step back to that week's Monday and forward
// week-1 whole weeks.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -sinceMonday)
	return monday.AddDate(0, 0, (week-1)*7)
}
