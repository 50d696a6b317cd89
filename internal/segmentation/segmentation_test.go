package segmentation

import (
	"slices"
	"testing"
	"time"

	"github.com/justestif/go-listening-eras/internal/history"
)

// weekOf builds a bucket with the given week start and per-artist play
// counts. Artists are inserted in sorted order so first-seen tie-breaks
// are deterministic; track counts mirror the artist counts with one track
// per artist.
func weekOf(start time.Time, artistPlays map[string]int) WeekBucket {
	b := WeekBucket{
		WeekStart: start,
		Artists:   NewCounter[string](),
		Tracks:    NewCounter[TrackKey](),
	}
	artists := make([]string, 0, len(artistPlays))
	for artist := range artistPlays {
		artists = append(artists, artist)
	}
	slices.Sort(artists)
	for _, artist := range artists {
		plays := artistPlays[artist]
		b.Artists.Add(artist, plays)
		b.Tracks.Add(TrackKey{Track: artist + " Song", Artist: artist}, plays)
		b.TotalMS += int64(plays) * 200_000
	}
	return b
}

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func weeksApart(n int) time.Time { return monday.AddDate(0, 0, 7*n) }

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]int
		want float64
	}{
		{
			name: "identical artist sets",
			a:    map[string]int{"X": 3, "Y": 2},
			b:    map[string]int{"X": 1, "Y": 9},
			want: 1.0,
		},
		{
			name: "disjoint artist sets",
			a:    map[string]int{"X": 3, "Y": 2},
			b:    map[string]int{"Z": 1, "W": 9},
			want: 0.0,
		},
		{
			name: "half overlap",
			a:    map[string]int{"X": 3, "Y": 2},
			b:    map[string]int{"X": 1, "Z": 9},
			want: 1.0 / 3.0,
		},
		{
			name: "empty side yields zero",
			a:    map[string]int{},
			b:    map[string]int{"X": 1},
			want: 0.0,
		},
		{
			name: "both empty",
			a:    map[string]int{},
			b:    map[string]int{},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(weekOf(monday, tt.a), weekOf(weeksApart(1), tt.b))
			if got != tt.want {
				t.Errorf("Similarity = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Similarity = %v, out of [0, 1]", got)
			}
		})
	}
}

func TestSimilarityTopNCut(t *testing.T) {
	// A has one dominant artist; B has two, so n = 1 and only each side's
	// single top artist is compared.
	a := weekOf(monday, map[string]int{"Shared": 10})
	b := weekOf(weeksApart(1), map[string]int{"Shared": 10, "Other": 1})
	if got := Similarity(a, b); got != 1.0 {
		t.Errorf("Similarity = %v, want 1.0 (top-1 vs top-1)", got)
	}
}

func TestDetectBoundaries(t *testing.T) {
	same := map[string]int{"X": 5, "Y": 3}
	other := map[string]int{"Z": 5, "W": 3}

	tests := []struct {
		name  string
		weeks []WeekBucket
		want  []int
	}{
		{
			name:  "empty input",
			weeks: nil,
			want:  nil,
		},
		{
			name:  "single week",
			weeks: []WeekBucket{weekOf(monday, same)},
			want:  []int{0},
		},
		{
			name: "stable taste, no new boundary",
			weeks: []WeekBucket{
				weekOf(weeksApart(0), same),
				weekOf(weeksApart(1), same),
				weekOf(weeksApart(2), same),
			},
			want: []int{0},
		},
		{
			name: "taste shift starts a new era",
			weeks: []WeekBucket{
				weekOf(weeksApart(0), same),
				weekOf(weeksApart(1), other),
			},
			want: []int{0, 1},
		},
		{
			name: "gap over 28 days starts a new era despite identical taste",
			weeks: []WeekBucket{
				weekOf(weeksApart(0), same),
				weekOf(weeksApart(5), same), // 35-day gap
			},
			want: []int{0, 1},
		},
		{
			name: "28-day gap exactly does not trigger the gap rule",
			weeks: []WeekBucket{
				weekOf(weeksApart(0), same),
				weekOf(weeksApart(4), same), // 28-day gap, similarity 1.0
			},
			want: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectBoundaries(tt.weeks)
			if len(got) != len(tt.want) {
				t.Fatalf("boundaries = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("boundaries = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestBuildEras(t *testing.T) {
	weeks := []WeekBucket{
		weekOf(weeksApart(0), map[string]int{"X": 3, "Y": 1}),
		weekOf(weeksApart(1), map[string]int{"X": 2, "Y": 4}),
		weekOf(weeksApart(2), map[string]int{"Z": 5}),
	}
	eras := BuildEras(weeks, []int{0, 2})

	if len(eras) != 2 {
		t.Fatalf("got %d eras, want 2", len(eras))
	}

	first := eras[0]
	if first.ID != 1 {
		t.Errorf("first era ID = %d, want 1", first.ID)
	}
	if !first.StartDate.Equal(weeksApart(0)) {
		t.Errorf("StartDate = %v, want %v", first.StartDate, weeksApart(0))
	}
	// End of the second week: its Monday plus six days.
	wantEnd := weeksApart(1).AddDate(0, 0, 6)
	if !first.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", first.EndDate, wantEnd)
	}
	if first.TotalMSPlayed != 10*200_000 {
		t.Errorf("TotalMSPlayed = %d, want %d", first.TotalMSPlayed, 10*200_000)
	}
	// Merged counts: X=5, Y=5; X ranks first by first-seen tie-break.
	if len(first.TopArtists) != 2 || first.TopArtists[0].Artist != "X" || first.TopArtists[0].Plays != 5 {
		t.Errorf("TopArtists = %v, want X first with 5 plays", first.TopArtists)
	}
	if first.Title != "" || first.Summary != "" {
		t.Errorf("Title/Summary should start empty, got %q/%q", first.Title, first.Summary)
	}

	second := eras[1]
	if second.ID != 2 {
		t.Errorf("second era ID = %d, want 2", second.ID)
	}
	if !second.StartDate.Equal(weeksApart(2)) {
		t.Errorf("second StartDate = %v", second.StartDate)
	}
	if !second.EndDate.Equal(weeksApart(2).AddDate(0, 0, 6)) {
		t.Errorf("second EndDate = %v", second.EndDate)
	}
}

func TestBuildErasTopCuts(t *testing.T) {
	plays := make(map[string]int, 25)
	for _, r := range "ABCDEFGHIJKLMNOPQRSTUVWXY" {
		plays[string(r)] = 1
	}
	weeks := []WeekBucket{weekOf(monday, plays)}
	eras := BuildEras(weeks, []int{0})
	if len(eras) != 1 {
		t.Fatalf("got %d eras, want 1", len(eras))
	}
	if len(eras[0].TopArtists) != 10 {
		t.Errorf("TopArtists length = %d, want 10", len(eras[0].TopArtists))
	}
	if len(eras[0].TopTracks) != 20 {
		t.Errorf("TopTracks length = %d, want 20", len(eras[0].TopTracks))
	}
}

func TestFilterEras(t *testing.T) {
	twoWeeks := func(ms int64) Era {
		return Era{
			StartDate:     monday,
			EndDate:       monday.AddDate(0, 0, 13),
			TotalMSPlayed: ms,
		}
	}

	tests := []struct {
		name string
		eras []Era
		want int
	}{
		{
			name: "one-week era dropped",
			eras: []Era{{StartDate: monday, EndDate: monday.AddDate(0, 0, 6), TotalMSPlayed: 10_000_000}},
			want: 0,
		},
		{
			name: "just under an hour dropped",
			eras: []Era{twoWeeks(3_599_999)},
			want: 0,
		},
		{
			name: "exactly an hour kept",
			eras: []Era{twoWeeks(3_600_000)},
			want: 1,
		},
		{
			name: "empty input",
			eras: nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEras(tt.eras)
			if len(got) != tt.want {
				t.Errorf("kept %d eras, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFilterErasRenumbers(t *testing.T) {
	keep := func(id int, start time.Time) Era {
		return Era{
			ID:            id,
			StartDate:     start,
			EndDate:       start.AddDate(0, 0, 13),
			TotalMSPlayed: 10_000_000,
		}
	}
	drop := func(id int, start time.Time) Era {
		return Era{ID: id, StartDate: start, EndDate: start.AddDate(0, 0, 6), TotalMSPlayed: 10_000_000}
	}

	in := []Era{keep(1, weeksApart(0)), drop(2, weeksApart(3)), keep(3, weeksApart(5))}
	got := FilterEras(in)

	if len(got) != 2 {
		t.Fatalf("kept %d eras, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("IDs = %d, %d; want 1, 2", got[0].ID, got[1].ID)
	}
	// The input slice is left alone; renumbering builds a fresh sequence.
	if in[2].ID != 3 {
		t.Errorf("input era mutated: ID = %d, want 3", in[2].ID)
	}
}

func TestSegmentScenarioSingleWeekFiltered(t *testing.T) {
	// Ten events in one ISO week across two artists: one bucket, one
	// boundary, one era spanning a single week, filtered away.
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	var events []history.Event
	for i := 0; i < 10; i++ {
		artist := "Artist A"
		if i%2 == 1 {
			artist = "Artist B"
		}
		events = append(events, event(base.Add(time.Duration(i)*time.Hour), "Song", artist, 40000))
	}

	weeks := AggregateByWeek(events)
	if len(weeks) != 1 {
		t.Fatalf("got %d buckets, want 1", len(weeks))
	}
	if weeks[0].TotalMS != 400000 {
		t.Errorf("TotalMS = %d, want 400000", weeks[0].TotalMS)
	}

	boundaries := DetectBoundaries(weeks)
	if len(boundaries) != 1 || boundaries[0] != 0 {
		t.Fatalf("boundaries = %v, want [0]", boundaries)
	}

	eras := BuildEras(weeks, boundaries)
	if len(eras) != 1 {
		t.Fatalf("got %d eras, want 1", len(eras))
	}

	if got := Segment(events); len(got) != 0 {
		t.Errorf("final result = %d eras, want 0 (single-week era is insignificant)", len(got))
	}
}

func TestSegmentScenarioHiatusSplits(t *testing.T) {
	// Two clusters of listening far apart in the year. Each cluster covers
	// two ISO weeks with over an hour of listening, so both eras survive
	// filtering; the long hiatus forces the boundary regardless of taste.
	var events []history.Event
	addWeek := func(start time.Time, artist string) {
		for d := 0; d < 5; d++ {
			ts := start.Add(time.Duration(d) * 24 * time.Hour)
			events = append(events, event(ts, artist+" Song", artist, 600_000))
		}
	}
	// ISO weeks 1 and 2 of 2024.
	addWeek(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), "Artist A")
	addWeek(time.Date(2024, 1, 8, 20, 0, 0, 0, time.UTC), "Artist A")
	// ISO weeks 40 and 41.
	addWeek(time.Date(2024, 9, 30, 20, 0, 0, 0, time.UTC), "Artist A")
	addWeek(time.Date(2024, 10, 7, 20, 0, 0, 0, time.UTC), "Artist A")

	weeks := AggregateByWeek(events)
	if len(weeks) != 4 {
		t.Fatalf("got %d buckets, want 4", len(weeks))
	}

	boundaries := DetectBoundaries(weeks)
	if len(boundaries) != 2 || boundaries[0] != 0 || boundaries[1] != 2 {
		t.Fatalf("boundaries = %v, want [0 2]", boundaries)
	}

	got := Segment(events)
	if len(got) != 2 {
		t.Fatalf("final result = %d eras, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("era IDs = %d, %d; want 1, 2", got[0].ID, got[1].ID)
	}
	if !got[1].StartDate.After(got[0].EndDate) {
		t.Errorf("eras overlap: %v..%v then %v..%v",
			got[0].StartDate, got[0].EndDate, got[1].StartDate, got[1].EndDate)
	}
}

func TestDetectBoundariesHiatusSingleWeeks(t *testing.T) {
	// One week of listening, a long gap, another week: boundary at each.
	weeks := []WeekBucket{
		weekOf(weeksApart(0), map[string]int{"X": 5}),
		weekOf(weeksApart(39), map[string]int{"X": 5}),
	}
	got := DetectBoundaries(weeks)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("boundaries = %v, want [0 1]", got)
	}
}
