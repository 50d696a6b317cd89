package segmentation

// topArtistLimit bounds how many dominant artists per week feed the
// similarity comparison.
const topArtistLimit = 20

// Similarity scores two week buckets by the Jaccard index of their
// most-played artist sets. The result is in [0.0, 1.0] and is independent
// of absolute play counts; it measures whether the dominant artists of two
// adjacent weeks overlap.
func Similarity(a, b WeekBucket) float64 {
	n := min(topArtistLimit, a.Artists.Len(), b.Artists.Len())
	if n == 0 {
		return 0
	}

	topA := topArtistSet(a, n)
	topB := topArtistSet(b, n)

	intersection := 0
	for artist := range topA {
		if _, ok := topB[artist]; ok {
			intersection++
		}
	}
	union := len(topA) + len(topB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// topArtistSet returns the n most-played artists of a week as a set.
// MostCommon's first-seen tie-break keeps the cut deterministic.
func topArtistSet(w WeekBucket, n int) map[string]struct{} {
	set := make(map[string]struct{}, n)
	for _, e := range w.Artists.MostCommon(n) {
		set[e.Key] = struct{}{}
	}
	return set
}
