package naming

import (
	"fmt"
	"strings"

	"github.com/justestif/go-listening-eras/internal/segmentation"
)

// BuildPrompt renders the naming prompt for an era: date range, duration,
// listening time, top 5 artists, top 10 tracks.
func BuildPrompt(era segmentation.Era) string {
	startMonth := era.StartDate.Format("January 2006")
	endMonth := era.EndDate.Format("January 2006")
	dateRange := startMonth
	if startMonth != endMonth {
		dateRange = startMonth + " - " + endMonth
	}

	durationDays := int(era.EndDate.Sub(era.StartDate).Hours()/24) + 1
	duration := formatDuration(durationDays)

	hours := era.TotalMSPlayed / 3_600_000
	listeningTime := fmt.Sprintf("%d hour%s", hours, pluralSuffix(hours))

	var artistLines []string
	for i, a := range era.TopArtists {
		if i >= 5 {
			break
		}
		artistLines = append(artistLines, fmt.Sprintf("%d. %s (%d plays)", i+1, a.Artist, a.Plays))
	}

	var trackLines []string
	for i, t := range era.TopTracks {
		if i >= 10 {
			break
		}
		trackLines = append(trackLines, fmt.Sprintf("%d. %s by %s (%d plays)", i+1, t.Track, t.Artist, t.Plays))
	}

	return fmt.Sprintf(`You are analyzing someone's music listening history. Based on this era's data, create a creative title and summary.

Era: %s (%s)
Total listening time: %s

Top Artists:
%s

Top Tracks:
%s

Create a JSON response with:
- "title": A creative, evocative 2-5 word title that captures the mood/vibe. Avoid generic titles like "Musical Journey", "Eclectic Mix", or "Summer Vibes".
- "summary": A 2-3 sentence summary describing the musical mood, themes, or story of this era.

Respond ONLY with valid JSON: {"title": "...", "summary": "..."}`,
		dateRange, duration, listeningTime,
		strings.Join(artistLines, "\n"),
		strings.Join(trackLines, "\n"))
}

// formatDuration renders a day count as days, weeks, or months.
func formatDuration(days int) string {
	switch {
	case days < 14:
		return fmt.Sprintf("%d days", days)
	case days < 60:
		weeks := days / 7
		return fmt.Sprintf("%d week%s", weeks, pluralSuffix(int64(weeks)))
	default:
		months := days / 30
		return fmt.Sprintf("%d month%s", months, pluralSuffix(int64(months)))
	}
}

func pluralSuffix(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
