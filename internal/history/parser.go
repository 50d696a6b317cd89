package history

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// minPlayMS filters out skips and previews.
	minPlayMS = 30_000

	// maxExtractedSize caps the cumulative declared uncompressed size of
	// all archive entries. Checked as each entry's declared size is added,
	// before anything is extracted.
	maxExtractedSize = 1 << 30 // 1 GiB

	// historyPattern matches Spotify extended streaming history files by
	// basename, wherever they sit inside the archive.
	historyPattern = "*Streaming_History_Audio_*.json"
)

// zipMagic is the ZIP local-file-header signature.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// IsZip reports whether data starts with the ZIP binary signature. File
// extensions are not consulted.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// Parser turns raw export bytes into validated listening events.
type Parser struct {
	logger *log.Logger
}

// NewParser creates a Parser. A nil logger discards per-entry skip notices.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{logger: logger}
}

// record mirrors one entry of a streaming history JSON array. Pointer
// fields distinguish absent from empty.
type record struct {
	TS         *string `json:"ts"`
	TrackName  *string `json:"master_metadata_track_name"`
	ArtistName *string `json:"master_metadata_album_artist_name"`
	MSPlayed   int64   `json:"ms_played"`
	TrackURI   string  `json:"spotify_track_uri"`
}

// dedupKey identifies a play across overlapping export files. It keys on
// the raw timestamp string, not the parsed time.
type dedupKey struct {
	ts     string
	track  string
	artist string
}

// ParseJSON parses a single streaming history JSON document into
// deduplicated, time-ascending events. Records with missing fields, plays
// shorter than 30 seconds, or unparseable timestamps are silently dropped.
// A document that is not valid JSON, or not a top-level array, is a
// *ParseError.
func (p *Parser) ParseJSON(data []byte) ([]Event, error) {
	events, err := p.parseRecords(data, make(map[dedupKey]struct{}))
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

// parseRecords decodes one history document into events, skipping plays
// whose dedup key is already in seen. Callers share seen across documents
// so deduplication uses the same raw-timestamp key whether history arrives
// as one file or an archive of many.
func (p *Parser) parseRecords(data []byte, seen map[dedupKey]struct{}) ([]Event, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, parseErrorf(KindNotArray, "expected JSON array of listening events")
		}
		return nil, parseErrorf(KindInvalidJSON, "invalid JSON: %v", err)
	}
	// A JSON null decodes into a nil slice without error; it is still not
	// an array.
	if raws == nil {
		return nil, parseErrorf(KindNotArray, "expected JSON array of listening events")
	}

	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if rec.TrackName == nil || rec.ArtistName == nil {
			continue
		}
		if rec.MSPlayed < minPlayMS {
			continue
		}
		if rec.TS == nil {
			continue
		}
		ts, ok := parseTimestamp(*rec.TS)
		if !ok {
			continue
		}

		key := dedupKey{ts: *rec.TS, track: *rec.TrackName, artist: *rec.ArtistName}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		events = append(events, Event{
			Timestamp:  ts,
			ArtistName: *rec.ArtistName,
			TrackName:  *rec.TrackName,
			MSPlayed:   rec.MSPlayed,
			TrackURI:   rec.TrackURI,
		})
	}
	return events, nil
}

// timestampLayouts are tried in order. Spotify exports use RFC 3339 with a
// Z suffix; older exports carry bare local timestamps, read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(ts string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseZip parses a Spotify data export ZIP. Entries whose basename does
// not match the streaming history pattern are skipped; matching entries
// that fail to parse are logged and skipped. Traversal paths, absolute
// paths, and a cumulative declared size over the extraction ceiling reject
// the whole archive. An archive yielding zero events is a *ParseError.
func (p *Parser) ParseZip(data []byte) ([]Event, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, parseErrorf(KindInvalidArchive, "invalid ZIP file: %v", err)
	}

	var all []Event
	var totalExtracted uint64

	// Export archives routinely ship overlapping history files; one seen
	// map dedups across all of them.
	seen := make(map[dedupKey]struct{})

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if unsafePath(f.Name) {
			return nil, parseErrorf(KindUnsafePath, "invalid file path in ZIP: %s", f.Name)
		}

		// Checking each entry against the ceiling first keeps the running
		// total from wrapping around on forged zip64 sizes.
		if f.UncompressedSize64 > maxExtractedSize {
			return nil, parseErrorf(KindTooLarge, "ZIP file too large when extracted")
		}
		totalExtracted += f.UncompressedSize64
		if totalExtracted > maxExtractedSize {
			return nil, parseErrorf(KindTooLarge, "ZIP file too large when extracted")
		}

		if ok, _ := path.Match(historyPattern, path.Base(f.Name)); !ok {
			continue
		}

		content, err := readEntry(f)
		if err != nil {
			p.logger.Warn("skipping unreadable archive entry", "entry", f.Name, "err", err)
			continue
		}
		events, err := p.parseRecords(content, seen)
		if err != nil {
			p.logger.Warn("skipping unparseable history file", "entry", f.Name, "err", err)
			continue
		}
		all = append(all, events...)
	}

	if len(all) == 0 {
		return nil, parseErrorf(KindNoHistory, "no valid streaming history files found in ZIP")
	}

	sortEvents(all)
	return all, nil
}

// unsafePath reports whether an archive entry path is absolute or contains
// a parent-directory traversal segment.
func unsafePath(name string) bool {
	if strings.HasPrefix(name, "/") {
		return true
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func sortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
