package history

import "fmt"

// ParseErrorKind classifies hard parse failures.
type ParseErrorKind int

const (
	// KindInvalidJSON means the top-level document could not be decoded.
	KindInvalidJSON ParseErrorKind = iota + 1

	// KindNotArray means the document decoded to something other than an array.
	KindNotArray

	// KindInvalidArchive means the blob is not a valid ZIP archive.
	KindInvalidArchive

	// KindUnsafePath means an archive entry carried a traversal segment or
	// an absolute path.
	KindUnsafePath

	// KindTooLarge means the cumulative declared uncompressed size of the
	// archive entries exceeded the extraction ceiling.
	KindTooLarge

	// KindNoHistory means a full archive scan yielded no events at all.
	KindNoHistory
)

// ParseError is a terminal failure for the current input. It is never
// raised for an individual archive entry that fails to parse; those are
// skipped so one corrupt file does not abort the whole archive.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func parseErrorf(kind ParseErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
