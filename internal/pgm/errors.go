package pgm

import "errors"

var (
	ErrBadFormatString = errors.New("pgm: bad format string")
	ErrBadNumericValue = errors.New("pgm: bad numeric value")
	// ErrBadCommentString is reserved; no decode path produces it yet.
	ErrBadCommentString = errors.New("pgm: bad comment string")
	ErrBadDataContent   = errors.New("pgm: bad data content")
	ErrIO               = errors.New("pgm: io error")
)

// Kind returns a stable label for the taxonomy error wrapped by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadFormatString):
		return "bad_format"
	case errors.Is(err, ErrBadNumericValue):
		return "bad_numeric"
	case errors.Is(err, ErrBadCommentString):
		return "bad_comment"
	case errors.Is(err, ErrBadDataContent):
		return "bad_data"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}
