package pgm

import (
	"fmt"
	"io"
	"math"
)

const (
	MaxSampleValue = 65535

	// maxTokenValue bounds a header integer so frame size arithmetic stays in
	// range even on 32-bit platforms.
	maxTokenValue = math.MaxInt32 / 16
)

// Magic identifies the gray map variant declared after the 'P'.
type Magic int

const (
	MagicASCII  Magic = 2
	MagicBinary Magic = 5
)

func (m Magic) String() string {
	switch m {
	case MagicASCII:
		return "P2"
	case MagicBinary:
		return "P5"
	default:
		return fmt.Sprintf("P?(%d)", int(m))
	}
}

// Header is the parsed ASCII preamble of a PGM stream. The declared magic is
// recorded but frames are always extracted as binary samples.
type Header struct {
	Magic    Magic
	Width    int
	Height   int
	MaxValue int
}

// SampleWidth returns bytes per sample, or 0 when MaxValue is out of range.
func (h Header) SampleWidth() int {
	w, err := SampleWidthFor(h.MaxValue)
	if err != nil {
		return 0
	}
	return w
}

// SampleWidthFor maps a declared max value onto 1 or 2 bytes per sample.
func SampleWidthFor(maxValue int) (int, error) {
	switch {
	case maxValue < 1 || maxValue > MaxSampleValue:
		return 0, fmt.Errorf("%w: max value %d outside [1, %d]", ErrBadNumericValue, maxValue, MaxSampleValue)
	case maxValue <= 255:
		return 1, nil
	default:
		return 2, nil
	}
}

// ParseHeader reads the magic, width, height and max value from r along with
// every comment line met on the way. Comments directly after the max value
// are collected too. r is wrapped in a buffered reader, so callers that go on
// to read pixel data should use Decode instead.
func ParseHeader(r io.Reader) (Header, []string, error) {
	return parseHeader(newPeekReader(r))
}

func parseHeader(p *peekReader) (Header, []string, error) {
	magic, err := readMagic(p)
	if err != nil {
		return Header{}, nil, err
	}

	var (
		fields   [3]int
		closed   int
		num      int
		inToken  bool
		comments = make([]string, 0)
	)
	for closed < len(fields) {
		c, err := p.readByte()
		if err != nil {
			return Header{}, nil, headerReadError(err, closed)
		}
		switch {
		case isDigit(c):
			if num > (maxTokenValue-9)/10 {
				return Header{}, nil, fmt.Errorf("%w: header value %d too large", ErrBadNumericValue, closed)
			}
			num = num*10 + int(c-'0')
			inToken = true
		case isSpace(c) || c == '#':
			if inToken {
				fields[closed] = num
				closed++
				num = 0
				inToken = false
			}
			if c == '#' {
				line, err := p.readLine()
				if err != nil {
					return Header{}, nil, fmt.Errorf("%w: read comment: %w", ErrIO, err)
				}
				comments = append(comments, line)
			}
		default:
			return Header{}, nil, fmt.Errorf("%w: unexpected byte %q in header value %d", ErrBadNumericValue, c, closed)
		}
	}

	for {
		c, err := p.peekByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Header{}, nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if c != '#' {
			break
		}
		if _, err := p.readByte(); err != nil {
			return Header{}, nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		line, err := p.readLine()
		if err != nil {
			return Header{}, nil, fmt.Errorf("%w: read comment: %w", ErrIO, err)
		}
		comments = append(comments, line)
	}

	h := Header{Magic: magic, Width: fields[0], Height: fields[1], MaxValue: fields[2]}
	if h.Width <= 0 {
		return Header{}, nil, fmt.Errorf("%w: width %d", ErrBadNumericValue, h.Width)
	}
	if h.Height <= 0 {
		return Header{}, nil, fmt.Errorf("%w: height %d", ErrBadNumericValue, h.Height)
	}
	if _, err := SampleWidthFor(h.MaxValue); err != nil {
		return Header{}, nil, err
	}
	return h, comments, nil
}

func readMagic(p *peekReader) (Magic, error) {
	var magic [2]byte
	for i := range magic {
		c, err := p.readByte()
		if err == io.EOF {
			return 0, fmt.Errorf("%w: truncated magic: %w", ErrBadFormatString, io.ErrUnexpectedEOF)
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrIO, err)
		}
		magic[i] = c
	}
	if magic[0] != 'P' {
		return 0, fmt.Errorf("%w: magic %q", ErrBadFormatString, magic[:])
	}
	switch magic[1] {
	case '2':
		return MagicASCII, nil
	case '5':
		return MagicBinary, nil
	default:
		return 0, fmt.Errorf("%w: magic %q", ErrBadFormatString, magic[:])
	}
}

func headerReadError(err error, closed int) error {
	if err == io.EOF {
		return fmt.Errorf("%w: header ended after %d of 3 values: %w", ErrBadNumericValue, closed, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
