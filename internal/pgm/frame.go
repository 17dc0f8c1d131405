package pgm

import (
	"fmt"
	"io"
	"math"
	"slices"
)

// frameChunk is the initial buffer for a frame read. Buffers grow with the
// bytes actually received, so a header declaring a huge geometry costs
// nothing until the payload arrives.
const frameChunk = 64 << 10

// Limits constrains frame allocation.
type Limits struct {
	// MaxFrameBytes caps cols*rows*sampleWidth. Zero means only integer range
	// is enforced.
	MaxFrameBytes int
}

func DefaultLimits() Limits {
	return Limits{MaxFrameBytes: 1 << 30}
}

// ExtractFrames reads back-to-back frames of cols*rows*sampleWidth bytes until
// r is exhausted. A clean end of stream between frames ends the sequence. A
// partial frame is ErrBadDataContent; the frames accepted before it are
// returned with the error.
func ExtractFrames(r io.Reader, cols, rows, sampleWidth int, limits Limits) ([]Image, error) {
	size, err := frameSize(cols, rows, sampleWidth, limits)
	if err != nil {
		return nil, err
	}

	frames := make([]Image, 0)
	for {
		buf, err := readFrame(r, size)
		switch {
		case err == nil:
			frames = append(frames, Image{Rows: rows, Cols: cols, SampleWidth: sampleWidth, Pix: buf})
		case err == io.EOF:
			return frames, nil
		case err == io.ErrUnexpectedEOF:
			return frames, fmt.Errorf("%w: frame %d has %d of %d bytes", ErrBadDataContent, len(frames), len(buf), size)
		default:
			return frames, fmt.Errorf("%w: frame %d: %w", ErrIO, len(frames), err)
		}
	}
}

// readFrame reads exactly size bytes from r, doubling its buffer as data
// arrives. It returns the bytes read so far with io.EOF when r ends before
// the first byte and io.ErrUnexpectedEOF when it ends inside the frame.
func readFrame(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, 0, min(size, frameChunk))
	for len(buf) < size {
		if len(buf) == cap(buf) {
			buf = slices.Grow(buf, min(len(buf), size-len(buf)))
		}
		n, err := io.ReadFull(r, buf[len(buf):min(cap(buf), size)])
		buf = buf[:len(buf)+n]
		if err == io.EOF && len(buf) > 0 {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

func frameSize(cols, rows, sampleWidth int, limits Limits) (int, error) {
	if cols <= 0 || rows <= 0 {
		return 0, fmt.Errorf("%w: frame geometry %dx%d", ErrBadNumericValue, cols, rows)
	}
	if sampleWidth != 1 && sampleWidth != 2 {
		return 0, fmt.Errorf("%w: sample width %d", ErrBadNumericValue, sampleWidth)
	}
	limit := limits.MaxFrameBytes
	if limit <= 0 {
		limit = math.MaxInt
	}
	rowBytes := cols * sampleWidth
	if cols > limit/sampleWidth || rows > limit/rowBytes {
		return 0, fmt.Errorf("%w: frame %dx%dx%d exceeds %d bytes", ErrBadNumericValue, cols, rows, sampleWidth, limit)
	}
	return rowBytes * rows, nil
}
