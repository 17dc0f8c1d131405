package pgm

import "io"

// Decoded is the result of one decode call. Header and Comments are fixed
// once returned; Frames holds every frame accepted before any failure.
type Decoded struct {
	Header   Header
	Comments []string
	Frames   []Image
}

// Decode parses the header of r and then extracts frames until end of stream.
func Decode(r io.Reader) (*Decoded, error) {
	return DecodeWithLimits(r, DefaultLimits())
}

// DecodeWithLimits is Decode with explicit allocation limits. Header failures
// return a nil result. Frame failures return the partial result and the error.
func DecodeWithLimits(r io.Reader, limits Limits) (*Decoded, error) {
	p := newPeekReader(r)
	h, comments, err := parseHeader(p)
	if err != nil {
		return nil, err
	}
	frames, err := ExtractFrames(p, h.Width, h.Height, h.SampleWidth(), limits)
	return &Decoded{Header: h, Comments: comments, Frames: frames}, err
}
