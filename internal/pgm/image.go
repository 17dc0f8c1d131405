package pgm

import (
	"fmt"
	"image"
)

// Image is one decoded frame. Pix holds Rows*Cols samples in row-major order,
// SampleWidth bytes each, two-byte samples most significant byte first.
type Image struct {
	Rows        int
	Cols        int
	SampleWidth int
	Pix         []byte
}

// NewImage allocates a zeroed frame.
func NewImage(rows, cols, sampleWidth int) (Image, error) {
	size, err := frameSize(cols, rows, sampleWidth, Limits{})
	if err != nil {
		return Image{}, err
	}
	return Image{Rows: rows, Cols: cols, SampleWidth: sampleWidth, Pix: make([]byte, size)}, nil
}

func (img Image) FrameSize() int {
	return img.Rows * img.Cols * img.SampleWidth
}

// Validate reports whether the pixel buffer matches the frame geometry.
func (img Image) Validate() error {
	if _, err := frameSize(img.Cols, img.Rows, img.SampleWidth, Limits{}); err != nil {
		return err
	}
	if len(img.Pix) != img.FrameSize() {
		return fmt.Errorf("%w: %dx%dx%d frame holds %d bytes", ErrBadDataContent,
			img.Cols, img.Rows, img.SampleWidth, len(img.Pix))
	}
	return nil
}

// Gray returns a copy of the frame as *image.Gray or *image.Gray16.
func (img Image) Gray() (image.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	pix := make([]byte, len(img.Pix))
	copy(pix, img.Pix)
	rect := image.Rect(0, 0, img.Cols, img.Rows)
	if img.SampleWidth == 1 {
		return &image.Gray{Pix: pix, Stride: img.Cols, Rect: rect}, nil
	}
	return &image.Gray16{Pix: pix, Stride: img.Cols * 2, Rect: rect}, nil
}

// FromGray copies a gray image into a frame. Other color models are rejected.
func FromGray(src image.Image) (Image, error) {
	var (
		pix         []byte
		stride      int
		sampleWidth int
	)
	switch g := src.(type) {
	case *image.Gray:
		pix, stride, sampleWidth = g.Pix, g.Stride, 1
	case *image.Gray16:
		pix, stride, sampleWidth = g.Pix, g.Stride, 2
	default:
		return Image{}, fmt.Errorf("%w: unsupported image type %T", ErrBadFormatString, src)
	}
	b := src.Bounds()
	out, err := NewImage(b.Dy(), b.Dx(), sampleWidth)
	if err != nil {
		return Image{}, err
	}
	rowBytes := b.Dx() * sampleWidth
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*rowBytes:(y+1)*rowBytes], pix[y*stride:y*stride+rowBytes])
	}
	return out, nil
}
