package pgm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DeclaredMaxPolicy selects the max value written into encoded headers.
type DeclaredMaxPolicy int

const (
	// DeclaredMaxLegacy writes 255 for one-byte frames and 255*255 for
	// two-byte frames, matching files produced by earlier tooling.
	DeclaredMaxLegacy DeclaredMaxPolicy = iota
	// DeclaredMaxHeader writes Encoder.MaxValue, normally the decoded header's.
	DeclaredMaxHeader
)

const legacyWideMax = 255 * 255

func (p DeclaredMaxPolicy) String() string {
	switch p {
	case DeclaredMaxLegacy:
		return "legacy"
	case DeclaredMaxHeader:
		return "header"
	default:
		return fmt.Sprintf("DeclaredMaxPolicy(%d)", int(p))
	}
}

func ParseDeclaredMaxPolicy(raw string) (DeclaredMaxPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "legacy":
		return DeclaredMaxLegacy, nil
	case "header":
		return DeclaredMaxHeader, nil
	default:
		return 0, fmt.Errorf("pgm: unknown declared max policy %q", raw)
	}
}

// Encoder writes frames as individually numbered P5 files.
type Encoder struct {
	DeclaredMax DeclaredMaxPolicy
	MaxValue    int
}

// FrameFileName returns "<baseName>_NNN.pgm" for zero-based frame index i.
func FrameFileName(baseName string, i int) string {
	return fmt.Sprintf("%s_%03d.pgm", baseName, i)
}

// Encode writes frames with the legacy declared max policy.
func Encode(baseName string, frames []Image) ([]string, error) {
	return Encoder{}.Encode(baseName, frames)
}

// Encode writes one file per frame and returns the written paths in order. It
// stops at the first failure; files already written stay on disk and their
// paths are returned with the error.
func (e Encoder) Encode(baseName string, frames []Image) ([]string, error) {
	paths := make([]string, 0, len(frames))
	for i, img := range frames {
		path := FrameFileName(baseName, i)
		if err := e.writeFile(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DeclaredMaxFor returns the max value the encoder declares for img.
func (e Encoder) DeclaredMaxFor(img Image) (int, error) {
	if e.DeclaredMax == DeclaredMaxHeader {
		width, err := SampleWidthFor(e.MaxValue)
		if err != nil {
			return 0, err
		}
		if width != img.SampleWidth {
			return 0, fmt.Errorf("%w: max value %d does not fit %d-byte samples",
				ErrBadNumericValue, e.MaxValue, img.SampleWidth)
		}
		return e.MaxValue, nil
	}
	if img.SampleWidth == 1 {
		return 255, nil
	}
	return legacyWideMax, nil
}

func (e Encoder) writeFile(path string, img Image) error {
	declaredMax, err := e.DeclaredMaxFor(img)
	if err != nil {
		return err
	}
	if err := img.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}
	w := bufio.NewWriter(f)
	if err := WriteFrame(w, img, declaredMax); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	return nil
}

// WriteFrame writes a single-line P5 header followed by the raw samples of img.
func WriteFrame(w io.Writer, img Image, declaredMax int) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "P5 %d %d %d ", img.Cols, img.Rows, declaredMax); err != nil {
		return fmt.Errorf("%w: write header: %w", ErrIO, err)
	}
	if _, err := w.Write(img.Pix); err != nil {
		return fmt.Errorf("%w: write payload: %w", ErrIO, err)
	}
	return nil
}
