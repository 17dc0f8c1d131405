// Package source opens PGM input streams, unwrapping gzip or zstd
// compression before the decoder sees a byte.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type Compression string

const (
	CompressionAuto Compression = "auto"
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func ParseCompression(raw string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(raw))); c {
	case "":
		return CompressionAuto, nil
	case CompressionAuto, CompressionNone, CompressionGzip, CompressionZstd:
		return c, nil
	default:
		return "", fmt.Errorf("source: unknown compression %q", raw)
	}
}

// Open opens path and wraps it according to c. Closing the result closes the
// file as well.
func Open(path string, c Compression) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", pgm.ErrIO, path, err)
	}
	rc, err := Wrap(f, c)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &stackedCloser{ReadCloser: rc, under: f}, nil
}

// Wrap returns a reader producing the uncompressed bytes of r. With
// CompressionAuto the first bytes of r select the codec.
func Wrap(r io.Reader, c Compression) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	if c == CompressionAuto {
		c = sniff(br)
	}
	switch c {
	case CompressionNone:
		return io.NopCloser(br), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", pgm.ErrIO, err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", pgm.ErrIO, err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("source: unknown compression %q", c)
	}
}

func sniff(br *bufio.Reader) Compression {
	head, _ := br.Peek(len(zstdMagic))
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

type stackedCloser struct {
	io.ReadCloser
	under io.Closer
}

func (s *stackedCloser) Close() error {
	err := s.ReadCloser.Close()
	if uerr := s.under.Close(); err == nil {
		err = uerr
	}
	return err
}
