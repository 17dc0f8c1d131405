// Package service composes stream sources, the PGM codec, metrics and logging
// into the operations exposed by the CLI and the HTTP server.
package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/pgmctl/internal/config"
	"github.com/danmuck/pgmctl/internal/observability"
	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/danmuck/pgmctl/internal/source"
	"github.com/rs/zerolog"
)

var ErrFrameNotFound = errors.New("service: frame index out of range")

// Metric origins. Source names and paths go to logs and reports only.
const (
	OriginFile   = "file"
	OriginStream = "stream"
)

// Report summarizes one decode, and for Split the files it produced.
type Report struct {
	Source      string   `json:"source"`
	Magic       string   `json:"magic,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
	MaxValue    int      `json:"max_value,omitempty"`
	SampleWidth int      `json:"sample_width,omitempty"`
	Comments    []string `json:"comments"`
	Frames      int      `json:"frames"`
	Files       []string `json:"files,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type Service struct {
	cfg    config.Config
	logger zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

func (s *Service) Config() config.Config {
	return s.cfg
}

// Decode unwraps r per the configured compression and decodes it. name
// identifies the stream in logs. The partial result of a frame failure is
// returned with its error.
func (s *Service) Decode(name string, r io.Reader) (*pgm.Decoded, error) {
	rc, err := source.Wrap(r, s.cfg.Compression)
	if err != nil {
		observability.RecordDecode(OriginStream, 0, err)
		return nil, err
	}
	defer rc.Close()
	return s.decode(OriginStream, name, rc)
}

// DecodeFile opens path and decodes it.
func (s *Service) DecodeFile(path string) (*pgm.Decoded, error) {
	rc, err := source.Open(path, s.cfg.Compression)
	if err != nil {
		observability.RecordDecode(OriginFile, 0, err)
		return nil, err
	}
	defer rc.Close()
	return s.decode(OriginFile, path, rc)
}

func (s *Service) decode(origin, name string, r io.Reader) (*pgm.Decoded, error) {
	out, err := pgm.DecodeWithLimits(r, s.cfg.Limits())
	frames := 0
	if out != nil {
		frames = len(out.Frames)
	}
	observability.RecordDecode(origin, frames, err)

	if err != nil {
		event := s.logger.Warn()
		if out == nil {
			event = s.logger.Error()
		}
		event.Err(err).Str("source", name).Str("kind", pgm.Kind(err)).Int("frames", frames).Msg("decode failed")
		return out, err
	}
	s.logger.Debug().
		Str("source", name).
		Str("magic", out.Header.Magic.String()).
		Int("width", out.Header.Width).
		Int("height", out.Header.Height).
		Int("max_value", out.Header.MaxValue).
		Int("comments", len(out.Comments)).
		Int("frames", frames).
		Msg("decoded")
	return out, nil
}

// Inspect decodes r and reports its header, comments and frame count.
func (s *Service) Inspect(name string, r io.Reader) (Report, error) {
	out, err := s.Decode(name, r)
	return newReport(name, out, err), err
}

func (s *Service) InspectFile(path string) (Report, error) {
	out, err := s.DecodeFile(path)
	return newReport(path, out, err), err
}

// SplitFile decodes path and writes each frame to
// <output_dir>/<base>_NNN.pgm. Frames preceding a truncated trailing frame
// are written only when keep_partial is set; the decode error is still
// returned.
func (s *Service) SplitFile(path string) (Report, error) {
	out, err := s.DecodeFile(path)
	report := newReport(path, out, err)
	if err != nil && !(s.cfg.KeepPartial && out != nil && errors.Is(err, pgm.ErrBadDataContent)) {
		return report, err
	}
	files, encErr := s.encode(path, s.BaseFor(path), out)
	report.Files = files
	if encErr != nil {
		report.Kind = pgm.Kind(encErr)
		report.Error = encErr.Error()
		return report, encErr
	}
	return report, err
}

// Frame decodes r and returns the frame at index together with the max value
// the configured encoder declares for it.
func (s *Service) Frame(name string, r io.Reader, index int) (pgm.Image, int, error) {
	out, err := s.Decode(name, r)
	if err != nil && (out == nil || index >= len(out.Frames)) {
		return pgm.Image{}, 0, err
	}
	if index < 0 || index >= len(out.Frames) {
		return pgm.Image{}, 0, fmt.Errorf("%w: %d of %d", ErrFrameNotFound, index, len(out.Frames))
	}
	img := out.Frames[index]
	declared, err := s.cfg.Encoder(out.Header.MaxValue).DeclaredMaxFor(img)
	if err != nil {
		return pgm.Image{}, 0, err
	}
	return img, declared, nil
}

// BaseFor returns the output base name for an input path.
func (s *Service) BaseFor(path string) string {
	if s.cfg.BaseName != "" {
		return s.cfg.BaseName
	}
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".zst", ".pgm"} {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return "frame"
	}
	return base
}

func (s *Service) encode(path, base string, out *pgm.Decoded) ([]string, error) {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		err = fmt.Errorf("%w: output dir %s: %w", pgm.ErrIO, s.cfg.OutputDir, err)
		observability.RecordEncode(OriginFile, 0, err)
		return nil, err
	}
	enc := s.cfg.Encoder(out.Header.MaxValue)
	files, err := enc.Encode(filepath.Join(s.cfg.OutputDir, base), out.Frames)
	observability.RecordEncode(OriginFile, len(files), err)
	if err != nil {
		s.logger.Error().Err(err).Str("source", path).Int("written", len(files)).Msg("encode failed")
		return files, err
	}
	s.logger.Info().
		Str("source", path).
		Str("policy", enc.DeclaredMax.String()).
		Int("files", len(files)).
		Msg("frames written")
	return files, nil
}

func newReport(name string, out *pgm.Decoded, err error) Report {
	r := Report{Source: name, Comments: []string{}}
	if out != nil {
		r.Magic = out.Header.Magic.String()
		r.Width = out.Header.Width
		r.Height = out.Header.Height
		r.MaxValue = out.Header.MaxValue
		r.SampleWidth = out.Header.SampleWidth()
		r.Comments = out.Comments
		r.Frames = len(out.Frames)
	}
	if err != nil {
		r.Kind = pgm.Kind(err)
		r.Error = err.Error()
	}
	return r
}
