package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/danmuck/pgmctl/internal/source"
)

// Config is the resolved pgmctl tool configuration.
type Config struct {
	OutputDir     string
	BaseName      string
	KeepPartial   bool
	DeclaredMax   pgm.DeclaredMaxPolicy
	MaxFrameBytes int
	Compression   source.Compression
	HTTPAddr      string
	MaxBodyBytes  int64
	CorsOrigins   []string
	AuthToken     string
}

type fileConfig struct {
	OutputDir     string   `toml:"output_dir"`
	BaseName      string   `toml:"base_name"`
	KeepPartial   bool     `toml:"keep_partial"`
	DeclaredMax   string   `toml:"declared_max"`
	MaxFrameBytes int      `toml:"max_frame_bytes"`
	Compression   string   `toml:"compression"`
	HTTPAddr      string   `toml:"http_addr"`
	MaxBodyBytes  int64    `toml:"max_body_bytes"`
	CorsOrigins   []string `toml:"cors_origins"`
	AuthToken     string   `toml:"auth_token"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir:     ".",
		DeclaredMax:   pgm.DeclaredMaxLegacy,
		MaxFrameBytes: pgm.DefaultLimits().MaxFrameBytes,
		Compression:   source.CompressionAuto,
		HTTPAddr:      ":9400",
		MaxBodyBytes:  256 << 20,
		CorsOrigins:   []string{"http://localhost:3000"},
	}
}

// Load layers the keys present in the TOML file at path over DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("output_dir") {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}
	if meta.IsDefined("base_name") {
		cfg.BaseName = strings.TrimSpace(raw.BaseName)
	}
	if meta.IsDefined("keep_partial") {
		cfg.KeepPartial = raw.KeepPartial
	}
	if meta.IsDefined("declared_max") {
		policy, err := pgm.ParseDeclaredMaxPolicy(raw.DeclaredMax)
		if err != nil {
			return Config{}, fmt.Errorf("parse declared_max: %w", err)
		}
		cfg.DeclaredMax = policy
	}
	if meta.IsDefined("max_frame_bytes") {
		cfg.MaxFrameBytes = raw.MaxFrameBytes
	}
	if meta.IsDefined("compression") {
		c, err := source.ParseCompression(raw.Compression)
		if err != nil {
			return Config{}, fmt.Errorf("parse compression: %w", err)
		}
		cfg.Compression = c
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("max_body_bytes") {
		cfg.MaxBodyBytes = raw.MaxBodyBytes
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}
	if meta.IsDefined("auth_token") {
		cfg.AuthToken = strings.TrimSpace(raw.AuthToken)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if strings.ContainsAny(cfg.BaseName, `/\`) {
		return fmt.Errorf("base_name must not contain path separators")
	}
	if cfg.MaxFrameBytes <= 0 {
		return fmt.Errorf("max_frame_bytes must be positive")
	}
	if cfg.DeclaredMax != pgm.DeclaredMaxLegacy && cfg.DeclaredMax != pgm.DeclaredMaxHeader {
		return fmt.Errorf("unknown declared_max policy %v", cfg.DeclaredMax)
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return fmt.Errorf("http_addr is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}

func (c Config) Limits() pgm.Limits {
	return pgm.Limits{MaxFrameBytes: c.MaxFrameBytes}
}

// Encoder returns the frame encoder for a stream whose header declared maxValue.
func (c Config) Encoder(maxValue int) pgm.Encoder {
	return pgm.Encoder{DeclaredMax: c.DeclaredMax, MaxValue: maxValue}
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
