package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/danmuck/pgmctl/internal/source"
	"github.com/danmuck/pgmctl/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
output_dir = "out"
keep_partial = true
declared_max = "header"
compression = "zstd"
max_body_bytes = 4096
cors_origins = [" http://a ", ""]
auth_token = " tok "
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := DefaultConfig()
	want.OutputDir = "out"
	want.KeepPartial = true
	want.DeclaredMax = pgm.DeclaredMaxHeader
	want.Compression = source.CompressionZstd
	want.MaxBodyBytes = 4096
	want.CorsOrigins = []string{"http://a"}
	want.AuthToken = "tok"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTemplateMatchesDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "pgmctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("template drifted from defaults (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"policy":      `declared_max = "exact"`,
		"policy bool": `declared_max = "true"`,
		"compression": `compression = "lz4"`,
		"limit":       `max_frame_bytes = 0`,
		"addr":        `http_addr = " "`,
		"body":        `max_body_bytes = -1`,
		"base":        `base_name = "a/b"`,
		"unknown":     `output = "x"`,
		"syntax":      `output_dir = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestEncoderCarriesPolicy(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.DeclaredMax = pgm.DeclaredMaxHeader
	enc := cfg.Encoder(1023)
	if enc.DeclaredMax != pgm.DeclaredMaxHeader || enc.MaxValue != 1023 {
		t.Fatalf("unexpected encoder: %+v", enc)
	}
	if cfg.Limits().MaxFrameBytes != cfg.MaxFrameBytes {
		t.Fatalf("limits must follow config")
	}
}
