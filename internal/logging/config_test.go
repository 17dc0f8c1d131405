package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevelAliases(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
		"inactive": zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok || got != want {
			t.Fatalf("parseLevel(%q) = %v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := parseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be ignored")
	}
}

func TestEnvOverridesApplyOverProfileDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")

	cfg := defaultConfig(ProfileRuntime)
	if cfg.Level != zerolog.InfoLevel || !cfg.Timestamp {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel {
		t.Fatalf("expected error level, got %v", cfg.Level)
	}
	if cfg.Timestamp {
		t.Fatalf("expected timestamp disabled")
	}
	if !cfg.NoColor {
		t.Fatalf("expected no color")
	}
}

func TestParseBoolRejectsGarbage(t *testing.T) {
	if _, ok := parseBool("maybe"); ok {
		t.Fatalf("expected garbage bool to be ignored")
	}
	if v, ok := parseBool("true"); !ok || !v {
		t.Fatalf("expected true, got %v,%v", v, ok)
	}
}
