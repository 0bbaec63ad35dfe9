package wgpu_engine

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoadMissingFileDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load of a missing file: %v", err)
	}
	if cfg.Staging.ChunkSize != 1<<20 {
		t.Errorf("default chunk size %d, want %d", cfg.Staging.ChunkSize, 1<<20)
	}
	if cfg.Backend.PowerPreference != "high" {
		t.Errorf("default power preference %q, want high", cfg.Backend.PowerPreference)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "girder.toml")
	src := `
[backend]
name = "vulkan"
power_preference = "low"

[staging]
chunk_size = 65536

[logging]
level = "warn"
format = "json"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Name != "vulkan" {
		t.Errorf("backend %q, want vulkan", cfg.Backend.Name)
	}
	if cfg.Staging.ChunkSize != 65536 {
		t.Errorf("chunk size %d, want 65536", cfg.Staging.ChunkSize)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "girder.toml")
	if err := os.WriteFile(path, []byte("[backend"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of a malformed file should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GIRDER_BACKEND", "metal")
	t.Setenv("GIRDER_POWER_PREF", "low")
	t.Setenv("GIRDER_TRACE", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.Name != "metal" {
		t.Errorf("backend %q, want metal", cfg.Backend.Name)
	}
	if cfg.Backend.PowerPreference != "low" {
		t.Errorf("power preference %q, want low", cfg.Backend.PowerPreference)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level %q, want debug (trace enabled)", cfg.Logging.Level)
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(Logging{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info level should be enabled")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be disabled at info")
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	if _, err := NewLogger(Logging{Level: "loud", Format: "console"}); err == nil {
		t.Error("an unknown log level should be an error, not a silent default")
	}
}
