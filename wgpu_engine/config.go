package wgpu_engine

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the backend and tunes the upload path. It is consumed by
// whatever acquires the device; the core packages never read it, or the
// environment, themselves.
type Config struct {
	Backend Backend `toml:"backend"`
	Staging Staging `toml:"staging"`
	Logging Logging `toml:"logging"`
}

type Backend struct {
	// Name selects the native backend ("vulkan", "metal", "dx12", "gl") or
	// is empty for the platform default.
	Name            string `toml:"name"`
	PowerPreference string `toml:"power_preference"` // "low" or "high"
}

type Staging struct {
	// ChunkSize is the default staging belt chunk size in bytes.
	ChunkSize uint64 `toml:"chunk_size"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func defaults() *Config {
	return &Config{
		Backend: Backend{
			PowerPreference: "high",
		},
		Staging: Staging{
			ChunkSize: 1 << 20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML config file and applies environment overrides. A missing
// file yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("GIRDER_BACKEND"); v != "" {
		cfg.Backend.Name = v
	}
	if v := os.Getenv("GIRDER_POWER_PREF"); v != "" {
		cfg.Backend.PowerPreference = v
	}
	if os.Getenv("GIRDER_TRACE") != "" {
		cfg.Logging.Level = "debug"
	}
}

// NewLogger builds the zap logger described by the config's logging section.
func NewLogger(cfg Logging) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
