// Package config loads gattkit.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gattkit/gattkit-go/internal/logging"
)

// Environment overrides.
const (
	EnvLogLevel   = "GATTKIT_LOG_LEVEL"
	EnvEventsPath = "GATTKIT_EVENTS_PATH"
	EnvEvents     = "GATTKIT_EVENTS"
	EnvSpecDirs   = "GATTKIT_SPEC_DIRS"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

const (
	DefaultFile    = "gattkit.toml"
	DefaultEvents  = "gattkit.glog"
	defaultSpecDir = "specs"
)

// Config holds the runtime settings of the gattkit commands.
type Config struct {
	SpecDirs []string
	Log      LogConfig
	Events   EventsConfig
	Output   OutputConfig
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level  string
	Format string
}

// EventsConfig configures the resolution event log.
type EventsConfig struct {
	Enabled bool
	Path    string
}

// OutputConfig configures command output.
type OutputConfig struct {
	Format string
}

// gattkit.toml key mapping.
type fileConfig struct {
	SpecDirs []string `toml:"spec_dirs"`
	Log      struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Events struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"events"`
	Output struct {
		Format string `toml:"format"`
	} `toml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SpecDirs: []string{defaultSpecDir},
		Log:      LogConfig{Level: "info", Format: logging.FormatText},
		Events:   EventsConfig{Path: DefaultEvents},
		Output:   OutputConfig{Format: OutputText},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file. Relative spec_dirs
// are resolved against the directory of path.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Config{}, fmt.Errorf("load config (%s): %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("load config (%s): unknown key %q", path, undecoded[0].String())
		}

		base := filepath.Dir(path)
		if meta.IsDefined("spec_dirs") {
			cfg.SpecDirs = nil
			for _, d := range raw.SpecDirs {
				d = strings.TrimSpace(d)
				if d == "" {
					continue
				}
				if !filepath.IsAbs(d) {
					d = filepath.Join(base, d)
				}
				cfg.SpecDirs = append(cfg.SpecDirs, d)
			}
		}
		if meta.IsDefined("log", "level") {
			cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
		}
		if meta.IsDefined("log", "format") {
			cfg.Log.Format = strings.TrimSpace(raw.Log.Format)
		}
		if meta.IsDefined("events", "enabled") {
			cfg.Events.Enabled = raw.Events.Enabled
		}
		if meta.IsDefined("events", "path") {
			cfg.Events.Path = strings.TrimSpace(raw.Events.Path)
		}
		if meta.IsDefined("output", "format") {
			cfg.Output.Format = strings.TrimSpace(raw.Output.Format)
		}
	}

	applyEnvOverrides(&cfg)

	if err := Validate(cfg); err != nil {
		if path == "" {
			return Config{}, fmt.Errorf("invalid config: %w", err)
		}
		return Config{}, fmt.Errorf("invalid config (%s): %w", path, err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEventsPath)); v != "" {
		cfg.Events.Path = v
		cfg.Events.Enabled = true
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvEvents))); err == nil {
		cfg.Events.Enabled = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSpecDirs)); v != "" {
		cfg.SpecDirs = filepath.SplitList(v)
	}
}

// Validate checks a configuration.
func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error, off", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format %q is not text or json", cfg.Log.Format)
	}
	switch cfg.Output.Format {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("output.format %q is not text or json", cfg.Output.Format)
	}
	if cfg.Events.Enabled && strings.TrimSpace(cfg.Events.Path) == "" {
		return fmt.Errorf("events.path is required when events are enabled")
	}
	return nil
}
