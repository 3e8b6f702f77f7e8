// Package commands implements the gattkit CLI commands.
package commands

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gattkit/gattkit-go/internal/config"
	"github.com/gattkit/gattkit-go/internal/logging"
	"github.com/gattkit/gattkit-go/pkg/flags"
	"github.com/gattkit/gattkit-go/pkg/log"
	"github.com/gattkit/gattkit-go/pkg/registry"
	"github.com/gattkit/gattkit-go/pkg/spec"
	"github.com/gattkit/gattkit-go/pkg/specparse"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// ErrBadPayload is returned for payload arguments that are not hex.
var ErrBadPayload = errors.New("payload must be hex bytes")

// globalOptions are accepted by every command that loads specifications.
type globalOptions struct {
	ConfigPath string
	SpecFile   string
	JSON       bool
}

func (o *globalOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", "", "Config file (default: ./gattkit.toml if present)")
	fs.StringVar(&o.SpecFile, "spec", "", "Load the characteristic from this file instead of the registry")
	fs.BoolVar(&o.JSON, "json", false, "Output as JSON")
}

// env is the runtime built from global options.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	events log.Logger
	file   *log.FileLogger
}

func (e *env) Close() error {
	if e.file == nil {
		return nil
	}
	if err := e.file.Close(); err != nil {
		e.logger.Warn("event log", "path", e.file.Path(), "error", err)
		return err
	}
	e.logger.Debug("event log closed", "path", e.file.Path(), "events", e.file.Written())
	return nil
}

func (e *env) jsonOutput(o globalOptions) bool {
	return o.JSON || e.cfg.Output.Format == config.OutputJSON
}

func newEnv(o globalOptions, stderr io.Writer) (*env, error) {
	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger, events: log.NewSlogAdapter(logger)}
	if cfg.Events.Enabled {
		fl, err := log.NewFileLogger(cfg.Events.Path)
		if err != nil {
			return nil, err
		}
		e.events = log.Tee(e.events, fl)
		e.file = fl
	}
	return e, nil
}

func (e *env) resolver() *flags.Resolver {
	return flags.NewResolver(flags.Config{Events: e.events, Logger: e.logger})
}

func (e *env) registry() (*registry.Registry, error) {
	return registry.Load(e.logger, e.cfg.SpecDirs...)
}

// characteristic loads id from the registry, or file when set.
func (e *env) characteristic(id, file string) (*spec.Characteristic, error) {
	if file != "" {
		return specparse.LoadCharacteristic(file)
	}
	reg, err := e.registry()
	if err != nil {
		return nil, err
	}
	return reg.Characteristic(id)
}

// ParsePayload decodes hex bytes. A 0x prefix and space, colon, dash or
// underscore separators are accepted.
func ParsePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "_", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return b, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func describe(res flags.Resolution) string {
	switch {
	case res.Outcome == flags.OutcomeResolved && res.Field != "":
		return fmt.Sprintf("%s (field %q at bit %d)", res.Outcome, res.Field, res.Offset)
	case res.Reason != "":
		return fmt.Sprintf("%s (%s)", res.Outcome, res.Reason)
	default:
		return res.Outcome.String()
	}
}

func tagList(t spec.Tags) string {
	if t.Len() == 0 {
		return "(none)"
	}
	return t.String()
}
