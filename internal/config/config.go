// Package config loads donorql settings from a CUE file.
//
// A config file is unified with the embedded #Config schema, so unknown
// fields and ill-typed values are rejected with CUE's positioned errors,
// and omitted fields take the schema defaults: database "donorql.db",
// no organization, format "text", log_level "info" and reject_empty
// false. A typical file sets the tenant and overrides a default or two:
//
//	database:     "reports.db"
//	organization: "org-1"
//	log_level:    "debug"
//
// Command-line flags override file values (see Config.Override).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// DefaultFile is read when no config path is given and it exists in the
// working directory.
const DefaultFile = "donorql.cue"

// ErrMissingOrganization is returned by RequireOrganization.
var ErrMissingOrganization = errors.New("no organization configured: set organization in the config file or pass --org")

// Config is the resolved configuration.
type Config struct {
	Database     string `json:"database"`
	Organization string `json:"organization,omitempty"`
	Format       string `json:"format"`
	LogLevel     string `json:"log_level"`
	RejectEmpty  bool   `json:"reject_empty"`

	// Source is the file the values came from, empty for defaults only.
	Source string `json:"-"`
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := decode([]byte("{}"), "")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads a config file. An empty path loads DefaultFile when it
// exists and the defaults otherwise.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse unifies CUE source with the schema. filename is used in error
// positions only.
func Parse(data []byte, filename string) (Config, error) {
	cfg, err := decode(data, filename)
	if err != nil {
		return Config{}, err
	}
	cfg.Source = filename
	return cfg, nil
}

func decode(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	v := schema.Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}
	return cfg, nil
}

// formatCUEError flattens CUE's error list into one error that keeps
// file positions.
func formatCUEError(err error) error {
	return fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
}

// Override replaces a field with a command-line value. Empty values are
// ignored.
func (c *Config) Override(field, value string) error {
	if value == "" {
		return nil
	}
	switch field {
	case "database":
		c.Database = value
	case "organization":
		c.Organization = value
	case "format":
		if value != "text" && value != "json" {
			return fmt.Errorf("invalid format %q: must be text or json", value)
		}
		c.Format = value
	case "log_level":
		if _, err := parseLevel(value); err != nil {
			return err
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config field %q", field)
	}
	return nil
}

// RequireOrganization returns ErrMissingOrganization when no tenant is
// configured.
func (c Config) RequireOrganization() (string, error) {
	if c.Organization == "" {
		return "", ErrMissingOrganization
	}
	return c.Organization, nil
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", s)
}
