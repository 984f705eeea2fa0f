// Package config loads flashreview settings from flags, an optional YAML
// file and FLASHREVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FLASHREVIEW_"

// Config holds the runtime settings.
type Config struct {
	Mode       string `koanf:"mode" validate:"oneof=web term"`
	Addr       string `koanf:"addr" validate:"required,hostname_port"`
	Deck       string `koanf:"deck"`
	Repo       string `koanf:"repo"`
	ReposDir   string `koanf:"repos-dir" validate:"required_with=Repo"`
	DB         string `koanf:"db" validate:"required"`
	Session    string `koanf:"session" validate:"omitempty,uuid"`
	StorageKey string `koanf:"storage-key" validate:"required"`
	Export     string `koanf:"export" validate:"required"`
	LogLevel   string `koanf:"log-level" validate:"oneof=debug info warn error"`
	LogFormat  string `koanf:"log-format" validate:"oneof=text json"`
}

// Flags returns the command-line flag set. Flag defaults are the
// configuration defaults.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("flashreview", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Path to a YAML config file")
	fs.String("mode", "web", "Interface to run: web or term")
	fs.String("addr", "127.0.0.1:8080", "Listen address for the web interface")
	fs.String("deck", "", "Markdown file or directory of Q:/A: cards (default: built-in deck)")
	fs.String("repo", "", "Git repository of markdown cards")
	fs.String("repos-dir", "repos", "Directory git decks are cloned into")
	fs.String("db", ":memory:", "SQLite database for session progress")
	fs.String("session", "", "Session id to resume (default: start a new session)")
	fs.String("storage-key", "flash_deck_progress_v1", "Key progress is stored under")
	fs.String("export", "flash_progress.json", "File progress is exported to")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "text", "Log format: text or json")
	return fs
}

// Load parses args and layers the config file, the environment and
// explicitly set flags over the flag defaults, in that order of precedence
// from lowest to highest.
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps FLASHREVIEW_REPOS_DIR to repos-dir.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values and the deck source combination.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Deck != "" && c.Repo != "" {
		return errors.New("invalid config: deck and repo are mutually exclusive")
	}
	return nil
}

// SlogLevel converts LogLevel for log/slog.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
