// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Default values.
const (
	DefaultBackend         = BackendFile
	DefaultTasksKey        = "itask_todos_v1"
	DefaultShowFinishedKey = "itask_show_finished"
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "text"
	DefaultTheme           = "classic"
	ConfigFileName         = "itask.toml"
)

// Config holds the full configuration for itask.
type Config struct {
	// Storage
	Backend         string `toml:"backend"`
	DataPath        string `toml:"data"`
	TasksKey        string `toml:"tasks_key"`
	ShowFinishedKey string `toml:"show_finished_key"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	// Output
	Theme   string `toml:"theme"`
	Group   bool   `toml:"group"`
	NoColor bool   `toml:"no_color"`

	// Yes skips confirmation prompts. Flag only.
	Yes bool `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.TasksKey = DefaultTasksKey
	cfg.ShowFinishedKey = DefaultShowFinishedKey
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Theme = DefaultTheme
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file ($XDG_CONFIG_HOME/itask/itask.toml)
// 3. Project config file (itask.toml in the current directory)
// 4. .env file and environment variables
// 5. CLI flags
//
// It returns the arguments left after flag parsing.
func Load(fs *flag.FlagSet, args []string) (*Config, []string, error) {
	cfg := &Config{}
	setDefaults(cfg)

	for _, p := range []string{userConfigFile(), ConfigFileName} {
		if p == "" {
			continue
		}
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, nil, fmt.Errorf("loading config file %s: %w", p, err)
		}
	}

	_ = godotenv.Load()
	loadFromEnv(cfg)

	rest, err := parseFlags(cfg, fs, args)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

// loadConfigFile decodes the TOML file at path into cfg. A missing file is not an error.
func loadConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func userConfigFile() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "itask", ConfigFileName)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "itask", ConfigFileName)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("ITASK_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("ITASK_DATA"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("ITASK_TASKS_KEY"); v != "" {
		cfg.TasksKey = v
	}
	if v := os.Getenv("ITASK_SHOW_FINISHED_KEY"); v != "" {
		cfg.ShowFinishedKey = v
	}
	if v := os.Getenv("ITASK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ITASK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ITASK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("ITASK_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("ITASK_GROUP"); v != "" {
		cfg.Group = boolFromString(v)
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
	}
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) ([]string, error) {
	if fs == nil {
		fs = flag.NewFlagSet("itask", flag.ContinueOnError)
	}
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: file, sqlite or memory")
	fs.StringVar(&cfg.DataPath, "data", cfg.DataPath, "path of the data file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json, logfmt")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "output theme: classic, neon, mono")
	fs.BoolVar(&cfg.Group, "group", cfg.Group, "group output by pending/done")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable colored output")
	fs.BoolVar(&cfg.Yes, "y", cfg.Yes, "answer yes to confirmation prompts")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

func finalize(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	cfg.DataPath = expandPath(cfg.DataPath)
	cfg.LogFile = expandPath(cfg.LogFile)
	if cfg.TasksKey == "" || cfg.ShowFinishedKey == "" {
		return errors.New("storage keys must not be empty")
	}
	if cfg.TasksKey == cfg.ShowFinishedKey {
		return fmt.Errorf("tasks_key and show_finished_key are both %q", cfg.TasksKey)
	}
	return nil
}

// expandPath expands ~/ and environment variables in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") ||
		(runtime.GOOS == "windows" && strings.HasPrefix(expanded, "~\\")) {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		if expanded == "~" {
			return home
		}
		return filepath.Join(home, expanded[2:])
	}
	return expanded
}

func boolFromString(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
