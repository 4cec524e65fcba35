// CLAUDE:SUMMARY YAML configuration with FLOORSPEECH_* environment overrides, validated before any command runs.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/floorspeech/pkg/match"
)

const envPrefix = "FLOORSPEECH_"

type config struct {
	Addr           string           `yaml:"addr" validate:"required"`
	TLS            bool             `yaml:"tls"`
	CertFile       string           `yaml:"cert_file" validate:"required_with=KeyFile"`
	KeyFile        string           `yaml:"key_file" validate:"required_with=CertFile"`
	RostersDir     string           `yaml:"rosters_dir" validate:"required"`
	SourcesDB      string           `yaml:"sources_db" validate:"required"`
	Output         string           `yaml:"output"`
	Database       string           `yaml:"database"`
	Workers        int              `yaml:"workers" validate:"gte=0"`
	Threshold      int              `yaml:"threshold" validate:"gte=1,lte=99"`
	Normalize      string           `yaml:"normalize" validate:"oneof=lowercase_ascii lowercase_utf8 none"`
	LogLevel       string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	Exceptions     match.Exceptions `yaml:"exceptions"`
	ExceptionsFile string           `yaml:"exceptions_file"`
	CheckInterval  time.Duration    `yaml:"check_interval" validate:"gte=0"`
}

func defaultConfig() config {
	return config{
		Addr:          ":8420",
		RostersDir:    "rosters",
		SourcesDB:     "rosters/sources.db",
		Threshold:     match.DefaultThreshold,
		Normalize:     "lowercase_ascii",
		LogLevel:      "info",
		CheckInterval: 24 * time.Hour,
	}
}

// loadConfig reads path over the defaults, then applies environment
// overrides. A missing file is not an error.
func loadConfig(path string, getenv func(string) string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *config, getenv func(string) string) error {
	str := map[string]*string{
		"ADDR":            &cfg.Addr,
		"CERT_FILE":       &cfg.CertFile,
		"KEY_FILE":        &cfg.KeyFile,
		"ROSTERS_DIR":     &cfg.RostersDir,
		"SOURCES_DB":      &cfg.SourcesDB,
		"OUTPUT":          &cfg.Output,
		"DATABASE":        &cfg.Database,
		"NORMALIZE":       &cfg.Normalize,
		"LOG_LEVEL":       &cfg.LogLevel,
		"EXCEPTIONS_FILE": &cfg.ExceptionsFile,
	}
	for key, dst := range str {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WORKERS":   &cfg.Workers,
		"THRESHOLD": &cfg.Threshold,
	}
	for key, dst := range ints {
		if v := getenv(envPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*dst = n
		}
	}

	if v := getenv(envPrefix + "TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sTLS: %w", envPrefix, err)
		}
		cfg.TLS = b
	}
	if v := getenv(envPrefix + "CHECK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCHECK_INTERVAL: %w", envPrefix, err)
		}
		cfg.CheckInterval = d
	}
	return nil
}

// exceptions merges the exception file over the inline table, or returns
// the curated defaults when neither is configured.
func (c config) exceptions() (match.Exceptions, error) {
	if len(c.Exceptions) == 0 && c.ExceptionsFile == "" {
		return match.DefaultExceptions(), nil
	}
	out := match.Exceptions{}
	for s, p := range c.Exceptions {
		out[s] = append(out[s], p...)
	}
	if c.ExceptionsFile != "" {
		file, err := match.LoadExceptions(c.ExceptionsFile)
		if err != nil {
			return nil, err
		}
		for s, p := range file {
			out[s] = append(out[s], p...)
		}
	}
	return out, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
