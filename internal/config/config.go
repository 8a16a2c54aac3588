// Package config reads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/faizmokh/timesheets/internal/files"
)

// Config holds all application configuration.
type Config struct {
	Home      string
	Database  string
	Workers   int
	LogLevel  string
	LogFormat string
}

// Load reads envFile (skipped when absent) and then the environment. Values
// already set in the environment win over the file. An empty envFile means
// ".env" in the working directory.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	home, err := files.ResolveBasePath()
	if err != nil {
		return nil, fmt.Errorf("resolve home: %w", err)
	}

	workers, err := getEnvAsInt("TIMESHEETS_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Home:      home,
		Database:  getEnv("TIMESHEETS_DB", ""),
		Workers:   workers,
		LogLevel:  strings.ToLower(getEnv("TIMESHEETS_LOG_LEVEL", "warn")),
		LogFormat: strings.ToLower(getEnv("TIMESHEETS_LOG_FORMAT", "text")),
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("TIMESHEETS_WORKERS must be at least 1, got %d", c.Workers)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("TIMESHEETS_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("TIMESHEETS_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return intVal, nil
}
