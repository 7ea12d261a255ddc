// logger.go: zerolog setup for the salve binaries
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process-wide zerolog logger from an
// optional logging document. Components never reach for the global
// directly; binaries configure once at startup and pass child loggers
// down by injection.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"
)

// Config captures the options of the logging subsystem.
type Config struct {
	Level   string    `yaml:"level"`  // "debug", "info", "warn", "error"
	Format  string    `yaml:"format"` // "console" or "json"
	File    string    `yaml:"file"`   // optional log file, appended to the console output
	Service string    `yaml:"-"`      // service name attached to every entry
	Output  io.Writer `yaml:"-"`      // defaults to os.Stderr
}

var (
	once sync.Once
	base zerolog.Logger
)

// New builds a logger from the given configuration without touching
// global state. Used directly by tests; binaries go through Configure.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	} else if env := os.Getenv("SALVE_LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if cfg.Format != "json" {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	if cfg.File != "" {
		if file, err := openLogFile(cfg.File); err == nil {
			writer = zerolog.MultiLevelWriter(writer, file)
		}
	}

	service := cfg.Service
	if service == "" {
		service = "salve"
	}

	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Configure initialises the global logger exactly once.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		base = New(cfg)
	})
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger annotated with a component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// LoadConfig reads a logging document (YAML mapping with level, format
// and file keys, optionally nested under a top-level "logging" section).
// Callers are expected to fall back to the zero Config when the file is
// absent, matching the degrade-to-defaults behaviour of the settings
// store.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is caller-provided by design
	if err != nil {
		return Config{}, fmt.Errorf("failed to read logging config: %w", err)
	}

	var wrapper struct {
		Logging *Config `yaml:"logging"`
		Config  `yaml:",inline"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Config{}, fmt.Errorf("failed to parse logging config: %w", err)
	}

	if wrapper.Logging != nil {
		return *wrapper.Logging, nil
	}
	return wrapper.Config, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- path from logging config
}
