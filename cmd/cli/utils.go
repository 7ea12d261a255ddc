// utils.go: Shared helpers for the salve CLI
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/fpedrini/salve"
	"github.com/fpedrini/salve/internal/logging"
)

// settingsPath resolves the settings file path: explicit --config flag,
// then the SALVE_CONFIG environment variable, then the default.
func (m *Manager) settingsPath(ctx *orpheus.Context) string {
	path := ctx.GetFlagString("config")
	if path != defaultSettingsPath && path != "" {
		return path
	}
	if env := os.Getenv("SALVE_CONFIG"); env != "" {
		return env
	}
	if path == "" {
		return defaultSettingsPath
	}
	return path
}

// openStore loads the settings store for a command invocation.
func (m *Manager) openStore(ctx *orpheus.Context) (*salve.Store, error) {
	path := m.settingsPath(ctx)
	store, err := salve.NewStore(path,
		salve.WithStoreLogger(logging.WithComponent("settings")),
		salve.WithStoreAudit(m.audit))
	if err != nil {
		m.logger.Error().Err(err).Str("path", path).Msg("failed to load settings")
		return nil, err
	}
	return store, nil
}

// parseClock parses an HH:MM string into today's date at that time.
func parseClock(value string) (time.Time, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("expected HH:MM, got %q", value)
	}

	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected HH:MM, got %q", value)
	}

	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), nil
}

// availableList formats the configured languages for user-facing
// messages.
func availableList(engine *salve.Engine) string {
	codes := engine.Languages()
	if len(codes) == 0 {
		return "(none configured)"
	}
	return strings.Join(codes, ", ")
}
