// manager.go: Orpheus CLI manager for salve
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

// Package cli implements the salve command-line interface on top of the
// Orpheus framework: greeting commands, settings inspection and
// diagnostics as git-style subcommands.
package cli

import (
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/rs/zerolog"

	"github.com/fpedrini/salve"
	"github.com/fpedrini/salve/internal/logging"
)

// defaultSettingsPath is used when neither --config nor SALVE_CONFIG is
// given.
const defaultSettingsPath = "config/settings.yaml"

// Manager wires the command tree and holds the shared CLI state.
type Manager struct {
	app    *orpheus.App
	logger zerolog.Logger
	audit  *salve.AuditLogger
}

// NewManager creates the CLI manager with all commands registered.
func NewManager() *Manager {
	app := orpheus.New("salve").
		SetDescription("Configuration-driven greeting toolkit").
		SetVersion(salve.Version)

	m := &Manager{
		app:    app,
		logger: logging.WithComponent("cli"),
	}

	m.setupGreetCommands()
	m.setupConfigCommands()
	m.setupUtilityCommands()

	return m
}

// WithAudit enables audit logging for settings loads performed by the
// CLI.
func (m *Manager) WithAudit(audit *salve.AuditLogger) *Manager {
	m.audit = audit
	return m
}

// Run executes the CLI with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupGreetCommands registers the greeting commands.
func (m *Manager) setupGreetCommands() {
	greetCmd := orpheus.NewCommand("greet", "Generate a greeting")
	greetCmd.SetHandler(m.handleGreet)
	greetCmd.AddFlag("config", "c", defaultSettingsPath, "Settings file (yaml|json|toml)")
	greetCmd.AddFlag("lang", "l", "", "Language code for a multi-language greeting")
	greetCmd.AddBoolFlag("time-based", "t", false, "Select the template by time of day")
	greetCmd.AddFlag("at", "", "", "Clock time HH:MM for --time-based (defaults to now)")
	greetCmd.AddBoolFlag("stats", "s", false, "Print session statistics after greeting")
	m.app.AddCommand(greetCmd)

	languagesCmd := orpheus.NewCommand("languages", "List configured greeting languages")
	languagesCmd.SetHandler(m.handleLanguages)
	languagesCmd.AddFlag("config", "c", defaultSettingsPath, "Settings file (yaml|json|toml)")
	m.app.AddCommand(languagesCmd)
}

// setupConfigCommands registers the 'config' command group for settings
// file inspection.
func (m *Manager) setupConfigCommands() {
	configCmd := orpheus.NewCommand("config", "Settings file operations")

	getCmd := configCmd.Subcommand("get", "Get a settings value by dotted path", m.handleConfigGet)
	getCmd.AddFlag("config", "c", defaultSettingsPath, "Settings file (yaml|json|toml)")
	getCmd.AddFlag("default", "d", "", "Value to print when the path is absent")

	showCmd := configCmd.Subcommand("show", "Print the whole settings document", m.handleConfigShow)
	showCmd.AddFlag("config", "c", defaultSettingsPath, "Settings file (yaml|json|toml)")

	validateCmd := configCmd.Subcommand("validate", "Validate a settings file", m.handleConfigValidate)
	validateCmd.AddFlag("config", "c", defaultSettingsPath, "Settings file (yaml|json|toml)")

	m.app.AddCommand(configCmd)
}

// setupUtilityCommands registers diagnostics.
func (m *Manager) setupUtilityCommands() {
	versionCmd := orpheus.NewCommand("version", "Show version information")
	versionCmd.SetHandler(m.handleVersion)
	versionCmd.AddBoolFlag("verbose", "v", false, "Include format and backend details")
	m.app.AddCommand(versionCmd)
}
