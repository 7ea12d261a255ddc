// main.go: Interactive greeting menu
//
// The original surface of the application: a stdin menu over the
// greeting engine with standard, multi-language, time-based and custom
// messages, session statistics and on-demand settings reload.
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"time"

	flashflags "github.com/agilira/flash-flags"

	"github.com/fpedrini/salve"
	"github.com/fpedrini/salve/internal/logging"
)

func main() {
	flags := flashflags.New("salve-menu")
	flags.SetDescription("Interactive configuration-driven greeting menu")
	flags.SetVersion(salve.Version)
	flags.String("config", "config/settings.yaml", "Settings file (yaml|json|toml)")
	flags.String("logging", "config/logging.yaml", "Logging configuration file")
	flags.String("audit-file", "", "Audit output file (.jsonl or SQLite database)")
	flags.Bool("no-audit", false, "Disable the audit trail")
	flags.SetEnvPrefix("SALVE_MENU")

	for _, arg := range os.Args[1:] {
		if arg == "--help" || arg == "-h" {
			flags.PrintHelp()
			return
		}
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flags.PrintHelp()
		os.Exit(1)
	}

	// Logging first: the config document is optional, absence degrades
	// to defaults like every other missing setting.
	logCfg, err := logging.LoadConfig(flags.GetString("logging"))
	if err != nil {
		logCfg = logging.Config{}
	}
	logCfg.Service = "salve-menu"
	logging.Configure(logCfg)
	logger := logging.WithComponent("menu")

	store, err := salve.NewStore(flags.GetString("config"),
		salve.WithStoreLogger(logging.WithComponent("settings")))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load settings, continuing with defaults")
		fmt.Fprintf(os.Stderr, "Warning: %v\nContinuing with built-in defaults.\n", err)
		store = salve.NewEmptyStore(salve.WithStoreLogger(logging.WithComponent("settings")))
	}

	// Application identity comes from the settings document.
	var appName, appVersion string
	var debug bool
	if err := salve.NewBinder(store.Document()).
		BindString(&appName, "app.name", "salve").
		BindString(&appVersion, "app.version", salve.Version).
		BindBool(&debug, "app.debug", false).
		Apply(); err != nil {
		logger.Warn().Err(err).Msg("malformed app settings, using defaults")
		appName, appVersion = "salve", salve.Version
	}

	audit := setupAudit(flags, store)
	if audit != nil {
		defer func() {
			if err := audit.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close audit logger")
			}
		}()
		store.AttachAudit(audit)
	}

	engine := salve.NewEngine(store,
		salve.WithEngineLogger(logging.WithComponent("engine")),
		salve.WithEngineAudit(audit))

	m := newMenu(engine, store, os.Stdin, os.Stdout, logger)
	m.greetHeader(appName, appVersion)
	m.run(time.Now)
}

// setupAudit builds the audit logger from settings, with flags taking
// precedence. Returns nil when auditing is off.
func setupAudit(flags *flashflags.FlagSet, store *salve.Store) *salve.AuditLogger {
	if flags.GetBool("no-audit") {
		return nil
	}

	cfg := salve.AuditConfig{
		Enabled:       store.GetBool("output.audit.enabled", false),
		OutputFile:    store.GetString("output.audit.file", ""),
		MinLevel:      salve.AuditInfo,
		BufferSize:    store.GetInt("output.audit.buffer_size", 256),
		FlushInterval: 5 * time.Second,
	}
	if file := flags.GetString("audit-file"); file != "" {
		cfg.Enabled = true
		cfg.OutputFile = file
	}
	if !cfg.Enabled {
		return nil
	}

	audit, err := salve.NewAuditLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: audit disabled: %v\n", err)
		return nil
	}
	return audit
}
