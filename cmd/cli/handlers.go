// handlers.go: Command handlers for the salve CLI
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"
	"go.yaml.in/yaml/v3"

	"github.com/fpedrini/salve"
	"github.com/fpedrini/salve/internal/logging"
)

// handleGreet generates a single greeting. The mode is selected by
// flags: --lang for multi-language, --time-based for time-of-day,
// neither for the standard greeting.
func (m *Manager) handleGreet(ctx *orpheus.Context) error {
	store, err := m.openStore(ctx)
	if err != nil {
		return err
	}

	engine := salve.NewEngine(store,
		salve.WithEngineLogger(logging.WithComponent("engine")),
		salve.WithEngineAudit(m.audit))

	name := ctx.GetArg(0)

	var greeting string
	switch {
	case ctx.GetFlagString("lang") != "":
		lang := ctx.GetFlagString("lang")
		greeting, err = engine.Multilang(name, lang)
		if err != nil {
			// Recoverable: report and keep the exit clean, the way the
			// interactive menu does.
			if salve.ErrorCode(err) == salve.ErrCodeUnsupportedLanguage {
				fmt.Printf("Language %q is not supported. Available: %s\n",
					lang, availableList(engine))
				return nil
			}
			return err
		}
	case ctx.GetFlagBool("time-based"):
		now := time.Now()
		if at := ctx.GetFlagString("at"); at != "" {
			now, err = parseClock(at)
			if err != nil {
				return errors.Wrap(err, salve.ErrCodeInvalidSetting, "invalid --at value").
					WithContext("at", at)
			}
		}
		greeting = engine.TimeBased(name, now)
	default:
		greeting = engine.Standard(name)
	}

	fmt.Println(greeting)

	if ctx.GetFlagBool("stats") {
		printStatistics(engine.Statistics())
	}
	return nil
}

// handleLanguages lists the configured language codes.
func (m *Manager) handleLanguages(ctx *orpheus.Context) error {
	store, err := m.openStore(ctx)
	if err != nil {
		return err
	}

	engine := salve.NewEngine(store)
	codes := engine.Languages()
	if len(codes) == 0 {
		fmt.Println("No greeting languages configured")
		return nil
	}

	fmt.Printf("Configured languages in %s:\n", store.Path())
	for _, code := range codes {
		fmt.Printf("  %s\n", code)
	}
	return nil
}

// handleConfigGet resolves a dotted path against the settings file.
func (m *Manager) handleConfigGet(ctx *orpheus.Context) error {
	key := ctx.GetArg(0)
	if key == "" {
		return errors.New(salve.ErrCodeInvalidSetting, "missing dotted path argument")
	}

	store, err := m.openStore(ctx)
	if err != nil {
		return err
	}

	value := store.Get(key, nil)
	if value == nil {
		if def := ctx.GetFlagString("default"); def != "" {
			fmt.Println(def)
			return nil
		}
		return errors.New(salve.ErrCodeInvalidSetting, fmt.Sprintf("key %q not found", key)).
			WithContext("path", store.Path())
	}

	fmt.Printf("%v\n", value)
	return nil
}

// handleConfigShow prints the whole settings document as YAML.
func (m *Manager) handleConfigShow(ctx *orpheus.Context) error {
	store, err := m.openStore(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(store.Document())
	if err != nil {
		return errors.Wrap(err, salve.ErrCodeIOError, "failed to render settings document")
	}
	fmt.Print(string(data))
	return nil
}

// handleConfigValidate loads the settings file and reports the outcome.
func (m *Manager) handleConfigValidate(ctx *orpheus.Context) error {
	path := m.settingsPath(ctx)
	format := salve.DetectFormat(path)

	if _, err := salve.NewStore(path); err != nil {
		fmt.Printf("Invalid %s settings: %v\n", format, err)
		return err
	}

	fmt.Printf("Valid %s settings: %s\n", format, path)
	return nil
}

// handleVersion prints version and build details.
func (m *Manager) handleVersion(ctx *orpheus.Context) error {
	fmt.Printf("salve %s\n", salve.Version)
	if ctx.GetFlagBool("verbose") {
		fmt.Printf("  go:        %s\n", runtime.Version())
		fmt.Printf("  formats:   YAML, JSON, TOML\n")
		fmt.Printf("  audit:     %v\n", m.audit != nil)
	}
	return nil
}

// printStatistics renders an engine snapshot for terminal output.
func printStatistics(stats salve.Statistics) {
	fmt.Println("Session statistics:")
	fmt.Printf("  total:      %d\n", stats.Total)
	fmt.Printf("  standard:   %d\n", stats.Standard)
	fmt.Printf("  multilang:  %d\n", stats.Multilang)
	fmt.Printf("  time-based: %d\n", stats.TimeBased)
	fmt.Printf("  custom:     %d\n", stats.Custom)
	for code, count := range stats.LanguageUse {
		fmt.Printf("  language %s: %d\n", code, count)
	}
	fmt.Printf("  elapsed:    %s\n", stats.Elapsed.Round(time.Millisecond))
}
