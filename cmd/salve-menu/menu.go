// menu.go: Menu loop and option handlers
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fpedrini/salve"
)

// menu drives the interactive loop. Reader and writer are injected so
// tests can script a session.
type menu struct {
	engine *salve.Engine
	store  *salve.Store
	in     *bufio.Scanner
	out    io.Writer
	logger zerolog.Logger
}

func newMenu(engine *salve.Engine, store *salve.Store, in io.Reader, out io.Writer, logger zerolog.Logger) *menu {
	return &menu{
		engine: engine,
		store:  store,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

func (m *menu) greetHeader(appName, appVersion string) {
	fmt.Fprintf(m.out, "\nWelcome to %s v%s\n", appName, appVersion)
}

// run executes the menu loop until the user exits or stdin closes. The
// clock is injected for deterministic time-based greetings in tests.
func (m *menu) run(clock func() time.Time) {
	for {
		fmt.Fprint(m.out, "\nChoose an option:\n"+
			"  1. Standard greeting\n"+
			"  2. Multi-language greeting\n"+
			"  3. Time-based greeting\n"+
			"  4. Custom message\n"+
			"  5. Show statistics\n"+
			"  6. Exit\n"+
			"  r. Reload settings\n")

		choice, ok := m.prompt("Enter your choice: ")
		if !ok {
			fmt.Fprintln(m.out, "\nGoodbye!")
			return
		}
		m.logger.Debug().Str("choice", choice).Msg("menu option selected")

		switch choice {
		case "1":
			m.handleStandard()
		case "2":
			m.handleMultilang()
		case "3":
			m.handleTimeBased(clock())
		case "4":
			m.handleCustom()
		case "5":
			m.handleStatistics()
		case "6", "q", "quit", "exit":
			m.logger.Info().Msg("exiting on user request")
			fmt.Fprintln(m.out, "\nGoodbye!")
			return
		case "r", "R":
			m.handleReload()
		default:
			m.logger.Warn().Str("choice", choice).Msg("invalid menu choice")
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}
	}
}

func (m *menu) handleStandard() {
	name, ok := m.prompt("Enter a name (empty for default): ")
	if !ok {
		return
	}
	fmt.Fprintln(m.out, m.engine.Standard(name))
}

func (m *menu) handleMultilang() {
	name, ok := m.prompt("Enter a name (empty for default): ")
	if !ok {
		return
	}
	language, ok := m.prompt(fmt.Sprintf("Enter a language code (%s): ", availableList(m.engine)))
	if !ok {
		return
	}

	greeting, err := m.engine.Multilang(name, language)
	if err != nil {
		// Recoverable by design: report and continue the loop.
		m.logger.Warn().Str("language", language).Msg("unsupported language requested")
		fmt.Fprintf(m.out, "Language %q is not supported. Available: %s\n",
			language, availableList(m.engine))
		return
	}
	fmt.Fprintln(m.out, greeting)
}

func (m *menu) handleTimeBased(now time.Time) {
	name, ok := m.prompt("Enter a name (empty for default): ")
	if !ok {
		return
	}
	fmt.Fprintln(m.out, m.engine.TimeBased(name, now))
}

func (m *menu) handleCustom() {
	message, ok := m.prompt("Enter your message: ")
	if !ok {
		return
	}
	if strings.TrimSpace(message) == "" {
		fmt.Fprintln(m.out, "Nothing to say?")
		return
	}
	fmt.Fprintln(m.out, m.engine.Custom(message))
}

func (m *menu) handleStatistics() {
	stats := m.engine.Statistics()

	fmt.Fprintln(m.out, "\nSession statistics:")
	fmt.Fprintf(m.out, "  total greetings:   %d\n", stats.Total)
	fmt.Fprintf(m.out, "  standard:          %d\n", stats.Standard)
	fmt.Fprintf(m.out, "  multi-language:    %d\n", stats.Multilang)
	fmt.Fprintf(m.out, "  time-based:        %d\n", stats.TimeBased)
	fmt.Fprintf(m.out, "  custom messages:   %d\n", stats.Custom)
	if len(stats.LanguageUse) > 0 {
		fmt.Fprintln(m.out, "  language usage:")
		for code, count := range stats.LanguageUse {
			fmt.Fprintf(m.out, "    %s: %d\n", code, count)
		}
	}
	fmt.Fprintf(m.out, "  session duration:  %.2f minutes\n", stats.Elapsed.Minutes())
}

func (m *menu) handleReload() {
	if err := m.store.Reload(); err != nil {
		fmt.Fprintf(m.out, "Reload failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Settings reloaded from %s\n", m.store.Path())
}

// prompt prints a prompt and reads one line. ok is false when stdin is
// closed.
func (m *menu) prompt(text string) (line string, ok bool) {
	fmt.Fprint(m.out, text)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// availableList formats the configured languages for user-facing
// messages.
func availableList(engine *salve.Engine) string {
	codes := engine.Languages()
	if len(codes) == 0 {
		return "none configured"
	}
	return strings.Join(codes, ", ")
}
