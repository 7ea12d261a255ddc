// cli_test.go: CLI command tests
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpedrini/salve"
)

const cliSettingsFixture = `app:
  name: "cliapp"
  version: "1.2.3"

greetings:
  default_name: "Friend"
  standard: "Hello, {name}!"
  languages:
    en: "Hello, {name}!"
    it: "Ciao, {name}!"
  time_based:
    enabled: true
    morning: "Good morning, {name}!"
`

// newTestManager writes a settings fixture and points SALVE_CONFIG at it
// so commands resolve the temp file without --config plumbing.
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(cliSettingsFixture), 0o600); err != nil {
		t.Fatalf("Failed to write settings fixture: %v", err)
	}
	t.Setenv("SALVE_CONFIG", path)
	return NewManager()
}

// runCapture executes the CLI and returns what it printed to stdout.
func runCapture(t *testing.T, m *Manager, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := m.Run(args)

	os.Stdout = old
	_ = w.Close()
	data, _ := io.ReadAll(r)
	_ = r.Close()

	return string(data), runErr
}

func TestCLI_Greet(t *testing.T) {
	t.Run("standard", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "greet", "Alice")
		if err != nil {
			t.Fatalf("greet should succeed: %v", err)
		}
		if !strings.Contains(out, "Hello, Alice!") {
			t.Errorf("output = %q, want the standard greeting", out)
		}
	})

	t.Run("default_name", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "greet")
		if err != nil {
			t.Fatalf("greet without a name should succeed: %v", err)
		}
		if !strings.Contains(out, "Hello, Friend!") {
			t.Errorf("output = %q, want the configured default name", out)
		}
	})

	t.Run("multilang", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "greet", "Marco", "--lang", "it")
		if err != nil {
			t.Fatalf("greet --lang should succeed: %v", err)
		}
		if !strings.Contains(out, "Ciao, Marco!") {
			t.Errorf("output = %q, want the Italian greeting", out)
		}
	})

	t.Run("unsupported_language_is_recoverable", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "greet", "X", "--lang", "zz")
		if err != nil {
			t.Fatalf("unsupported language must not be a command failure: %v", err)
		}
		if !strings.Contains(out, "not supported") || !strings.Contains(out, "en, it") {
			t.Errorf("output = %q, want a message naming the available codes", out)
		}
	})

	t.Run("time_based_at", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "greet", "Bob", "--time-based", "--at", "09:30")
		if err != nil {
			t.Fatalf("greet --time-based should succeed: %v", err)
		}
		if !strings.Contains(out, "Good morning, Bob!") {
			t.Errorf("output = %q, want the morning greeting", out)
		}
	})

	t.Run("invalid_at", func(t *testing.T) {
		m := newTestManager(t)
		_, err := runCapture(t, m, "greet", "--time-based", "--at", "25:99")
		if err == nil {
			t.Fatal("invalid --at should fail")
		}
		if code := salve.ErrorCode(err); code != salve.ErrCodeInvalidSetting {
			t.Errorf("error code = %q, want %q", code, salve.ErrCodeInvalidSetting)
		}
	})

	t.Run("stats", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "greet", "Alice", "--stats")
		if err != nil {
			t.Fatalf("greet --stats should succeed: %v", err)
		}
		if !strings.Contains(out, "Session statistics:") || !strings.Contains(out, "total:      1") {
			t.Errorf("output = %q, want a statistics block with one greeting", out)
		}
	})

	t.Run("missing_settings_file", func(t *testing.T) {
		t.Setenv("SALVE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
		m := NewManager()
		_, err := runCapture(t, m, "greet")
		if err == nil {
			t.Fatal("greet should fail when the settings file is missing")
		}
		if code := salve.ErrorCode(err); code != salve.ErrCodeConfigLoad {
			t.Errorf("error code = %q, want %q", code, salve.ErrCodeConfigLoad)
		}
	})
}

func TestCLI_Languages(t *testing.T) {
	m := newTestManager(t)
	out, err := runCapture(t, m, "languages")
	if err != nil {
		t.Fatalf("languages should succeed: %v", err)
	}
	if !strings.Contains(out, "en") || !strings.Contains(out, "it") {
		t.Errorf("output = %q, want both configured codes", out)
	}
}

func TestCLI_Config(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "config", "get", "app.name")
		if err != nil {
			t.Fatalf("config get should succeed: %v", err)
		}
		if !strings.Contains(out, "cliapp") {
			t.Errorf("output = %q, want the configured value", out)
		}
	})

	t.Run("get_missing_key", func(t *testing.T) {
		m := newTestManager(t)
		_, err := runCapture(t, m, "config", "get", "no.such.key")
		if err == nil {
			t.Fatal("config get on a missing key should fail")
		}
		if code := salve.ErrorCode(err); code != salve.ErrCodeInvalidSetting {
			t.Errorf("error code = %q, want %q", code, salve.ErrCodeInvalidSetting)
		}
	})

	t.Run("get_missing_key_with_default", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "config", "get", "no.such.key", "--default", "fallback")
		if err != nil {
			t.Fatalf("config get with --default should succeed: %v", err)
		}
		if !strings.Contains(out, "fallback") {
			t.Errorf("output = %q, want the default value", out)
		}
	})

	t.Run("get_without_key", func(t *testing.T) {
		m := newTestManager(t)
		if _, err := runCapture(t, m, "config", "get"); err == nil {
			t.Error("config get without a path argument should fail")
		}
	})

	t.Run("show", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "config", "show")
		if err != nil {
			t.Fatalf("config show should succeed: %v", err)
		}
		if !strings.Contains(out, "cliapp") || !strings.Contains(out, "greetings:") {
			t.Errorf("output = %q, want the rendered document", out)
		}
	})

	t.Run("validate_valid", func(t *testing.T) {
		m := newTestManager(t)
		out, err := runCapture(t, m, "config", "validate")
		if err != nil {
			t.Fatalf("config validate should succeed: %v", err)
		}
		if !strings.Contains(out, "Valid YAML settings") {
			t.Errorf("output = %q, want a validation success line", out)
		}
	})

	t.Run("validate_invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("a: [broken"), 0o600); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
		t.Setenv("SALVE_CONFIG", path)
		m := NewManager()
		if _, err := runCapture(t, m, "config", "validate"); err == nil {
			t.Error("config validate should fail on malformed settings")
		}
	})
}

func TestCLI_Version(t *testing.T) {
	m := newTestManager(t)
	out, err := runCapture(t, m, "version")
	if err != nil {
		t.Fatalf("version should succeed: %v", err)
	}
	if !strings.Contains(out, salve.Version) {
		t.Errorf("output = %q, want the version string", out)
	}

	out, err = runCapture(t, m, "version", "--verbose")
	if err != nil {
		t.Fatalf("version --verbose should succeed: %v", err)
	}
	if !strings.Contains(out, "YAML, JSON, TOML") {
		t.Errorf("verbose output = %q, want format details", out)
	}
}

func TestParseClock(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseClock("17:45")
		if err != nil {
			t.Fatalf("parseClock(17:45) failed: %v", err)
		}
		if got.Hour() != 17 || got.Minute() != 45 {
			t.Errorf("parseClock = %v, want 17:45 today", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, value := range []string{"", "17", "25:00", "17:60", "ab:cd"} {
			if _, err := parseClock(value); err == nil {
				t.Errorf("parseClock(%q) should fail", value)
			}
		}
	})
}
