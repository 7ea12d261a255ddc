// audit_test.go: Audit trail tests
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// jsonlAuditLogger builds an enabled logger over a JSONL file in a temp
// directory, with the background flusher off so tests control flushing.
func jsonlAuditLogger(t *testing.T) (*AuditLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewAuditLogger(AuditConfig{
		Enabled:    true,
		OutputFile: path,
		MinLevel:   AuditInfo,
		BufferSize: 16,
	})
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	return logger, path
}

func readAuditLines(t *testing.T, path string) []AuditEvent {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open audit file: %v", err)
	}
	defer func() { _ = file.Close() }()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("Failed to decode audit line: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestAuditLogger_JSONL(t *testing.T) {
	logger, path := jsonlAuditLogger(t)

	logger.LogSettingsLoad("/etc/salve/settings.yaml")
	logger.LogGreeting("multilang", "es")
	logger.LogSettingsReload("/etc/salve/settings.yaml", false)

	if err := logger.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	events := readAuditLines(t, path)
	if len(events) != 3 {
		t.Fatalf("got %d audit events, want 3", len(events))
	}

	load := events[0]
	if load.Event != "settings_load" || load.Component != "settings" {
		t.Errorf("load event = (%q, %q), want (settings_load, settings)", load.Event, load.Component)
	}
	if load.FilePath != "/etc/salve/settings.yaml" {
		t.Errorf("load file path = %q", load.FilePath)
	}
	if load.Checksum == "" {
		t.Error("events must carry a checksum")
	}
	if load.ProcessID != os.Getpid() {
		t.Errorf("process id = %d, want %d", load.ProcessID, os.Getpid())
	}

	greeting := events[1]
	if greeting.Event != "greeting" || greeting.Component != "engine" {
		t.Errorf("greeting event = (%q, %q)", greeting.Event, greeting.Component)
	}
	if greeting.Context["operation"] != "multilang" || greeting.Context["language"] != "es" {
		t.Errorf("greeting context = %v", greeting.Context)
	}

	// A failed reload is recorded at warn level.
	reload := events[2]
	if reload.Level != AuditWarn {
		t.Errorf("failed reload level = %s, want WARN", reload.Level)
	}
	if success, ok := reload.Context["success"].(bool); !ok || success {
		t.Errorf("failed reload context = %v, want success=false", reload.Context)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestAuditLogger_MinLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewAuditLogger(AuditConfig{
		Enabled:    true,
		OutputFile: path,
		MinLevel:   AuditWarn,
		BufferSize: 16,
	})
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}

	logger.Log(AuditInfo, "dropped", "test", "", nil)
	logger.Log(AuditWarn, "kept", "test", "", nil)
	if err := logger.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	events := readAuditLines(t, path)
	if len(events) != 1 || events[0].Event != "kept" {
		t.Errorf("events = %v, info-level entries must be dropped", events)
	}

	_ = logger.Close()
}

func TestAuditLogger_BufferAutoFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewAuditLogger(AuditConfig{
		Enabled:    true,
		OutputFile: path,
		BufferSize: 2,
	})
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}

	logger.LogGreeting("standard", "")
	logger.LogGreeting("custom", "")

	// The second event fills the buffer and must trigger a flush without
	// an explicit Flush call.
	if events := readAuditLines(t, path); len(events) != 2 {
		t.Errorf("got %d events before explicit flush, want 2", len(events))
	}

	_ = logger.Close()
}

func TestAuditLogger_Disabled(t *testing.T) {
	logger, err := NewAuditLogger(AuditConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewAuditLogger on disabled config failed: %v", err)
	}

	// Everything is a no-op, including on a nil receiver.
	logger.LogGreeting("standard", "")
	if err := logger.Flush(); err != nil {
		t.Errorf("Flush on disabled logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on disabled logger: %v", err)
	}

	var nilLogger *AuditLogger
	nilLogger.LogGreeting("standard", "")
	if err := nilLogger.Flush(); err != nil {
		t.Errorf("Flush on nil logger: %v", err)
	}
}

func TestNewAuditLogger_InvalidConfig(t *testing.T) {
	_, err := NewAuditLogger(AuditConfig{
		Enabled:       true,
		FlushInterval: -time.Second,
	})
	if err == nil {
		t.Fatal("negative flush interval should be rejected")
	}
	if code := ErrorCode(err); code != ErrCodeInvalidAuditConfig {
		t.Errorf("error code = %q, want %q", code, ErrCodeInvalidAuditConfig)
	}
}

func TestSQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	backend, err := newSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("newSQLiteBackend failed: %v", err)
	}

	events := []AuditEvent{
		{
			Timestamp: time.Now(),
			Level:     AuditInfo,
			Event:     "settings_load",
			Component: "settings",
			FilePath:  "/tmp/settings.yaml",
			ProcessID: os.Getpid(),
			Checksum:  "abc",
		},
		{
			Timestamp: time.Now(),
			Level:     AuditWarn,
			Event:     "settings_reload",
			Component: "settings",
			Context:   map[string]any{"success": false},
			ProcessID: os.Getpid(),
			Checksum:  "def",
		},
	}
	if err := backend.Write(events); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen audit database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("audit_events holds %d rows, want 2", count)
	}

	var level, context string
	err = db.QueryRow(
		"SELECT level, context FROM audit_events WHERE event = 'settings_reload'").
		Scan(&level, &context)
	if err != nil {
		t.Fatalf("Row query failed: %v", err)
	}
	if level != "WARN" {
		t.Errorf("level = %q, want WARN", level)
	}
	if context != `{"success":false}` {
		t.Errorf("context = %q, want JSON-encoded context", context)
	}
}

func TestCreateAuditBackend_Selection(t *testing.T) {
	t.Run("jsonl_by_extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		backend, err := createAuditBackend(AuditConfig{OutputFile: path})
		if err != nil {
			t.Fatalf("createAuditBackend failed: %v", err)
		}
		if _, ok := backend.(*jsonlAuditBackend); !ok {
			t.Errorf("backend = %T, want *jsonlAuditBackend", backend)
		}
		_ = backend.Close()
	})

	t.Run("sqlite_otherwise", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.db")
		backend, err := createAuditBackend(AuditConfig{OutputFile: path})
		if err != nil {
			t.Fatalf("createAuditBackend failed: %v", err)
		}
		if _, ok := backend.(*sqliteAuditBackend); !ok {
			t.Errorf("backend = %T, want *sqliteAuditBackend", backend)
		}
		_ = backend.Close()
	})
}

func TestStore_AuditIntegration(t *testing.T) {
	settingsPath := writeSettingsFile(t, "settings.yaml", "key: \"value\"\n")
	logger, auditPath := jsonlAuditLogger(t)

	store, err := NewStore(settingsPath, WithStoreAudit(logger))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if err := logger.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	events := readAuditLines(t, auditPath)
	if len(events) != 2 {
		t.Fatalf("got %d events, want load + reload", len(events))
	}
	if events[0].Event != "settings_load" || events[1].Event != "settings_reload" {
		t.Errorf("events = (%q, %q)", events[0].Event, events[1].Event)
	}

	_ = logger.Close()
}
