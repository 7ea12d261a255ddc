// audit_backend.go: Storage backends for the audit trail
//
// Two backends behind one interface: SQLite for a queryable local
// database, JSONL for an append-only grep-able file. Backend selection
// is by output-file extension, with SQLite falling back to JSONL when
// the driver cannot open the database.
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend abstracts audit storage. Write must be safe for
// concurrent callers.
type auditBackend interface {
	Write(events []AuditEvent) error
	Flush() error
	Close() error
}

// createAuditBackend selects a backend from the configuration: explicit
// .jsonl extension forces the JSONL backend, everything else attempts
// SQLite first and degrades to JSONL so audit setup never blocks
// application startup.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if ext := filepath.Ext(config.OutputFile); ext == ".jsonl" || ext == ".log" {
		return newJSONLBackend(config.OutputFile)
	}

	dbPath := config.OutputFile
	if dbPath == "" {
		dbPath = defaultAuditPath()
	}

	backend, err := newSQLiteBackend(dbPath)
	if err == nil {
		return backend, nil
	}

	jsonlBackend, jsonlErr := newJSONLBackend(dbPath + ".jsonl")
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}
	return jsonlBackend, nil
}

// defaultAuditPath returns the default location of the SQLite audit
// database.
func defaultAuditPath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "salve", "audit.db")
}

// SQLite backend

type sqliteAuditBackend struct {
	db     *sql.DB
	insert *sql.Stmt
	mu     sync.Mutex
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp  TEXT NOT NULL,
	level      TEXT NOT NULL,
	event      TEXT NOT NULL,
	component  TEXT NOT NULL,
	file_path  TEXT,
	context    TEXT,
	process_id INTEGER,
	checksum   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_events_event ON audit_events(event);
`

func newSQLiteBackend(dbPath string) (*sqliteAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	// WAL keeps concurrent readers from blocking the flusher.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach audit database: %w", err)
	}

	if _, err := db.Exec(auditSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	insert, err := db.Prepare(`
		INSERT INTO audit_events (timestamp, level, event, component, file_path, context, process_id, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare audit insert: %w", err)
	}

	return &sqliteAuditBackend{db: db, insert: insert}, nil
}

func (s *sqliteAuditBackend) Write(events []AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}

	stmt := tx.Stmt(s.insert)
	for _, event := range events {
		contextJSON := ""
		if event.Context != nil {
			if data, err := json.Marshal(event.Context); err == nil {
				contextJSON = string(data)
			}
		}

		_, err := stmt.Exec(
			event.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			event.Level.String(),
			event.Event,
			event.Component,
			event.FilePath,
			contextJSON,
			event.ProcessID,
			event.Checksum,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit events: %w", err)
	}
	return nil
}

func (s *sqliteAuditBackend) Flush() error {
	// Writes are committed per batch; nothing buffered here.
	return nil
}

func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insert != nil {
		_ = s.insert.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// JSONL backend

type jsonlAuditBackend struct {
	file *os.File
	mu   sync.Mutex
}

func newJSONLBackend(path string) (*jsonlAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- path from audit config
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	return &jsonlAuditBackend{file: file}, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal audit event: %w", err)
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to append audit event: %w", err)
		}
	}
	return nil
}

func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Sync()
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.file.Sync(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}
