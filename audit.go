// audit.go: Audit trail for settings and greeting operations
//
// Records settings loads, reloads and greeting generation to a local
// audit store. Events are buffered and flushed in the background so the
// greeting path stays cheap. This is an observability feature: usage
// statistics themselves live only in the Engine and are never persisted.
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// AuditLevel classifies audit events.
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// AuditEvent is a single recorded operation. Checksum covers the
// identifying fields for tamper detection.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     AuditLevel     `json:"level"`
	Event     string         `json:"event"`
	Component string         `json:"component"`
	FilePath  string         `json:"file_path,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	ProcessID int            `json:"process_id"`
	Checksum  string         `json:"checksum"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	Enabled bool `json:"enabled"`

	// OutputFile selects the backend by extension: .jsonl for an
	// append-only JSON Lines file, anything else for SQLite. Empty uses
	// the default SQLite database under the user cache directory.
	OutputFile string `json:"output_file"`

	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultAuditConfig returns the configuration used when audit is enabled
// without further tuning: SQLite backend, info level, small buffer.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    "",
		MinLevel:      AuditInfo,
		BufferSize:    256,
		FlushInterval: 5 * time.Second,
	}
}

// AuditLogger buffers audit events and flushes them to a pluggable
// backend (SQLite or JSONL). Safe for concurrent use; the background
// flusher shares the buffer with callers under a mutex.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	processID   int
}

// NewAuditLogger creates an audit logger for the given configuration. A
// disabled configuration yields a logger whose Log calls are no-ops, so
// callers never need to nil-check twice.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	if !config.Enabled {
		return &AuditLogger{config: config}, nil
	}

	if config.BufferSize <= 0 {
		config.BufferSize = 256
	}
	if config.FlushInterval < 0 {
		return nil, errors.New(ErrCodeInvalidAuditConfig, "flush interval cannot be negative").
			WithContext("flush_interval", config.FlushInterval.String())
	}

	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidAuditConfig, "failed to initialize audit backend")
	}

	logger := &AuditLogger{
		config:    config,
		backend:   backend,
		buffer:    make([]AuditEvent, 0, config.BufferSize),
		stopCh:    make(chan struct{}),
		processID: os.Getpid(),
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records an audit event. Events below the configured minimum level
// are dropped; a full buffer triggers a synchronous flush.
func (al *AuditLogger) Log(level AuditLevel, event, component, filePath string, context map[string]any) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	auditEvent := AuditEvent{
		Timestamp: timecache.CachedTime(),
		Level:     level,
		Event:     event,
		Component: component,
		FilePath:  filePath,
		Context:   context,
		ProcessID: al.processID,
	}
	auditEvent.Checksum = checksumEvent(auditEvent)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, auditEvent)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferLocked()
	}
	al.bufferMu.Unlock()
}

// LogSettingsLoad records an initial settings load.
func (al *AuditLogger) LogSettingsLoad(path string) {
	al.Log(AuditInfo, "settings_load", "settings", path, nil)
}

// LogSettingsReload records a reload attempt and its outcome.
func (al *AuditLogger) LogSettingsReload(path string, ok bool) {
	level := AuditInfo
	if !ok {
		level = AuditWarn
	}
	al.Log(level, "settings_reload", "settings", path, map[string]any{"success": ok})
}

// LogGreeting records a greeting operation. language is empty for
// operations that are not language-specific.
func (al *AuditLogger) LogGreeting(operation, language string) {
	context := map[string]any{"operation": operation}
	if language != "" {
		context["language"] = language
	}
	al.Log(AuditInfo, "greeting", "engine", "", context)
}

// Flush writes all buffered events to the backend.
func (al *AuditLogger) Flush() error {
	if al == nil || al.backend == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferLocked()
}

// Close stops the background flusher, flushes remaining events and
// releases the backend.
func (al *AuditLogger) Close() error {
	if al == nil || al.backend == nil {
		return nil
	}

	if al.flushTicker != nil {
		al.flushTicker.Stop()
	}
	close(al.stopCh)

	if err := al.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit logger during close: %w", err)
	}
	return al.backend.Close()
}

func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferLocked writes the buffer to the backend; caller holds
// bufferMu.
func (al *AuditLogger) flushBufferLocked() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events: %w", err)
	}
	al.buffer = al.buffer[:0]
	return nil
}

func checksumEvent(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%v",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Event, event.Component, event.FilePath, event.Context)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
