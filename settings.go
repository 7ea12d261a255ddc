// settings.go: Settings store with dotted-path access and on-demand reload
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/agilira/go-errors"
	"github.com/rs/zerolog"
)

// SettingsSource is the single capability the greeting engine needs from
// its configuration. Tests provide stub implementations; production code
// uses *Store.
type SettingsSource interface {
	// Get resolves a dotted path ("greetings.languages.es") against the
	// settings document, returning def when any segment is absent.
	Get(key string, def any) any
}

// Store loads a nested settings document from a file and answers
// dotted-path lookups. The in-memory document is immutable between
// reloads: Reload parses the file again and replaces the whole tree with
// a single atomic pointer swap, so concurrent readers never observe a
// partially updated document.
type Store struct {
	path   string
	format DocumentFormat
	logger zerolog.Logger
	audit  *AuditLogger

	doc atomic.Pointer[map[string]any]
}

// StoreOption customises Store construction.
type StoreOption func(*Store)

// WithStoreLogger injects the logger used for load and lookup diagnostics.
func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithStoreAudit attaches an audit logger that records settings loads and
// reloads.
func WithStoreAudit(audit *AuditLogger) StoreOption {
	return func(s *Store) { s.audit = audit }
}

// NewStore reads and parses the settings file at path. The format is
// detected from the file extension (.yaml/.yml, .json, .toml).
//
// A missing, unreadable or malformed file yields an ErrCodeConfigLoad
// error; callers typically log it and either abort or continue with an
// empty document via NewEmptyStore.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:   path,
		format: DetectFormat(path),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.format == FormatUnknown {
		return nil, errors.New(ErrCodeConfigLoad, "unsupported settings file extension").
			WithContext("path", path)
	}

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	s.doc.Store(&doc)

	s.logger.Info().Str("path", path).Str("format", s.format.String()).Msg("settings loaded")
	if s.audit != nil {
		s.audit.LogSettingsLoad(path)
	}

	return s, nil
}

// NewEmptyStore returns a store over an empty document, for callers that
// choose to proceed after a load failure. Reload is a no-op until the
// store is bound to a path.
func NewEmptyStore(opts ...StoreOption) *Store {
	s := &Store{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	doc := make(map[string]any)
	s.doc.Store(&doc)
	return s
}

// load reads and parses the backing file without touching store state.
func (s *Store) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- path is caller-provided by design
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeConfigLoad, "failed to read settings file").
			WithContext("path", s.path)
	}

	doc, err := ParseDocument(data, s.format)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeConfigLoad, "failed to parse settings file").
			WithContext("path", s.path).
			WithContext("format", s.format.String())
	}

	return doc, nil
}

// Reload re-reads the settings file and atomically replaces the in-memory
// document. On failure the previous document stays in place and an
// ErrCodeConfigLoad error is returned.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	doc, err := s.load()
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("settings reload failed")
		if s.audit != nil {
			s.audit.LogSettingsReload(s.path, false)
		}
		return err
	}

	s.doc.Store(&doc)
	s.logger.Info().Str("path", s.path).Msg("settings reloaded")
	if s.audit != nil {
		s.audit.LogSettingsReload(s.path, true)
	}
	return nil
}

// AttachAudit binds an audit logger after construction, for callers that
// need the settings document itself to configure auditing. The initial
// load is recorded retroactively.
func (s *Store) AttachAudit(audit *AuditLogger) {
	s.audit = audit
	if audit != nil && s.path != "" {
		audit.LogSettingsLoad(s.path)
	}
}

// Path returns the file path the store was constructed with.
func (s *Store) Path() string {
	return s.path
}

// Document returns the current document tree. The tree is shared, not
// copied; treat it as read-only.
func (s *Store) Document() map[string]any {
	if ptr := s.doc.Load(); ptr != nil {
		return *ptr
	}
	return map[string]any{}
}

// Get resolves a dotted path against the current document, descending one
// mapping key per segment. Every segment except the last must resolve to
// a mapping; the final segment may hold any value type. Missing keys and
// non-mapping intermediates yield def — lookup never fails.
func (s *Store) Get(key string, def any) any {
	value, ok := lookupPath(s.Document(), key)
	if !ok {
		s.logger.Debug().Str("key", key).Interface("default", def).Msg("setting absent, using default")
		return def
	}
	return value
}

// lookupPath walks a nested document one dotted segment at a time.
func lookupPath(doc map[string]any, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	if !strings.Contains(key, ".") {
		value, ok := doc[key]
		return value, ok
	}

	parts := strings.Split(key, ".")
	current := doc
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		nested, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = nested
	}

	return nil, false
}

// Typed accessors. These degrade to the default on type mismatch, in line
// with the "missing-but-optional settings are not failures" contract.
// Callers that want a hard failure on mismatch use a Binder instead.

// GetString resolves a dotted path as a string.
func (s *Store) GetString(key, def string) string {
	switch v := s.Get(key, def).(type) {
	case string:
		return v
	default:
		return def
	}
}

// GetBool resolves a dotted path as a bool. String values "true"/"false"
// are accepted for formats that do not distinguish scalar types.
func (s *Store) GetBool(key string, def bool) bool {
	switch v := s.Get(key, def).(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}

// GetInt resolves a dotted path as an int, accepting the integer and
// float scalar types the three parsers produce.
func (s *Store) GetInt(key string, def int) int {
	switch v := s.Get(key, def).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}

// GetFloat64 resolves a dotted path as a float64.
func (s *Store) GetFloat64(key string, def float64) float64 {
	switch v := s.Get(key, def).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// GetStringMap resolves a dotted path as a mapping node. Returns nil when
// the path is absent or not a mapping.
func (s *Store) GetStringMap(key string) map[string]any {
	if v, ok := s.Get(key, nil).(map[string]any); ok {
		return v
	}
	return nil
}

// AppInfo returns the configured application name and version with
// built-in defaults.
func (s *Store) AppInfo() (name, version string) {
	return s.GetString("app.name", "salve"), s.GetString("app.version", Version)
}

// DebugEnabled reports whether app.debug is set.
func (s *Store) DebugEnabled() bool {
	return s.GetBool("app.debug", false)
}
