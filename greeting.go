// greeting.go: Greeting engine with usage statistics
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/rs/zerolog"
)

// Settings paths the engine reads. Templates are resolved on every call
// so a store reload is picked up immediately.
const (
	keyDefaultName      = "greetings.default_name"
	keyStandardTemplate = "greetings.standard"
	keyLanguages        = "greetings.languages"
	keyTimeBasedEnabled = "greetings.time_based.enabled"
	keyTimeBasedPrefix  = "greetings.time_based."
	keyDecoration       = "output.decoration"
)

// Built-in fallbacks used when the corresponding setting is absent.
const (
	defaultName       = "World"
	defaultTemplate   = "Hello, {name}!"
	defaultDecoration = "✨"
)

// defaultTimeTemplates are the per-bucket fallbacks for time-based
// greetings.
var defaultTimeTemplates = map[string]string{
	"morning":   "Good morning, {name}!",
	"afternoon": "Good afternoon, {name}!",
	"evening":   "Good evening, {name}!",
	"night":     "Good night, {name}!",
}

// Statistics is a point-in-time snapshot of an engine's usage counters.
// Counters are monotonically non-decreasing; the per-language map is a
// copy and safe to retain.
type Statistics struct {
	Total        int            `json:"total_greetings"`
	Standard     int            `json:"standard_greetings"`
	Multilang    int            `json:"multilang_greetings"`
	TimeBased    int            `json:"time_based_greetings"`
	Custom       int            `json:"custom_messages"`
	LanguageUse  map[string]int `json:"language_usage"`
	SessionStart time.Time      `json:"session_start"`
	Elapsed      time.Duration  `json:"session_elapsed"`
}

// Engine formats greeting strings from templates resolved through a
// SettingsSource and records usage counters. Counters are plain ints
// owned by the engine instance: the intended usage model is a single
// goroutine per engine, any number of engines per store.
type Engine struct {
	settings SettingsSource
	logger   zerolog.Logger
	audit    *AuditLogger

	total        int
	standard     int
	multilang    int
	timeBased    int
	custom       int
	languageUse  map[string]int
	sessionStart time.Time
}

// EngineOption customises Engine construction.
type EngineOption func(*Engine)

// WithEngineLogger injects the logger used for per-greeting diagnostics.
func WithEngineLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithEngineAudit attaches an audit logger that records greeting
// operations.
func WithEngineAudit(audit *AuditLogger) EngineOption {
	return func(e *Engine) { e.audit = audit }
}

// NewEngine creates a greeting engine bound to the given settings source.
// The session start timestamp is taken once, at construction.
func NewEngine(settings SettingsSource, opts ...EngineOption) *Engine {
	e := &Engine{
		settings:     settings,
		logger:       zerolog.Nop(),
		languageUse:  make(map[string]int),
		sessionStart: timecache.CachedTime(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Standard formats the base greeting. An empty name falls back to the
// configured default name, the template to a built-in one; the operation
// never fails.
func (e *Engine) Standard(name string) string {
	name = e.resolveName(name)
	template := e.stringSetting(keyStandardTemplate, defaultTemplate)

	greeting := expandTemplate(template, name)

	e.total++
	e.standard++
	e.logger.Debug().Str("name", name).Msg("standard greeting generated")
	e.recordAudit("standard", "")

	return greeting
}

// Multilang formats a greeting in the requested language. A language code
// with no configured template yields an ErrCodeUnsupportedLanguage error
// naming the code and the available ones; the error is recoverable and
// leaves the counters untouched.
func (e *Engine) Multilang(name, language string) (string, error) {
	name = e.resolveName(name)

	template, ok := e.languageTemplate(language)
	if !ok {
		available := strings.Join(e.Languages(), ", ")
		e.logger.Warn().Str("language", language).Msg("unsupported greeting language requested")
		return "", errors.New(ErrCodeUnsupportedLanguage,
			fmt.Sprintf("language %q is not configured", language)).
			WithContext("language", language).
			WithContext("available", available)
	}

	greeting := expandTemplate(template, name)

	e.total++
	e.multilang++
	e.languageUse[language]++
	e.logger.Debug().Str("name", name).Str("language", language).Msg("multilang greeting generated")
	e.recordAudit("multilang", language)

	return greeting, nil
}

// TimeBased formats a greeting for the hour of day of now, which is an
// explicit input so behaviour is deterministic and testable. Bucket
// boundaries are half-open: [5,12) morning, [12,17) afternoon, [17,21)
// evening, night otherwise. When greetings.time_based.enabled is false
// the engine degrades to the standard greeting.
func (e *Engine) TimeBased(name string, now time.Time) string {
	if !e.boolSetting(keyTimeBasedEnabled, true) {
		return e.Standard(name)
	}

	name = e.resolveName(name)
	bucket := TimeBucket(now.Hour())
	template := e.stringSetting(keyTimeBasedPrefix+bucket, defaultTimeTemplates[bucket])

	greeting := expandTemplate(template, name)

	e.total++
	e.timeBased++
	e.logger.Debug().Str("name", name).Str("bucket", bucket).Msg("time-based greeting generated")
	e.recordAudit("time_based", "")

	return greeting
}

// Custom trims and decorates a free-form message. The decoration string
// comes from output.decoration with a built-in default.
func (e *Engine) Custom(message string) string {
	decoration := e.stringSetting(keyDecoration, defaultDecoration)
	processed := fmt.Sprintf("%s %s %s", decoration, strings.TrimSpace(message), decoration)

	e.total++
	e.custom++
	e.logger.Debug().Msg("custom message processed")
	e.recordAudit("custom", "")

	return processed
}

// Languages returns the configured language codes in sorted order.
func (e *Engine) Languages() []string {
	languages, _ := e.settings.Get(keyLanguages, nil).(map[string]any)
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Statistics returns a snapshot of the usage counters without mutating
// engine state. Elapsed is measured against the session start timestamp
// taken at construction.
func (e *Engine) Statistics() Statistics {
	usage := make(map[string]int, len(e.languageUse))
	for code, count := range e.languageUse {
		usage[code] = count
	}

	return Statistics{
		Total:        e.total,
		Standard:     e.standard,
		Multilang:    e.multilang,
		TimeBased:    e.timeBased,
		Custom:       e.custom,
		LanguageUse:  usage,
		SessionStart: e.sessionStart,
		Elapsed:      timecache.CachedTime().Sub(e.sessionStart),
	}
}

// TimeBucket maps an hour of day to its greeting bucket label.
func TimeBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// expandTemplate substitutes the single {name} placeholder.
func expandTemplate(template, name string) string {
	return strings.ReplaceAll(template, "{name}", name)
}

func (e *Engine) resolveName(name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return e.stringSetting(keyDefaultName, defaultName)
}

func (e *Engine) languageTemplate(language string) (string, bool) {
	languages, ok := e.settings.Get(keyLanguages, nil).(map[string]any)
	if !ok {
		return "", false
	}
	template, ok := languages[language].(string)
	return template, ok
}

func (e *Engine) stringSetting(key, def string) string {
	if v, ok := e.settings.Get(key, def).(string); ok {
		return v
	}
	return def
}

func (e *Engine) boolSetting(key string, def bool) bool {
	if v, ok := e.settings.Get(key, def).(bool); ok {
		return v
	}
	return def
}

func (e *Engine) recordAudit(operation, language string) {
	if e.audit != nil {
		e.audit.LogGreeting(operation, language)
	}
}
