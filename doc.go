// doc.go: Package documentation for salve
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

// Package salve implements a configuration-driven greeting engine.
//
// The package has two cooperating components:
//
//   - Store: loads a nested settings document (YAML, JSON or TOML) from a
//     file and answers dotted-path lookups such as "greetings.languages.es"
//     with a caller-supplied default. The document is replaced wholesale on
//     Reload; it is never partially mutated.
//
//   - Engine: formats greeting strings from templates resolved through a
//     Store (or any SettingsSource) and tracks in-process usage counters.
//     Templates carry a single {name} placeholder. Missing optional
//     settings degrade to built-in defaults; only an unknown language code
//     is reported as an error.
//
// Example:
//
//	store, err := salve.NewStore("config/settings.yaml")
//	if err != nil {
//	    // SALVE_CONFIG_LOAD: missing, unreadable or malformed file
//	}
//	engine := salve.NewEngine(store)
//
//	fmt.Println(engine.Standard("Alice"))          // "Hello, Alice!"
//	msg, err := engine.Multilang("Carlos", "es")   // "¡Hola, Carlos!"
//	fmt.Println(engine.TimeBased("Bob", time.Now()))
//
//	stats := engine.Statistics()
//	fmt.Println(stats.Total, stats.LanguageUse)
//
// Errors carry stable codes from the github.com/agilira/go-errors library;
// ErrorCode extracts them for call-site dispatch. An optional AuditLogger
// records settings loads, reloads and greeting operations to a JSONL file
// or a SQLite database.
//
// The Engine is intended for single-goroutine use: statistics are plain
// counters owned by the engine instance. The Store may be shared; Reload
// swaps the document with a single atomic pointer store, so readers always
// observe either the old or the new tree.
package salve
