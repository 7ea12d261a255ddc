// parsers.go: Settings document parsers
//
// Format support is deliberately small: YAML is the primary settings
// format, JSON and TOML are accepted for callers that already keep their
// configuration in one of those. Parsers must produce nested
// map[string]any trees so that dotted-path lookup works uniformly.
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.yaml.in/yaml/v3"
)

// DocumentFormat identifies the settings file format, detected from the
// file extension.
type DocumentFormat int

const (
	FormatYAML DocumentFormat = iota
	FormatJSON
	FormatTOML
	FormatUnknown
)

// String returns the format name for logging and error messages.
func (f DocumentFormat) String() string {
	switch f {
	case FormatYAML:
		return "YAML"
	case FormatJSON:
		return "JSON"
	case FormatTOML:
		return "TOML"
	default:
		return "Unknown"
	}
}

// DetectFormat maps a file path to a document format by extension.
func DetectFormat(path string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

// ParseDocument parses raw settings data into a nested document tree.
// Mapping nodes become map[string]any, sequences []any, scalars the
// parser's native Go type.
func ParseDocument(data []byte, format DocumentFormat) (map[string]any, error) {
	switch format {
	case FormatYAML:
		return parseYAMLDocument(data)
	case FormatJSON:
		return parseJSONDocument(data)
	case FormatTOML:
		return parseTOMLDocument(data)
	default:
		return nil, fmt.Errorf("unsupported settings format: %s", format)
	}
}

func parseYAMLDocument(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return doc, nil
}

func parseJSONDocument(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc, nil
}

func parseTOMLDocument(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return doc, nil
}
