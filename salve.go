// salve.go: Error taxonomy and shared helpers
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"github.com/agilira/go-errors"
)

// Version is the library version, reported by the CLI.
const Version = "1.0.0"

// Error codes for salve operations.
//
// ErrCodeConfigLoad marks a settings file that is missing, unreadable or
// malformed at load or reload time. ErrCodeUnsupportedLanguage marks a
// greeting request for a language code with no configured template; it is
// recoverable and callers are expected to show a message and continue.
// Every other missing setting degrades silently to a default.
const (
	ErrCodeConfigLoad          = "SALVE_CONFIG_LOAD"
	ErrCodeInvalidSetting      = "SALVE_INVALID_SETTING"
	ErrCodeUnsupportedLanguage = "SALVE_UNSUPPORTED_LANGUAGE"
	ErrCodeInvalidAuditConfig  = "SALVE_INVALID_AUDIT_CONFIG"
	ErrCodeIOError             = "SALVE_IO_ERROR"
)

// ErrorCode extracts the stable error code from a salve error.
// Returns the empty string for nil errors and for errors without a code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	if coder, ok := err.(errors.ErrorCoder); ok {
		return string(coder.ErrorCode())
	}

	// go-errors renders as "[CODE]: message"
	errStr := err.Error()
	if len(errStr) > 2 && errStr[0] == '[' {
		for idx := 1; idx < len(errStr); idx++ {
			if errStr[idx] == ']' {
				return errStr[1:idx]
			}
		}
	}

	return ""
}
