// binder.go: Typed binding of dotted settings keys to Go variables
//
// The dynamic Store.Get returns untyped values; the Binder is the strict
// counterpart for callers that expect a schema. Bind* methods collect
// intents, Apply resolves them in one pass and fails on the first type
// mismatch without having written anything.
//
// Binding goes through unsafe.Pointer with a type discriminator instead
// of reflection; the public Bind* API keeps it type-safe.
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package salve

import (
	"fmt"
	"strconv"
	"time"
	"unsafe"

	"github.com/agilira/go-errors"
)

type bindingKind uint8

const (
	bindString bindingKind = iota
	bindInt
	bindBool
	bindFloat64
	bindDuration
)

type settingBinding struct {
	target   unsafe.Pointer // raw pointer to the target variable
	key      string         // dotted settings key
	defValue string         // default in universal string form
	kind     bindingKind
}

// Binder binds dotted settings keys to typed Go variables with defaults.
type Binder struct {
	bindings []settingBinding
	doc      map[string]any
	err      error
}

// NewBinder creates a binder over a settings document tree, typically
// Store.Document().
func NewBinder(doc map[string]any) *Binder {
	return &Binder{
		bindings: make([]settingBinding, 0, 8),
		doc:      doc,
	}
}

// BindString binds a string setting with an optional default.
func (b *Binder) BindString(target *string, key string, defaultValue ...string) *Binder {
	defVal := ""
	if len(defaultValue) > 0 {
		defVal = defaultValue[0]
	}
	b.bindings = append(b.bindings, settingBinding{
		target:   unsafe.Pointer(target), // #nosec G103 -- pointer comes from a valid Go variable
		key:      key,
		defValue: defVal,
		kind:     bindString,
	})
	return b
}

// BindInt binds an int setting with an optional default.
func (b *Binder) BindInt(target *int, key string, defaultValue ...int) *Binder {
	defVal := "0"
	if len(defaultValue) > 0 {
		defVal = strconv.Itoa(defaultValue[0])
	}
	b.bindings = append(b.bindings, settingBinding{
		target:   unsafe.Pointer(target), // #nosec G103 -- pointer comes from a valid Go variable
		key:      key,
		defValue: defVal,
		kind:     bindInt,
	})
	return b
}

// BindBool binds a bool setting with an optional default.
func (b *Binder) BindBool(target *bool, key string, defaultValue ...bool) *Binder {
	defVal := "false"
	if len(defaultValue) > 0 && defaultValue[0] {
		defVal = "true"
	}
	b.bindings = append(b.bindings, settingBinding{
		target:   unsafe.Pointer(target), // #nosec G103 -- pointer comes from a valid Go variable
		key:      key,
		defValue: defVal,
		kind:     bindBool,
	})
	return b
}

// BindFloat64 binds a float64 setting with an optional default.
func (b *Binder) BindFloat64(target *float64, key string, defaultValue ...float64) *Binder {
	defVal := "0.0"
	if len(defaultValue) > 0 {
		defVal = strconv.FormatFloat(defaultValue[0], 'f', -1, 64)
	}
	b.bindings = append(b.bindings, settingBinding{
		target:   unsafe.Pointer(target), // #nosec G103 -- pointer comes from a valid Go variable
		key:      key,
		defValue: defVal,
		kind:     bindFloat64,
	})
	return b
}

// BindDuration binds a time.Duration setting with an optional default.
func (b *Binder) BindDuration(target *time.Duration, key string, defaultValue ...time.Duration) *Binder {
	defVal := "0s"
	if len(defaultValue) > 0 {
		defVal = defaultValue[0].String()
	}
	b.bindings = append(b.bindings, settingBinding{
		target:   unsafe.Pointer(target), // #nosec G103 -- pointer comes from a valid Go variable
		key:      key,
		defValue: defVal,
		kind:     bindDuration,
	})
	return b
}

// Apply resolves all collected bindings in a single pass. The first
// failing binding aborts with an ErrCodeInvalidSetting error; no target
// is written before validation of its value succeeds.
func (b *Binder) Apply() error {
	if b.err != nil {
		return b.err
	}

	for _, binding := range b.bindings {
		if err := b.applyBinding(binding); err != nil {
			return errors.Wrap(err, ErrCodeInvalidSetting, "failed to bind setting").
				WithContext("key", binding.key)
		}
	}

	return nil
}

func (b *Binder) applyBinding(binding settingBinding) error {
	value, ok := lookupPath(b.doc, binding.key)
	if !ok {
		value = binding.defValue
	}

	switch binding.kind {
	case bindString:
		*(*string)(binding.target) = toString(value)
	case bindInt:
		parsed, err := toInt(value)
		if err != nil {
			return err
		}
		*(*int)(binding.target) = parsed
	case bindBool:
		parsed, err := toBool(value)
		if err != nil {
			return err
		}
		*(*bool)(binding.target) = parsed
	case bindFloat64:
		parsed, err := toFloat64(value)
		if err != nil {
			return err
		}
		*(*float64)(binding.target) = parsed
	case bindDuration:
		parsed, err := toDuration(value)
		if err != nil {
			return err
		}
		*(*time.Duration)(binding.target) = parsed
	default:
		return errors.New(ErrCodeInvalidSetting, fmt.Sprintf("unsupported binding kind: %d", binding.kind))
	}

	return nil
}

// Scalar conversions covering the value types the three parsers emit.

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", value)
	}
}

func toDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		return time.ParseDuration(v)
	case int:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to time.Duration", value)
	}
}
