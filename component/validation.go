package component

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/c360/semreason/errors"
)

// Input limits enforced before any factory sees a configuration.
const (
	MaxStringLength = 1024        // longest accepted string value or key
	MaxJSONSize     = 1024 * 1024 // largest accepted raw config document
	MinPort         = 1
	MaxPort         = 65535
)

// ConfigValidator screens raw component configuration before it reaches a
// factory. It bounds document size, nesting depth, array length, and string
// content so a hostile or corrupted config cannot exhaust memory or smuggle
// control bytes into downstream systems.
type ConfigValidator struct {
	maxDepth     int
	maxArraySize int
	maxStringLen int
	maxJSONSize  int
}

// NewConfigValidator returns a validator with the platform limits.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		maxDepth:     10,
		maxArraySize: 1000,
		maxStringLen: MaxStringLength,
		maxJSONSize:  MaxJSONSize,
	}
}

// ValidateConfig checks a raw JSON config against all limits. An empty
// config is valid; components fill in their own defaults.
func (v *ConfigValidator) ValidateConfig(rawConfig json.RawMessage) error {
	if len(rawConfig) > v.maxJSONSize {
		return errors.WrapInvalid(
			fmt.Errorf("config size %d exceeds maximum %d", len(rawConfig), v.maxJSONSize),
			"ConfigValidator", "ValidateConfig", "size check")
	}
	if len(rawConfig) == 0 {
		return nil
	}

	// UseNumber keeps oversized numerics intact for the bounds check below
	// instead of silently folding them into float64.
	decoder := json.NewDecoder(strings.NewReader(string(rawConfig)))
	decoder.UseNumber()

	var config any
	if err := decoder.Decode(&config); err != nil {
		return errors.WrapInvalid(err, "ConfigValidator", "ValidateConfig", "JSON parsing")
	}

	if err := v.validateValue(config, 0); err != nil {
		return errors.Wrap(err, "ConfigValidator", "ValidateConfig", "deep validation")
	}
	return nil
}

func (v *ConfigValidator) validateValue(value any, depth int) error {
	if depth > v.maxDepth {
		return errors.WrapInvalid(
			fmt.Errorf("JSON depth %d exceeds maximum %d", depth, v.maxDepth),
			"ConfigValidator", "validateValue", "depth check")
	}

	switch val := value.(type) {
	case string:
		return v.validateString(val)

	case json.Number:
		if _, err := val.Int64(); err == nil {
			return nil
		}
		if _, err := val.Float64(); err != nil {
			return errors.WrapInvalid(err, "ConfigValidator", "validateValue", "number validation")
		}

	case []any:
		if len(val) > v.maxArraySize {
			return errors.WrapInvalid(
				fmt.Errorf("array size %d exceeds maximum %d", len(val), v.maxArraySize),
				"ConfigValidator", "validateValue", "array size check")
		}
		for i, elem := range val {
			if err := v.validateValue(elem, depth+1); err != nil {
				return errors.Wrap(err, "ConfigValidator", "validateValue",
					fmt.Sprintf("array element %d", i))
			}
		}

	case map[string]any:
		for key, field := range val {
			if len(key) > v.maxStringLen {
				return errors.WrapInvalid(
					fmt.Errorf("key '%s' length exceeds maximum", key),
					"ConfigValidator", "validateValue", "key length check")
			}
			if err := v.validateString(key); err != nil {
				return errors.Wrap(err, "ConfigValidator", "validateValue", "key validation")
			}
			if err := v.validateValue(field, depth+1); err != nil {
				return errors.Wrap(err, "ConfigValidator", "validateValue",
					fmt.Sprintf("object field '%s'", key))
			}
		}

	case bool, nil:

	default:
		return errors.WrapInvalid(
			fmt.Errorf("unexpected type %T in config", value),
			"ConfigValidator", "validateValue", "type check")
	}

	return nil
}

// validateString rejects oversized strings, null bytes, and control
// characters other than tab, newline, and carriage return.
func (v *ConfigValidator) validateString(s string) error {
	if len(s) > v.maxStringLen {
		return errors.WrapInvalid(
			fmt.Errorf("string length %d exceeds maximum %d", len(s), v.maxStringLen),
			"ConfigValidator", "validateString", "string length check")
	}
	if strings.ContainsRune(s, 0) {
		return errors.WrapInvalid(
			fmt.Errorf("string contains null byte"),
			"ConfigValidator", "validateString", "null byte check")
	}
	if idx := strings.IndexFunc(s, isDisallowedControl); idx >= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("string contains control character: 0x%02x", s[idx]),
			"ConfigValidator", "validateString", "control character check")
	}
	return nil
}

func isDisallowedControl(r rune) bool {
	return r < 0x20 && r != '\n' && r != '\r' && r != '\t'
}

// ValidateFactoryConfig is the security gate every raw config passes before
// factory execution.
func ValidateFactoryConfig(rawConfig json.RawMessage) error {
	return NewConfigValidator().ValidateConfig(rawConfig)
}

// Validatable lets a config struct run its own semantic checks after
// unmarshaling.
type Validatable interface {
	Validate() error
}

// SafeUnmarshal validates rawConfig, unmarshals it into target, and runs
// target's Validate method when it implements Validatable. Target must be a
// pointer. An empty config leaves target untouched.
func SafeUnmarshal(rawConfig json.RawMessage, target any) error {
	if err := ValidateFactoryConfig(rawConfig); err != nil {
		return errors.Wrap(err, "ConfigValidator", "SafeUnmarshal", "config validation")
	}
	if len(rawConfig) == 0 {
		return nil
	}

	if reflect.TypeOf(target).Kind() != reflect.Ptr {
		return errors.WrapInvalid(
			fmt.Errorf("target must be a pointer, got %T", target),
			"ConfigValidator", "SafeUnmarshal", "target type check")
	}

	if err := json.Unmarshal(rawConfig, target); err != nil {
		return errors.WrapInvalid(err, "ConfigValidator", "SafeUnmarshal", "JSON unmarshaling")
	}

	if validatable, ok := target.(Validatable); ok {
		if err := validatable.Validate(); err != nil {
			return errors.Wrap(err, "ConfigValidator", "SafeUnmarshal", "struct validation")
		}
	}
	return nil
}

// ValidateComponentName accepts names built from letters, digits, dash,
// underscore, and dot. Everything else is rejected so instance names stay
// safe to embed in NATS subjects and KV keys.
func ValidateComponentName(name string) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"ConfigValidator", "ValidateComponentName", "empty name")
	}
	if len(name) > MaxStringLength {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"ConfigValidator", "ValidateComponentName", "name too long")
	}
	for _, r := range name {
		if !isNameRune(r) {
			return errors.WrapInvalid(errors.ErrInvalidConfig,
				"ConfigValidator", "ValidateComponentName", "invalid name characters")
		}
	}
	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}

// ValidatePortNumber rejects ports outside the valid TCP/UDP range.
func ValidatePortNumber(port int) error {
	if port < MinPort || port > MaxPort {
		return errors.WrapInvalid(
			fmt.Errorf("port %d outside valid range %d-%d", port, MinPort, MaxPort),
			"ConfigValidator", "ValidatePortNumber", "port range validation")
	}
	return nil
}
