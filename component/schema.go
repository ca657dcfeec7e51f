package component

import (
	"fmt"
	"sort"
)

// ValidationError describes one configuration field that failed schema
// validation. Code is machine-readable and shared with UI form handling:
// "required", "type", "enum", "min", "max".
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidateConfig checks a configuration map against a ConfigSchema:
// required fields, declared types, enum membership, and numeric bounds.
// Unknown fields pass without complaint so configs survive schema
// evolution. The returned slice is empty for a valid config.
func ValidateConfig(config map[string]any, schema ConfigSchema) []ValidationError {
	var errs []ValidationError

	for _, name := range schema.Required {
		if _, ok := config[name]; !ok {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("Field %q is required", name),
				Code:    "required",
			})
		}
	}

	for name, value := range config {
		prop, ok := schema.Properties[name]
		if !ok {
			continue
		}

		if err := validateType(name, value, prop); err != nil {
			errs = append(errs, *err)
			continue
		}

		if len(prop.Enum) > 0 {
			if err := validateEnum(name, value, prop.Enum); err != nil {
				errs = append(errs, *err)
			}
		}

		if prop.Type == "int" || prop.Type == "float" {
			errs = append(errs, validateBounds(name, value, prop)...)
		}
	}

	return errs
}

// validateType checks the value against the property's declared type.
// JSON decoding turns all numbers into float64, so "int" accepts float64
// alongside the native integer kinds.
func validateType(fieldName string, value any, prop PropertySchema) *ValidationError {
	switch prop.Type {
	case "string":
		if _, ok := value.(string); !ok {
			return typeError(fieldName, "must be a string")
		}
	case "int":
		switch value.(type) {
		case int, int32, int64, float64:
		default:
			return typeError(fieldName, "must be an integer")
		}
	case "bool":
		if _, ok := value.(bool); !ok {
			return typeError(fieldName, "must be a boolean")
		}
	case "float":
		if _, ok := asFloat(value); !ok {
			return typeError(fieldName, "must be a number")
		}
	}
	return nil
}

func typeError(fieldName, constraint string) *ValidationError {
	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("Field %q %s", fieldName, constraint),
		Code:    "type",
	}
}

func validateEnum(fieldName string, value any, allowed []string) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return typeError(fieldName, "must be a string for enum validation")
	}

	for _, candidate := range allowed {
		if str == candidate {
			return nil
		}
	}

	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("Field %q must be one of: %v", fieldName, allowed),
		Code:    "enum",
	}
}

// validateBounds enforces Minimum/Maximum on a value that already passed
// type validation.
func validateBounds(fieldName string, value any, prop PropertySchema) []ValidationError {
	num, ok := asFloat(value)
	if !ok {
		return nil
	}

	var errs []ValidationError
	if prop.Minimum != nil && num < float64(*prop.Minimum) {
		errs = append(errs, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("Field %q must be >= %d", fieldName, *prop.Minimum),
			Code:    "min",
		})
	}
	if prop.Maximum != nil && num > float64(*prop.Maximum) {
		errs = append(errs, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("Field %q must be <= %d", fieldName, *prop.Maximum),
			Code:    "max",
		})
	}
	return errs
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// GetPropertyValue looks up a key in a possibly-nil configuration map.
func GetPropertyValue(config map[string]any, key string) (any, bool) {
	if config == nil {
		return nil, false
	}
	value, ok := config[key]
	return value, ok
}

// GetProperties filters schema properties by UI category ("basic" or
// "advanced"). Properties without a category count as advanced; an empty
// category returns everything.
func GetProperties(schema ConfigSchema, category string) map[string]PropertySchema {
	filtered := make(map[string]PropertySchema)
	for name, prop := range schema.Properties {
		if category == "" || propertyCategory(prop) == category {
			filtered[name] = prop
		}
	}
	return filtered
}

// IsComplexType reports whether a property needs a structured editor
// rather than a plain form input.
func IsComplexType(propType string) bool {
	return propType == "object" || propType == "array"
}

// SortedPropertyNames orders properties for display: basic before
// advanced, alphabetical within each category.
func SortedPropertyNames(schema ConfigSchema) []string {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		ci := propertyCategory(schema.Properties[names[i]])
		cj := propertyCategory(schema.Properties[names[j]])
		if ci != cj {
			return ci == "basic"
		}
		return names[i] < names[j]
	})

	return names
}

func propertyCategory(prop PropertySchema) string {
	if prop.Category == "" {
		return "advanced"
	}
	return prop.Category
}
