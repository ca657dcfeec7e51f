package component

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/pkg/cache"
)

// SchemaDirectives holds the parsed form of a `schema` struct tag.
// Defaults are kept as strings until GenerateConfigSchema converts them
// to the declared type.
type SchemaDirectives struct {
	Type        string
	Description string

	Category string // "basic" or "advanced"
	ReadOnly bool
	Editable bool
	Hidden   bool

	Default  any
	Required bool
	Min      *int
	Max      *int
	Enum     []string

	// Parsed and stored for forward compatibility, not yet rendered.
	Help        string
	Placeholder string
	Pattern     string
	Format      string
}

// PortFieldInfo tells the UI how to render one PortDefinition field.
type PortFieldInfo struct {
	Type     string `json:"type"`
	Editable bool   `json:"editable"`
}

// CacheFieldInfo tells the UI how to render one cache.Config field.
type CacheFieldInfo struct {
	Type     string   `json:"type"`
	Editable bool     `json:"editable"`
	Enum     []string `json:"enum,omitempty"`
	Min      *int     `json:"min,omitempty"`
}

var validSchemaTypes = map[string]bool{
	"string": true,
	"int":    true,
	"bool":   true,
	"float":  true,
	"enum":   true,
	"array":  true,
	"object": true,
	"ports":  true,
	"cache":  true,
}

// tagErr wraps a directive parse failure with the schema-tag context.
func tagErr(method, action, format string, args ...any) error {
	return errors.WrapInvalid(fmt.Errorf(format, args...), "SchemaTag", method, action)
}

// ParseSchemaTag parses one `schema` tag into directives.
//
// Directives are comma-separated. Key-value directives use a colon
// ("type:int", "enum:lru|ttl|none"); bare words are boolean flags
// (readonly, editable, hidden, required). The type directive is
// mandatory; description falls back to the field name at generation
// time when absent.
func ParseSchemaTag(tag string) (SchemaDirectives, error) {
	var d SchemaDirectives

	if tag == "" {
		return d, tagErr("ParseSchemaTag", "tag validation", "empty schema tag")
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var err error
		if strings.Contains(part, ":") {
			err = d.applyDirective(part)
		} else {
			err = d.applyFlag(part)
		}
		if err != nil {
			return d, err
		}
	}

	if d.Type == "" {
		return d, tagErr("ParseSchemaTag", "required field validation", "type directive is required")
	}

	return d, nil
}

func (d *SchemaDirectives) applyFlag(flag string) error {
	switch flag {
	case "readonly":
		d.ReadOnly = true
	case "editable":
		d.Editable = true
	case "hidden":
		d.Hidden = true
	case "required":
		d.Required = true
	default:
		return tagErr("applyFlag", "flag parsing", "unknown boolean flag: %s", flag)
	}
	return nil
}

func (d *SchemaDirectives) applyDirective(part string) error {
	kv := strings.SplitN(part, ":", 2)
	if len(kv) != 2 {
		return tagErr("applyDirective", "directive parsing", "invalid directive format: %s", part)
	}

	key := strings.TrimSpace(kv[0])
	value := strings.TrimSpace(kv[1])
	if value == "" {
		return tagErr("applyDirective", "value validation", "empty value for directive: %s", key)
	}

	switch key {
	case "type":
		if !validSchemaTypes[value] {
			return tagErr("applyDirective", "type validation", "invalid type: %s", value)
		}
		d.Type = value

	case "description":
		d.Description = value

	case "category":
		if value != "basic" && value != "advanced" {
			return tagErr("applyDirective", "category validation",
				"invalid category: %s (must be 'basic' or 'advanced')", value)
		}
		d.Category = value

	case "default":
		d.Default = value

	case "min":
		n, err := strconv.Atoi(value)
		if err != nil {
			return tagErr("applyDirective", "min parsing", "invalid min value: %s", value)
		}
		d.Min = &n

	case "max":
		n, err := strconv.Atoi(value)
		if err != nil {
			return tagErr("applyDirective", "max parsing", "invalid max value: %s", value)
		}
		d.Max = &n

	case "enum":
		d.Enum = strings.Split(value, "|")
		for i := range d.Enum {
			d.Enum[i] = strings.TrimSpace(d.Enum[i])
		}

	case "help":
		d.Help = value
	case "placeholder":
		d.Placeholder = value
	case "pattern":
		d.Pattern = value
	case "format":
		d.Format = value

	default:
		return tagErr("applyDirective", "directive validation", "unknown directive: %s", key)
	}

	return nil
}

// taggedField pairs a JSON field name with its raw schema tag.
type taggedField struct {
	name      string
	schemaTag string
}

// jsonTaggedFields walks a struct's fields and returns those with a
// usable json tag. Fields tagged json:"-" are dropped.
func jsonTaggedFields(t reflect.Type) []taggedField {
	var fields []taggedField
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			continue
		}

		fields = append(fields, taggedField{
			name:      name,
			schemaTag: field.Tag.Get("schema"),
		})
	}
	return fields
}

// GenerateConfigSchema builds a ConfigSchema from a config struct's tags.
// Reflection runs once; callers cache the result in a package variable at
// init time.
//
// Only fields carrying both json and schema tags are included. A field
// whose schema tag fails to parse is skipped rather than failing the
// whole schema. Fields of type "ports" and "cache" pick up sub-field
// metadata from PortDefinition and cache.Config respectively.
func GenerateConfigSchema(configType reflect.Type) ConfigSchema {
	schema := ConfigSchema{
		Properties: make(map[string]PropertySchema),
		Required:   []string{},
	}

	if configType.Kind() == reflect.Ptr {
		configType = configType.Elem()
	}
	if configType.Kind() != reflect.Struct {
		return schema
	}

	for _, field := range jsonTaggedFields(configType) {
		if field.schemaTag == "" {
			continue
		}

		directives, err := ParseSchemaTag(field.schemaTag)
		if err != nil {
			continue
		}

		description := directives.Description
		if description == "" {
			description = field.name
		}

		prop := PropertySchema{
			Type:        directives.Type,
			Description: description,
			Category:    directives.Category,
			Default:     convertDefault(directives.Default, directives.Type),
			Minimum:     directives.Min,
			Maximum:     directives.Max,
			Enum:        directives.Enum,
		}

		switch directives.Type {
		case "ports":
			prop.PortFields = GeneratePortFieldSchema()
		case "cache":
			prop.CacheFields = GenerateCacheFieldSchema()
		}

		schema.Properties[field.name] = prop

		if directives.Required {
			schema.Required = append(schema.Required, field.name)
		}
	}

	return schema
}

// convertDefault turns the string default from a tag into the declared
// type. Unparseable defaults become nil rather than polluting the schema
// with the wrong type.
func convertDefault(value any, fieldType string) any {
	if value == nil {
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return value
	}

	switch fieldType {
	case "string", "enum":
		return str

	case "int":
		n, err := strconv.Atoi(str)
		if err != nil {
			return nil
		}
		return n

	case "bool":
		b, err := strconv.ParseBool(str)
		if err != nil {
			return nil
		}
		return b

	case "float":
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil
		}
		return f

	case "array":
		if str == "" {
			return []string{}
		}
		return []string{str}

	case "object", "ports":
		return nil

	default:
		return str
	}
}

// GeneratePortFieldSchema reflects over PortDefinition to describe which
// port fields users may edit. Untagged fields render as read-only
// strings.
func GeneratePortFieldSchema() map[string]PortFieldInfo {
	fields := make(map[string]PortFieldInfo)

	for _, field := range jsonTaggedFields(reflect.TypeOf(PortDefinition{})) {
		if field.schemaTag == "" {
			fields[field.name] = PortFieldInfo{Type: "string", Editable: false}
			continue
		}

		directives, err := ParseSchemaTag(field.schemaTag)
		if err != nil {
			continue
		}

		fields[field.name] = PortFieldInfo{
			Type:     directives.Type,
			Editable: directives.Editable,
		}
	}

	return fields
}

// GenerateCacheFieldSchema reflects over cache.Config to describe cache
// tuning fields, including enum and minimum constraints.
func GenerateCacheFieldSchema() map[string]CacheFieldInfo {
	fields := make(map[string]CacheFieldInfo)

	for _, field := range jsonTaggedFields(reflect.TypeOf(cache.Config{})) {
		if field.schemaTag == "" {
			fields[field.name] = CacheFieldInfo{Type: "string", Editable: false}
			continue
		}

		directives, err := ParseSchemaTag(field.schemaTag)
		if err != nil {
			continue
		}

		fields[field.name] = CacheFieldInfo{
			Type:     directives.Type,
			Editable: directives.Editable,
			Enum:     directives.Enum,
			Min:      directives.Min,
		}
	}

	return fields
}
