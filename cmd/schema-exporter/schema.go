package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360/semreason/component"
)

// ComponentSchema is the exported draft-07 JSON Schema for one component
// type's configuration, plus registration metadata under a vendor key.
type ComponentSchema struct {
	Schema      string                    `json:"$schema"`
	ID          string                    `json:"$id"`
	Type        string                    `json:"type"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Properties  map[string]PropertySchema `json:"properties"`
	Required    []string                  `json:"required"`
	Metadata    ComponentMetadata         `json:"x-component-metadata"`
}

// ComponentMetadata carries the registration fields UIs use to group and
// label component types.
type ComponentMetadata struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
	Domain   string `json:"domain"`
	Version  string `json:"version"`
}

// PropertySchema is one property in JSON Schema terms.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Default     any             `json:"default,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Minimum     *int            `json:"minimum,omitempty"`
	Maximum     *int            `json:"maximum,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}

// jsonSchemaType maps the component schema's Go-flavored type names onto
// JSON Schema's. Unknown types export as string so a typo degrades the
// schema instead of breaking it.
func jsonSchemaType(propType string) string {
	switch propType {
	case "int", "float":
		return "number"
	case "bool":
		return "boolean"
	case "array", "object":
		return propType
	default:
		return "string"
	}
}

// extractSchema converts one registration into its exported schema.
func extractSchema(name string, registration *component.Registration) ComponentSchema {
	properties := make(map[string]PropertySchema, len(registration.Schema.Properties))
	for propName, prop := range registration.Schema.Properties {
		exported := PropertySchema{
			Type:        jsonSchemaType(prop.Type),
			Description: prop.Description,
			Category:    prop.Category,
			Default:     prop.Default,
			Enum:        prop.Enum,
			Minimum:     prop.Minimum,
			Maximum:     prop.Maximum,
		}
		if prop.Type == "array" {
			// element types are not modeled in component schemas yet
			exported.Items = &PropertySchema{Type: "string"}
		}
		properties[propName] = exported
	}

	// "required": [] rather than null, for strict schema consumers
	required := registration.Schema.Required
	if required == nil {
		required = []string{}
	}

	return ComponentSchema{
		Schema:      "http://json-schema.org/draft-07/schema#",
		ID:          fmt.Sprintf("%s.v1.json", name),
		Type:        "object",
		Title:       fmt.Sprintf("%s Configuration", name),
		Description: registration.Description,
		Properties:  properties,
		Required:    required,
		Metadata: ComponentMetadata{
			Name:     name,
			Type:     registration.Type,
			Protocol: registration.Protocol,
			Domain:   registration.Domain,
			Version:  registration.Version,
		},
	}
}

func writeJSONSchema(filename string, schema ComponentSchema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
