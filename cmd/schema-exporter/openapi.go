package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// The OpenAPI 3.0 object model, reduced to the fields the component API
// actually uses.

type OpenAPIDocument struct {
	OpenAPI    string              `yaml:"openapi"`
	Info       InfoObject          `yaml:"info"`
	Servers    []ServerObject      `yaml:"servers"`
	Paths      map[string]PathItem `yaml:"paths"`
	Components ComponentsObject    `yaml:"components"`
	Tags       []TagObject         `yaml:"tags"`
}

type InfoObject struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

type ServerObject struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type ComponentsObject struct {
	Schemas map[string]any `yaml:"schemas"`
}

type TagObject struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type PathItem struct {
	Get    *Operation `yaml:"get,omitempty"`
	Post   *Operation `yaml:"post,omitempty"`
	Put    *Operation `yaml:"put,omitempty"`
	Delete *Operation `yaml:"delete,omitempty"`
}

type Operation struct {
	Summary     string              `yaml:"summary"`
	Description string              `yaml:"description,omitempty"`
	Tags        []string            `yaml:"tags,omitempty"`
	Parameters  []Parameter         `yaml:"parameters,omitempty"`
	Responses   map[string]Response `yaml:"responses"`
}

type Parameter struct {
	Name        string    `yaml:"name"`
	In          string    `yaml:"in"`
	Required    bool      `yaml:"required,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Schema      SchemaRef `yaml:"schema"`
}

type Response struct {
	Description string               `yaml:"description"`
	Content     map[string]MediaType `yaml:"content,omitempty"`
}

type MediaType struct {
	Schema SchemaRef `yaml:"schema"`
}

type SchemaRef struct {
	Ref   string      `yaml:"$ref,omitempty"`
	Type  string      `yaml:"type,omitempty"`
	Items *SchemaRef  `yaml:"items,omitempty"`
	OneOf []SchemaRef `yaml:"oneOf,omitempty"`
}

// endpoint describes one GET path compactly; buildPaths expands it into
// the OpenAPI shape.
type endpoint struct {
	path      string
	summary   string
	detail    string
	tag       string
	pathParam string // name of the single path parameter, if any
	paramDesc string
	responses map[string]Response
}

var componentEndpoints = []endpoint{
	{
		path:    "/components/types",
		summary: "List available component types",
		detail:  "Returns array of component metadata including schemas",
		tag:     "Components",
		responses: map[string]Response{
			"200": {
				Description: "Array of component types",
				Content: map[string]MediaType{
					"application/json": {Schema: SchemaRef{
						Type:  "array",
						Items: &SchemaRef{Ref: "#/components/schemas/ComponentType"},
					}},
				},
			},
		},
	},
	{
		path:      "/components/types/{id}",
		summary:   "Get component type by ID",
		detail:    "Returns metadata and schema for a specific component type",
		tag:       "Components",
		pathParam: "id",
		paramDesc: "Component type ID",
		responses: map[string]Response{
			"200": {
				Description: "Component type metadata",
				Content: map[string]MediaType{
					"application/json": {Schema: SchemaRef{Ref: "#/components/schemas/ComponentType"}},
				},
			},
			"404": {Description: "Component type not found"},
		},
	},
	{
		path:      "/components/status/{name}",
		summary:   "Get component status",
		detail:    "Returns detailed status for a specific component instance",
		tag:       "Components",
		pathParam: "name",
		paramDesc: "Component instance name",
		responses: map[string]Response{
			"200": {Description: "Component status"},
			"404": {Description: "Component not found"},
		},
	},
	{
		path:    "/components/flowgraph",
		summary: "Get component flow graph",
		detail:  "Returns the complete flow graph with nodes and edges",
		tag:     "FlowGraph",
		responses: map[string]Response{
			"200": {Description: "Flow graph with nodes and edges"},
		},
	},
	{
		path:    "/components/validate",
		summary: "Validate component flow connectivity",
		detail:  "Performs flow graph connectivity analysis",
		tag:     "FlowGraph",
		responses: map[string]Response{
			"200": {Description: "Flow connectivity analysis results"},
		},
	},
}

// generateOpenAPISpec assembles the component API spec, with every
// exported component schema referenced from the ComponentType object.
func generateOpenAPISpec(components []ComponentSchema, schemaDir string) OpenAPIDocument {
	return OpenAPIDocument{
		OpenAPI: "3.0.3",
		Info: InfoObject{
			Title:       "SemReason Component API",
			Description: "HTTP API for component discovery, configuration, and flow graph analysis",
			Version:     "1.0.0",
		},
		Servers: []ServerObject{
			{URL: "http://localhost:8080", Description: "Development server"},
			{URL: "http://localhost", Description: "Production server (via reverse proxy)"},
		},
		Paths:      buildPaths(),
		Components: ComponentsObject{Schemas: buildComponentSchemas(components, schemaDir)},
		Tags: []TagObject{
			{Name: "Components", Description: "Component management endpoints"},
			{Name: "FlowGraph", Description: "Flow analysis and validation endpoints"},
		},
	}
}

func buildPaths() map[string]PathItem {
	paths := make(map[string]PathItem, len(componentEndpoints))
	for _, ep := range componentEndpoints {
		op := &Operation{
			Summary:     ep.summary,
			Description: ep.detail,
			Tags:        []string{ep.tag},
			Responses:   ep.responses,
		}
		if ep.pathParam != "" {
			op.Parameters = []Parameter{{
				Name:        ep.pathParam,
				In:          "path",
				Required:    true,
				Description: ep.paramDesc,
				Schema:      SchemaRef{Type: "string"},
			}}
		}
		paths[ep.path] = PathItem{Get: op}
	}
	return paths
}

func stringProp(description string) map[string]string {
	return map[string]string{"type": "string", "description": description}
}

// buildComponentSchemas builds the ComponentType schema. The config
// schema field is a oneOf over the generated per-component files,
// referenced relative to the spec (specs/ and schemas/ are siblings).
func buildComponentSchemas(components []ComponentSchema, schemaDir string) map[string]any {
	var schemaRefs []SchemaRef
	for _, comp := range components {
		schemaRefs = append(schemaRefs, SchemaRef{
			Ref: fmt.Sprintf("../%s/%s", filepath.Base(schemaDir), comp.ID),
		})
	}

	return map[string]any{
		"ComponentType": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":          stringProp("Component ID"),
				"name":        stringProp("Human-readable name"),
				"type":        stringProp("Component type (input/processor/output/storage)"),
				"protocol":    stringProp("Technical protocol (reason, nats, etc.)"),
				"domain":      stringProp("Business domain (semantic, network, storage)"),
				"description": stringProp("Component description"),
				"version":     stringProp("Component version"),
				"category":    stringProp("Component category"),
				"schema": map[string]any{
					"description": "Component configuration schema",
					"oneOf":       schemaRefs,
				},
			},
			"required": []string{"id", "name", "type"},
		},
	}
}

func writeYAMLFile(filename string, data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}

	header := strings.TrimSpace(`
# OpenAPI 3.0 Specification for SemReason Component API
# Generated by schema-exporter tool
# DO NOT EDIT MANUALLY - This file is auto-generated from component registrations
`) + "\n\n"

	if err := os.WriteFile(filename, append([]byte(header), yamlData...), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
