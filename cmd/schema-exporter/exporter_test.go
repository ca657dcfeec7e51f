package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/componentregistry"
)

func TestRunExportsRegisteredSchemas(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		schemaDir:  filepath.Join(dir, "schemas"),
		openapiOut: filepath.Join(dir, "specs", "openapi.v3.yaml"),
	}
	require.NoError(t, run(opts))

	data, err := os.ReadFile(filepath.Join(opts.schemaDir, "reason-processor.v1.json"))
	require.NoError(t, err, "reason processor schema should be exported")

	var schema ComponentSchema
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema.Schema)
	assert.Equal(t, "reason-processor.v1.json", schema.ID)
	assert.Equal(t, "reason-processor Configuration", schema.Title)
	assert.Equal(t, "processor", schema.Metadata.Type)
	assert.Equal(t, "reason-processor", schema.Metadata.Name)
	assert.NotNil(t, schema.Required, "required must serialize as an array")

	maxIter, ok := schema.Properties["max_iterations"]
	require.True(t, ok, "schema should carry the max_iterations property")
	assert.Equal(t, "number", maxIter.Type)
}

func TestRunGeneratesOpenAPISpec(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		schemaDir:  filepath.Join(dir, "schemas"),
		openapiOut: filepath.Join(dir, "openapi.v3.yaml"),
	}
	require.NoError(t, run(opts))

	data, err := os.ReadFile(opts.openapiOut)
	require.NoError(t, err)

	var doc OpenAPIDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "SemReason Component API", doc.Info.Title)

	for _, path := range []string{
		"/components/types",
		"/components/types/{id}",
		"/components/status/{name}",
		"/components/flowgraph",
		"/components/validate",
	} {
		assert.Contains(t, doc.Paths, path)
	}

	item := doc.Paths["/components/types/{id}"]
	require.NotNil(t, item.Get)
	require.Len(t, item.Get.Parameters, 1)
	assert.Equal(t, "id", item.Get.Parameters[0].Name)
	assert.Equal(t, "path", item.Get.Parameters[0].In)

	componentType, ok := doc.Components.Schemas["ComponentType"]
	require.True(t, ok, "spec should define the ComponentType schema")
	raw, err := yaml.Marshal(componentType)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "../schemas/reason-processor.v1.json")
}

func TestRunSkipsOpenAPIWhenUnset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(options{schemaDir: dir}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, ".yaml", filepath.Ext(entry.Name()))
	}
}

func TestExtractSchema(t *testing.T) {
	minimum, maximum := 1, 100
	registration := &component.Registration{
		Name:        "widget-input",
		Type:        "input",
		Protocol:    "nats",
		Domain:      "semantic",
		Description: "Test widget input",
		Version:     "1.0.0",
		Schema: component.ConfigSchema{
			Properties: map[string]component.PropertySchema{
				"subject":    {Type: "string", Description: "NATS subject", Category: "basic"},
				"batch_size": {Type: "int", Minimum: &minimum, Maximum: &maximum, Default: 10},
				"enabled":    {Type: "bool"},
				"tags":       {Type: "array"},
			},
			Required: []string{"subject"},
		},
	}

	schema := extractSchema("widget-input", registration)

	assert.Equal(t, "widget-input.v1.json", schema.ID)
	assert.Equal(t, "widget-input Configuration", schema.Title)
	assert.Equal(t, "Test widget input", schema.Description)
	assert.Equal(t, []string{"subject"}, schema.Required)
	assert.Equal(t, "input", schema.Metadata.Type)
	assert.Equal(t, "nats", schema.Metadata.Protocol)
	assert.Equal(t, "semantic", schema.Metadata.Domain)

	assert.Equal(t, "string", schema.Properties["subject"].Type)
	assert.Equal(t, "basic", schema.Properties["subject"].Category)
	assert.Equal(t, "number", schema.Properties["batch_size"].Type)
	require.NotNil(t, schema.Properties["batch_size"].Minimum)
	assert.Equal(t, 1, *schema.Properties["batch_size"].Minimum)
	assert.Equal(t, "boolean", schema.Properties["enabled"].Type)

	tags := schema.Properties["tags"]
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items, "array properties need an items schema")
	assert.Equal(t, "string", tags.Items.Type)
}

func TestExtractSchemaNilRequired(t *testing.T) {
	schema := extractSchema("bare", &component.Registration{
		Type: "processor", Protocol: "reason", Domain: "semantic", Version: "1.0.0",
	})
	require.NotNil(t, schema.Required)
	assert.Empty(t, schema.Required)
}

func TestJSONSchemaType(t *testing.T) {
	cases := map[string]string{
		"string":  "string",
		"int":     "number",
		"float":   "number",
		"bool":    "boolean",
		"array":   "array",
		"object":  "object",
		"enum":    "string",
		"ports":   "string",
		"unknown": "string",
	}
	for in, want := range cases {
		assert.Equal(t, want, jsonSchemaType(in), "type %q", in)
	}
}

func TestRegisteredSchemasSatisfyMetaSchema(t *testing.T) {
	metaSchemaPath, err := findMetaSchema()
	require.NoError(t, err, "meta-schema must ship with the repo")

	registry := component.NewRegistry()
	require.NoError(t, componentregistry.Register(registry))

	for name, registration := range registry.ListFactories() {
		t.Run(name, func(t *testing.T) {
			schema := extractSchema(name, registration)
			assert.NoError(t, validateSchema(schema, metaSchemaPath))
		})
	}
}

func TestValidateSchemaRejectsBadMetadata(t *testing.T) {
	metaSchemaPath, err := findMetaSchema()
	require.NoError(t, err)

	schema := extractSchema("bad", &component.Registration{
		Type:     "widget", // not one of input/processor/output/storage
		Protocol: "nats",
		Domain:   "semantic",
		Version:  "1.0.0",
	})
	err = validateSchema(schema, metaSchemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy meta-schema")
}

func TestMetaSchemaIsValidDraft07(t *testing.T) {
	metaSchemaPath, err := findMetaSchema()
	require.NoError(t, err)

	_, err = gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + metaSchemaPath))
	assert.NoError(t, err, "meta-schema should compile as JSON Schema")
}
