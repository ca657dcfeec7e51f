package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// validateSchema checks an exported component schema against the
// meta-schema that defines what a valid component schema looks like.
func validateSchema(schema ComponentSchema, metaSchemaPath string) error {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewReferenceLoader("file://"+metaSchemaPath),
		gojsonschema.NewBytesLoader(schemaBytes),
	)
	if err != nil {
		return fmt.Errorf("meta-schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "does not satisfy meta-schema:")
	for _, desc := range result.Errors() {
		fmt.Fprintf(&sb, "\n  - %s: %s", desc.Field(), desc.Description())
	}
	return fmt.Errorf("%s", sb.String())
}

// findMetaSchema locates specs/component-schema-meta.json relative to
// the working directory, so the tool works from the repo root or from
// within cmd/schema-exporter.
func findMetaSchema() (string, error) {
	candidates := []string{
		"./specs/component-schema-meta.json",
		"../specs/component-schema-meta.json",
		"../../specs/component-schema-meta.json",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve meta-schema path: %w", err)
		}
		return abs, nil
	}
	return "", fmt.Errorf("meta-schema not found, tried %v", candidates)
}
