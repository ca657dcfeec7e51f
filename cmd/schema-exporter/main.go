// Command schema-exporter generates versioned JSON Schemas and an
// OpenAPI 3.0 spec from the registered component set. Run it whenever a
// component schema changes; the contract tests under test/contract fail
// when the committed output drifts from the registrations.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/componentregistry"
)

type options struct {
	schemaDir  string
	openapiOut string
}

func main() {
	var opts options
	flag.StringVar(&opts.schemaDir, "out", "./schemas", "Output directory for JSON Schemas")
	flag.StringVar(&opts.openapiOut, "openapi", "./specs/openapi.v3.yaml",
		"Output path for the OpenAPI spec (empty to skip)")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("schema export failed: %v", err)
	}
	log.Printf("✅ Schema generation complete!")
}

func run(opts options) error {
	registry := component.NewRegistry()
	if err := componentregistry.Register(registry); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	factories := registry.ListFactories()
	log.Printf("Exporting schemas for %d component types", len(factories))

	metaSchemaPath, err := findMetaSchema()
	if err != nil {
		log.Printf("⚠️  Meta-schema not found, skipping validation: %v", err)
		metaSchemaPath = ""
	}

	if err := os.MkdirAll(opts.schemaDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var schemas []ComponentSchema
	for name, registration := range factories {
		schema := extractSchema(name, registration)
		if metaSchemaPath != "" {
			if err := validateSchema(schema, metaSchemaPath); err != nil {
				return fmt.Errorf("schema for %s: %w", name, err)
			}
		}
		schemas = append(schemas, schema)

		outFile := filepath.Join(opts.schemaDir, schema.ID)
		if err := writeJSONSchema(outFile, schema); err != nil {
			return fmt.Errorf("write schema for %s: %w", name, err)
		}
		log.Printf("  ✓ %s", outFile)
	}

	if opts.openapiOut == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.openapiOut), 0o755); err != nil {
		return fmt.Errorf("create OpenAPI directory: %w", err)
	}
	doc := generateOpenAPISpec(schemas, opts.schemaDir)
	if err := writeYAMLFile(opts.openapiOut, doc); err != nil {
		return fmt.Errorf("write OpenAPI spec: %w", err)
	}
	log.Printf("  ✓ %s", opts.openapiOut)
	return nil
}
