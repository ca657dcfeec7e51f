package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOpenAPISpecStructure(t *testing.T) {
	spec := loadOpenAPISpec(t)

	assert.Equal(t, "3.0.3", spec["openapi"])

	info, ok := spec["info"].(map[string]any)
	require.True(t, ok, "spec missing info section")
	assert.NotEmpty(t, info["title"])
	assert.NotEmpty(t, info["version"])

	paths, ok := spec["paths"].(map[string]any)
	require.True(t, ok, "spec missing paths section")
	for _, path := range []string{
		"/components/types",
		"/components/types/{id}",
		"/components/status/{name}",
		"/components/flowgraph",
		"/components/validate",
	} {
		assert.Contains(t, paths, path)
	}
}

func TestOpenAPIReferencesAllComponents(t *testing.T) {
	factories := registeredFactories(t)

	referenced := make(map[string]bool)
	for _, ref := range componentSchemaRefs(t) {
		name, ok := strings.CutSuffix(filepath.Base(ref), ".v1.json")
		require.True(t, ok, "unexpected schema reference format: %s", ref)
		referenced[name] = true
	}

	for name := range factories {
		assert.True(t, referenced[name],
			"component %s missing from ComponentType.schema.oneOf; rerun the schema exporter", name)
	}
	for name := range referenced {
		assert.Contains(t, factories, name,
			"spec references schema for unregistered component %s", name)
	}
}

func TestOpenAPISchemaRefsResolve(t *testing.T) {
	schemasDir := filepath.Join(repoRoot(t), "schemas")
	for _, ref := range componentSchemaRefs(t) {
		assert.FileExists(t, filepath.Join(schemasDir, filepath.Base(ref)),
			"spec references %s but the file does not exist", ref)
	}
}

func loadOpenAPISpec(t *testing.T) map[string]any {
	t.Helper()

	path := filepath.Join(repoRoot(t), "specs", "openapi.v3.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err, "cannot read %s; run the schema exporter to generate it", path)

	var spec map[string]any
	require.NoError(t, yaml.Unmarshal(data, &spec),
		"invalid YAML in %s; regenerate instead of editing by hand", path)
	return spec
}

// componentSchemaRefs returns the $ref targets from the oneOf list under
// ComponentType.properties.schema, where the exporter links every
// component's configuration schema.
func componentSchemaRefs(t *testing.T) []string {
	t.Helper()

	node := loadOpenAPISpec(t)
	for _, key := range []string{"components", "schemas", "ComponentType", "properties", "schema"} {
		next, ok := node[key].(map[string]any)
		require.True(t, ok, "spec missing %q on the path to the component schema list", key)
		node = next
	}
	oneOf, ok := node["oneOf"].([]any)
	require.True(t, ok, "ComponentType schema field has no oneOf list")

	var refs []string
	for _, item := range oneOf {
		entry, ok := item.(map[string]any)
		require.True(t, ok, "oneOf entries must be mappings")
		ref, ok := entry["$ref"].(string)
		require.True(t, ok, "oneOf entries must be $ref objects")
		refs = append(refs, ref)
	}
	require.NotEmpty(t, refs)
	return refs
}
