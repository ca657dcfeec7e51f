package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"relative json", "testdata/base.json", ""},
		{"absolute json", "/etc/semreason/config.json", ""},
		{"json5 accepted", "config.json5", ""},
		{"empty", "", "empty config path"},
		{"wrong extension", "config.yaml", "only JSON config files"},
		{"no extension", "config", "only JSON config files"},
		{"relative traversal", "../../../etc/passwd.json", "path traversal"},
		{"too long", strings.Repeat("a", maxPathLen) + ".json", "path too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSafeReadFile(t *testing.T) {
	data, err := safeReadFile("testdata/base.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "platform")
}

func TestSafeReadFileMissing(t *testing.T) {
	_, err := safeReadFile("testdata/does-not-exist.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot stat config file")
}

func TestSafeReadFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "conf.json")
	require.NoError(t, os.Mkdir(sub, 0o755))

	_, err := safeReadFile(sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
}

func TestSafeWriteFileOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, safeWriteFile(path, []byte(`{"version":"1.0.0"}`)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSafeWriteFileRejectsOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	err := safeWriteFile(path, make([]byte, maxConfigSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidateJSONDepth(t *testing.T) {
	assert.NoError(t, validateJSONDepth([]byte(`{"a":{"b":[1,2,{"c":3}]}}`)))

	deep := strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1)
	err := validateJSONDepth([]byte(deep))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting too deep")
}

func TestValidateJSONDepthIgnoresBracketsInStrings(t *testing.T) {
	assert.NoError(t, validateJSONDepth([]byte(`{"note":"[[[[{{{{ not structural"}`)))
	assert.NoError(t, validateJSONDepth([]byte(`{"quoted":"a \" [ b"}`)))
}

func TestValidateJSONDepthUnbalanced(t *testing.T) {
	err := validateJSONDepth([]byte(`{"a":1}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced")

	err = validateJSONDepth([]byte(`{"a":{`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed")
}
