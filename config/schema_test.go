package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestEmbeddedSchemaIsValidDraft07(t *testing.T) {
	_, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(platformSchema))
	require.NoError(t, err)
}

func TestValidateFileSchema(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "full layer",
			data: `{
				"platform": {"org": "c360", "id": "p1", "type": "regional"},
				"nats": {"urls": ["nats://localhost:4222"], "reconnect_wait": "2s"},
				"services": {"metrics": {"enabled": true, "config": {"port": 9090}}}
			}`,
		},
		{
			name: "partial layer",
			data: `{"platform": {"id": "override-only"}}`,
		},
		{
			name:    "unknown top-level key",
			data:    `{"platfrom": {"id": "p1"}}`,
			wantErr: "Additional property platfrom is not allowed",
		},
		{
			name:    "unknown platform field",
			data:    `{"platform": {"identifier": "p1"}}`,
			wantErr: "Additional property identifier is not allowed",
		},
		{
			name:    "wrong platform type",
			data:    `{"platform": {"type": "continental"}}`,
			wantErr: "platform.type",
		},
		{
			name:    "urls must be strings",
			data:    `{"nats": {"urls": [4222]}}`,
			wantErr: "Invalid type",
		},
		{
			name:    "component type outside roster",
			data:    `{"components": {"x": {"type": "widget"}}}`,
			wantErr: "components.x.type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileSchema([]byte(tt.data))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRejectsMisspelledKeys(t *testing.T) {
	path := writeConfig(t, `{
		"platform": {"org": "c360", "id": "p1", "type": "edge"},
		"natss": {"urls": ["nats://localhost:4222"]}
	}`)

	_, err := NewLoader().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}
