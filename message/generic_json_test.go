package message_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/message"
)

func TestNewGenericJSON(t *testing.T) {
	data := map[string]any{"test": "value"}

	payload := message.NewGenericJSON(data)
	require.NotNil(t, payload)
	assert.Equal(t, data, payload.Data)
	assert.Equal(t, message.Type{Domain: "core", Category: "json", Version: "v1"}, payload.Schema())
}

func TestGenericJSON_Validate(t *testing.T) {
	tests := []struct {
		name      string
		payload   *message.GenericJSONPayload
		wantError bool
	}{
		{
			name: "data present",
			payload: &message.GenericJSONPayload{
				Data: map[string]any{"document": "reg-2016-679", "status": "in-force"},
			},
		},
		{
			name:    "empty map is valid",
			payload: &message.GenericJSONPayload{Data: map[string]any{}},
		},
		{
			name:      "nil data rejected",
			payload:   &message.GenericJSONPayload{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenericJSON_RoundTrip(t *testing.T) {
	original := &message.GenericJSONPayload{
		Data: map[string]any{
			"document_id":   "reg-2016-679",
			"article_count": 99.0,
			"in_force":      true,
			"citations": []any{
				map[string]any{"id": "c1", "target": "gdpr"},
				map[string]any{"id": "c2", "target": "eprivacy"},
			},
			"metadata": map[string]any{
				"court":     "cjeu",
				"timestamp": "2024-01-13T10:30:00Z",
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	// The wire form keeps the "data" wrapper
	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Contains(t, wire, "data")

	var decoded message.GenericJSONPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.Data, decoded.Data)

	citations, ok := decoded.Data["citations"].([]any)
	require.True(t, ok, "nested arrays survive the round trip")
	assert.Len(t, citations, 2)
}

// core.json.v1 exists so unregistered traffic can still ride the envelope;
// decoding a full message must produce a typed GenericJSONPayload through
// the payload registry.
func TestGenericJSON_EnvelopeDecode(t *testing.T) {
	original := message.NewBaseMessage(
		message.Type{Domain: "core", Category: "json", Version: "v1"},
		message.NewGenericJSON(map[string]any{"document_id": "reg-2016-679"}),
		"prototype-feed",
	)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded message.BaseMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.ID(), decoded.ID())
	assert.Equal(t, original.Type(), decoded.Type())
	assert.Equal(t, "prototype-feed", decoded.Meta().Source())

	payload, ok := decoded.Payload().(*message.GenericJSONPayload)
	require.True(t, ok, "registry should rebuild the typed payload, got %T", decoded.Payload())
	assert.Equal(t, "reg-2016-679", payload.Data["document_id"])
}
