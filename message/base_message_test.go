package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Message = (*BaseMessage)(nil)

// TestPayload is the shared payload stub for message-construction tests.
type TestPayload struct {
	Value string
	Valid bool
}

func (p *TestPayload) Schema() Type {
	return Type{Domain: "test", Category: "payload", Version: "v1"}
}

func (p *TestPayload) Validate() error {
	if !p.Valid {
		return assert.AnError
	}
	return nil
}

func (p *TestPayload) MarshalJSON() ([]byte, error) {
	return []byte(p.Value), nil
}

func (p *TestPayload) UnmarshalJSON(data []byte) error {
	p.Value = string(data)
	return nil
}

func TestBaseMessage_Creation(t *testing.T) {
	msgType := Type{Domain: "reason", Category: "requests", Version: "v1"}
	payload := &TestPayload{Value: "request-body", Valid: true}

	msg := NewBaseMessage(msgType, payload, "reason-processor")

	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID())
	assert.Equal(t, msgType, msg.Type())
	assert.Equal(t, payload, msg.Payload())
	assert.Equal(t, "reason-processor", msg.Meta().Source())

	// Creation and receipt default to now
	assert.WithinDuration(t, time.Now(), msg.Meta().CreatedAt(), 100*time.Millisecond)
	assert.WithinDuration(t, time.Now(), msg.Meta().ReceivedAt(), 100*time.Millisecond)
}

func TestBaseMessage_UniqueIDs(t *testing.T) {
	msgType := Type{Domain: "reason", Category: "requests", Version: "v1"}
	payload := &TestPayload{Value: "same-body", Valid: true}

	msg1 := NewBaseMessage(msgType, payload, "same-source")
	msg2 := NewBaseMessage(msgType, payload, "same-source")

	// Identical content still gets distinct identities
	assert.NotEqual(t, msg1.ID(), msg2.ID())

	// UUID string form
	assert.Len(t, msg1.ID(), 36)
	assert.Contains(t, msg1.ID(), "-")
}

func TestBaseMessage_WithTime(t *testing.T) {
	createdAt := time.Now().Add(-1 * time.Hour)

	msg := NewBaseMessage(
		Type{Domain: "reason", Category: "triples", Version: "v1"},
		&TestPayload{Valid: true},
		"replay.ingest",
		WithTime(createdAt),
	)

	// Millisecond storage drops sub-millisecond precision
	assert.WithinDuration(t, createdAt, msg.Meta().CreatedAt(), time.Millisecond)
	assert.Equal(t, "replay.ingest", msg.Meta().Source())

	// Receipt time is still now: the message was replayed, not re-received
	assert.WithinDuration(t, time.Now(), msg.Meta().ReceivedAt(), 100*time.Millisecond)
}

func TestBaseMessage_WithMeta(t *testing.T) {
	createdAt := time.Now().Add(-30 * time.Minute)
	custom := NewDefaultMeta(createdAt, "custom-source")

	msg := NewBaseMessage(
		Type{Domain: "reason", Category: "requests", Version: "v1"},
		&TestPayload{Valid: true},
		"ignored-source",
		WithMeta(custom),
		WithTime(time.Now()), // WithMeta wins over other metadata options
	)

	assert.Same(t, custom, msg.Meta())
	assert.Equal(t, "custom-source", msg.Meta().Source())
}

func TestBaseMessage_OptionOrderIndependent(t *testing.T) {
	createdAt := time.Now().Add(-2 * time.Hour)
	msgType := Type{Domain: "reason", Category: "inferred", Version: "v1"}

	timeFirst := NewBaseMessage(msgType, &TestPayload{Valid: true}, "src",
		WithTime(createdAt), WithFederation(testPlatform()))
	federationFirst := NewBaseMessage(msgType, &TestPayload{Valid: true}, "src",
		WithFederation(testPlatform()), WithTime(createdAt))

	for name, msg := range map[string]*BaseMessage{
		"time-first":       timeFirst,
		"federation-first": federationFirst,
	} {
		assert.WithinDuration(t, createdAt, msg.Meta().CreatedAt(), time.Millisecond, name)
		_, ok := GetPlatform(msg)
		assert.True(t, ok, "%s: federation metadata should survive option ordering", name)
	}
}

func TestBaseMessage_Hash(t *testing.T) {
	msgType := Type{Domain: "reason", Category: "triples", Version: "v1"}
	payload1 := &TestPayload{Value: `{"s":"case:1"}`, Valid: true}
	payload2 := &TestPayload{Value: `{"s":"case:2"}`, Valid: true}

	msg1 := NewBaseMessage(msgType, payload1, "source-a")
	msg2 := NewBaseMessage(msgType, payload1, "source-b", WithTime(time.Now().Add(-time.Hour)))
	msg3 := NewBaseMessage(msgType, payload2, "source-a")

	// Hash covers type + payload only, so source and timestamps do not matter
	assert.Equal(t, msg1.Hash(), msg2.Hash())
	assert.NotEqual(t, msg1.Hash(), msg3.Hash())

	// SHA256 = 32 bytes = 64 hex chars
	assert.Len(t, msg1.Hash(), 64)
}

func TestBaseMessage_HashVariesByType(t *testing.T) {
	payload := &TestPayload{Value: `{"s":"case:1"}`, Valid: true}

	v1 := NewBaseMessage(Type{Domain: "reason", Category: "triples", Version: "v1"}, payload, "src")
	v2 := NewBaseMessage(Type{Domain: "reason", Category: "triples", Version: "v2"}, payload, "src")

	assert.NotEqual(t, v1.Hash(), v2.Hash(), "type participates in the hash")
}

func TestBaseMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msgType Type
		payload Payload
		wantErr bool
	}{
		{
			name:    "valid message",
			msgType: Type{Domain: "reason", Category: "requests", Version: "v1"},
			payload: &TestPayload{Valid: true},
		},
		{
			name:    "payload rejects",
			msgType: Type{Domain: "reason", Category: "requests", Version: "v1"},
			payload: &TestPayload{Valid: false},
			wantErr: true,
		},
		{
			name:    "missing type domain",
			msgType: Type{Domain: "", Category: "requests", Version: "v1"},
			payload: &TestPayload{Valid: true},
			wantErr: true,
		},
		{
			name:    "nil payload",
			msgType: Type{Domain: "reason", Category: "requests", Version: "v1"},
			payload: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewBaseMessage(tt.msgType, tt.payload, "validator-test")
			err := msg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
