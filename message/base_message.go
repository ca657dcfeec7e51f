package message

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/config"
	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/pkg/timestamp"
	"github.com/google/uuid"
)

// BaseMessage is the standard Message implementation: a typed payload plus
// metadata, ready for transmission through the reasoning mesh. All fields
// are set at construction and never mutated afterwards, so a message can be
// shared across goroutines without copying.
//
// Construction uses functional options:
//
//	// Plain message (most common)
//	msg := NewBaseMessage(msgType, payload, "reason-processor")
//
//	// Pinned timestamp (replays, fixtures)
//	msg := NewBaseMessage(msgType, payload, "reason-processor", WithTime(pastTime))
//
//	// Cross-platform correlation
//	msg := NewBaseMessage(msgType, payload, "reason-processor", WithFederation(platform))
type BaseMessage struct {
	id      string
	msgType Type
	payload Payload
	meta    Meta
}

// messageOptions stages construction inputs so options compose in any
// order. The Meta is built once, after every option has run.
type messageOptions struct {
	createdAt time.Time
	meta      Meta
	platform  *config.PlatformConfig
}

// Option configures BaseMessage construction.
type Option func(*messageOptions)

// WithTime pins the creation timestamp instead of using time.Now().
// Used for replayed history and deterministic fixtures.
func WithTime(createdAt time.Time) Option {
	return func(o *messageOptions) {
		o.createdAt = createdAt
	}
}

// WithMeta supplies a complete Meta implementation. It overrides WithTime
// and WithFederation.
func WithMeta(meta Meta) Option {
	return func(o *messageOptions) {
		o.meta = meta
	}
}

// WithFederation builds federation metadata for the message, adding global
// UIDs for cross-platform correlation. Composes with WithTime.
func WithFederation(platform config.PlatformConfig) Option {
	return func(o *messageOptions) {
		o.platform = &platform
	}
}

// WithFederationAndTime is shorthand for WithFederation plus WithTime.
func WithFederationAndTime(platform config.PlatformConfig, createdAt time.Time) Option {
	return func(o *messageOptions) {
		o.platform = &platform
		o.createdAt = createdAt
	}
}

// NewBaseMessage creates a message from its type, payload, and originating
// source (the service or component name that produced it). Options adjust
// metadata construction; they may be given in any order.
func NewBaseMessage(msgType Type, payload Payload, source string, opts ...Option) *BaseMessage {
	options := messageOptions{createdAt: time.Now()}
	for _, opt := range opts {
		opt(&options)
	}

	meta := options.meta
	if meta == nil {
		if options.platform != nil {
			meta = NewFederationMetaWithTime(source, *options.platform, options.createdAt)
		} else {
			meta = NewDefaultMeta(options.createdAt, source)
		}
	}

	return &BaseMessage{
		id:      uuid.New().String(),
		msgType: msgType,
		payload: payload,
		meta:    meta,
	}
}

// ID returns the unique message identifier.
func (m *BaseMessage) ID() string {
	return m.id
}

// Type returns the structured message type.
func (m *BaseMessage) Type() Type {
	return m.msgType
}

// Payload returns the message payload.
func (m *BaseMessage) Payload() Payload {
	return m.payload
}

// Meta returns the message metadata.
func (m *BaseMessage) Meta() Meta {
	return m.meta
}

// Hash returns a SHA256 hex digest over the message type and payload.
// Metadata is excluded so the same content hashes identically regardless
// of when or where it was produced.
func (m *BaseMessage) Hash() string {
	h := sha256.New()
	h.Write([]byte(m.msgType.String()))
	// hash.Hash.Write never returns an error
	if data, err := m.payload.MarshalJSON(); err == nil {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks the type, payload, and metadata of the message.
func (m *BaseMessage) Validate() error {
	if !m.msgType.IsValid() {
		return errors.WrapInvalid(errors.ErrInvalidData, "BaseMessage", "Validate",
			fmt.Sprintf("invalid message type: %s", m.msgType.String()))
	}

	if m.payload == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "BaseMessage", "Validate", "payload cannot be nil")
	}

	if err := m.payload.Validate(); err != nil {
		return errors.WrapInvalid(err, "BaseMessage", "Validate", "invalid payload")
	}

	if m.meta == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "BaseMessage", "Validate", "meta cannot be nil")
	}

	return nil
}

// wireFormat is the JSON envelope for BaseMessage. The struct exists so the
// private fields of BaseMessage can round-trip through encoding/json.
type wireFormat struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Meta    map[string]any  `json:"meta"`
}

// MarshalJSON implements json.Marshaler. Metadata timestamps serialize as
// unix milliseconds.
func (m *BaseMessage) MarshalJSON() ([]byte, error) {
	payloadData, err := m.payload.MarshalJSON()
	if err != nil {
		return nil, errors.WrapInvalid(err, "BaseMessage", "MarshalJSON", "failed to marshal payload")
	}

	wire := wireFormat{
		ID:      m.id,
		Type:    m.msgType,
		Payload: json.RawMessage(payloadData),
		Meta: map[string]any{
			"created_at":  timestamp.ToUnixMs(m.meta.CreatedAt()),
			"received_at": timestamp.ToUnixMs(m.meta.ReceivedAt()),
			"source":      m.meta.Source(),
		},
	}

	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler. The payload type must be
// registered in the component payload registry; unregistered types fail
// rather than degrade to untyped maps. Generic JSON traffic uses the
// well-known type "core.json.v1" (GenericJSONPayload).
func (m *BaseMessage) UnmarshalJSON(data []byte) error {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "BaseMessage", "UnmarshalJSON", "failed to unmarshal wire format")
	}

	m.id = wire.ID
	m.msgType = wire.Type

	// timestamp.Parse accepts both unix-ms numbers and RFC3339 strings,
	// covering messages produced before the wire format settled on int64.
	var createdAt, receivedAt time.Time
	var source string

	if ms := timestamp.Parse(wire.Meta["created_at"]); ms != 0 {
		createdAt = timestamp.ToTime(ms)
	}
	if ms := timestamp.Parse(wire.Meta["received_at"]); ms != 0 {
		receivedAt = timestamp.ToTime(ms)
	}
	if s, ok := wire.Meta["source"].(string); ok {
		source = s
	}

	m.meta = NewDefaultMetaWithReceivedAt(createdAt, receivedAt, source)

	payload := component.CreatePayload(m.msgType.Domain, m.msgType.Category, m.msgType.Version)
	if payload == nil {
		return errors.WrapInvalid(
			fmt.Errorf("unregistered payload type: %s", m.msgType.String()),
			"BaseMessage", "UnmarshalJSON", "payload type lookup")
	}

	msgPayload, ok := payload.(Payload)
	if !ok {
		return errors.WrapInvalid(errors.ErrInvalidData, "BaseMessage", "UnmarshalJSON", "payload does not implement message.Payload interface")
	}
	if err := json.Unmarshal(wire.Payload, msgPayload); err != nil {
		return errors.WrapInvalid(err, "BaseMessage", "UnmarshalJSON", "failed to unmarshal payload")
	}
	m.payload = msgPayload

	return nil
}
