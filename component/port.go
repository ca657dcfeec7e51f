package component

import (
	"encoding/json"
	"fmt"

	"github.com/c360/semreason/errors"
)

// Direction marks which way data moves through a port.
type Direction string

// Port directions.
const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port is one I/O attachment point on a component. The Config field holds
// the transport-specific settings behind the Portable interface.
type Port struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	Config      Portable  `json:"config"`
}

// Portable is the common surface of every port configuration.
type Portable interface {
	ResourceID() string // identifier used for conflict detection
	IsExclusive() bool  // whether two components may share the resource
	Type() string       // wire name of the port kind
}

// InterfaceContract names the message interface a port expects, so flow
// validation can check that connected ports speak compatible types.
type InterfaceContract struct {
	Type       string   `json:"type"`                 // e.g. "message.TripleBatchPayload"
	Version    string   `json:"version,omitempty"`    // e.g. "v1"
	Compatible []string `json:"compatible,omitempty"` // also accepted types
}

// portWire is the serialized form of a Portable: the concrete settings
// wrapped with the type name needed to pick a decoder on the way back in.
type portWire struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// portDecoders maps wire type names to their concrete decode functions.
var portDecoders = map[string]func(json.RawMessage) (Portable, error){
	"nats":         decodePort[NATSPort],
	"nats-request": decodePort[NATSRequestPort],
	"jetstream":    decodePort[JetStreamPort],
	"kvwatch":      decodePort[KVWatchPort],
	"kvwrite":      decodePort[KVWritePort],
	"network":      decodePort[NetworkPort],
	"file":         decodePort[FilePort],
}

func decodePort[T Portable](data json.RawMessage) (Portable, error) {
	var config T
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// MarshalJSON writes the port with its config wrapped in a typed envelope,
// so UnmarshalJSON can restore the concrete Portable implementation.
func (p Port) MarshalJSON() ([]byte, error) {
	type portAlias Port // break recursion into this method

	wrapper := struct {
		portAlias
		Config json.RawMessage `json:"config"`
	}{portAlias: portAlias(p)}

	if p.Config != nil {
		envelope := struct {
			Type string `json:"type"`
			Data any    `json:"data"`
		}{Type: p.Config.Type(), Data: p.Config}

		configBytes, err := json.Marshal(envelope)
		if err != nil {
			return nil, errors.Wrap(err, "Port", "MarshalJSON", "config marshaling")
		}
		wrapper.Config = configBytes
	}

	return json.Marshal(wrapper)
}

// UnmarshalJSON restores a port, rebuilding the concrete config type from
// the envelope written by MarshalJSON.
func (p *Port) UnmarshalJSON(data []byte) error {
	type portAlias Port

	temp := struct {
		*portAlias
		Config json.RawMessage `json:"config"`
	}{portAlias: (*portAlias)(p)}

	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	if len(temp.Config) == 0 {
		return nil
	}

	var wire portWire
	if err := json.Unmarshal(temp.Config, &wire); err != nil {
		return errors.Wrap(err, "Port", "UnmarshalJSON", "config wrapper unmarshaling")
	}

	decode, ok := portDecoders[wire.Type]
	if !ok {
		return errors.WrapInvalid(
			fmt.Errorf("unknown config type: %s", wire.Type),
			"Port", "UnmarshalJSON", "config type validation")
	}

	config, err := decode(wire.Data)
	if err != nil {
		return errors.Wrap(err, "Port", "UnmarshalJSON", wire.Type+" config unmarshaling")
	}
	p.Config = config
	return nil
}
