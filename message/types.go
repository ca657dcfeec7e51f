package message

import (
	"fmt"
	"strings"

	"github.com/c360/semreason/errors"
)

// Keyable is anything that renders as a dotted semantic key. Dotted keys
// are the platform's one addressing scheme: NATS subjects, KV keys, and
// graph subjects all share it, so a wildcard like "legal.>" means the same
// thing everywhere.
type Keyable interface {
	// Key returns the dotted form, e.g. "legal.regulation" or
	// "reason.triples.v1".
	Key() string
}

// EntityType identifies a kind of entity as "domain.type", e.g.
// "legal.regulation" or "docs.contract". Graphable payloads use it to
// declare what they are; the graph layer uses it to group properties.
// Both parts are lowercase.
type EntityType struct {
	Domain string
	Type   string
}

// Key implements Keyable: "domain.type".
func (et EntityType) Key() string {
	return et.Domain + "." + et.Type
}

func (et EntityType) String() string {
	return et.Key()
}

// IsValid reports whether both parts are set.
func (et EntityType) IsValid() bool {
	return et.Domain != "" && et.Type != ""
}

// Type identifies a message schema by domain, category, and version.
// Routing keys on it, and BaseMessage.UnmarshalJSON looks payload
// factories up by it.
//
// Constants live in the owning domain packages, not here:
//
//	var TripleBatchMessage = message.Type{
//	    Domain:   "reason",
//	    Category: "triples",
//	    Version:  "v1",
//	}
type Type struct {
	// Domain is the business or system domain: "reason", "legal", "graph".
	Domain string

	// Category is the message kind within the domain: "triples",
	// "request", "response", "Entity".
	Category string

	// Version is the schema version: "v1", "v2". A new version is a new
	// type; payload shapes never change in place.
	Version string
}

// Key implements Keyable: "domain.category.version".
func (mt Type) Key() string {
	return mt.Domain + "." + mt.Category + "." + mt.Version
}

func (mt Type) String() string {
	return mt.Key()
}

// IsValid reports whether all three parts are set.
func (mt Type) IsValid() bool {
	return mt.Domain != "" && mt.Category != "" && mt.Version != ""
}

// Equal reports whether both values name the same schema.
func (mt Type) Equal(other Type) bool {
	return mt == other
}

// EntityID is the canonical 6-part identity of an entity:
//
//	org.platform.domain.system.type.instance
//	c360.platform1.legal.registry.regulation.gdpr
//
// Org, Platform, and System scope the identity for federation (who said
// it), Domain and Type classify it (what it is), and Instance names the
// individual. Two sources can use the same local ID without colliding
// because their system parts differ.
type EntityID struct {
	Org      string // organization namespace, "c360"
	Platform string // platform instance, "platform1"
	System   string // producing system, "registry", "ingest"

	Domain string // data domain, "legal"
	Type   string // entity type, "regulation", "document"

	Instance string // instance ID, "gdpr", "42"
}

// Key implements Keyable. The rendered order puts domain before system:
// org.platform.domain.system.type.instance.
func (eid EntityID) Key() string {
	return strings.Join([]string{eid.Org, eid.Platform, eid.Domain, eid.System, eid.Type, eid.Instance}, ".")
}

func (eid EntityID) String() string {
	return eid.Key()
}

// EntityType returns the domain.type classification of this entity.
func (eid EntityID) EntityType() EntityType {
	return EntityType{Domain: eid.Domain, Type: eid.Type}
}

// IsValid reports whether all six parts are set.
func (eid EntityID) IsValid() bool {
	return eid.Org != "" && eid.Platform != "" && eid.System != "" && eid.Domain != "" && eid.Type != "" &&
		eid.Instance != ""
}

// ParseEntityID parses the dotted 6-part form produced by Key. All six
// parts must be present and non-empty.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 6 {
		return EntityID{}, errors.WrapInvalid(errors.ErrInvalidData, "EntityID", "ParseEntityID",
			fmt.Sprintf("expected 6 parts, got %d", len(parts)))
	}

	for i, part := range parts {
		if part == "" {
			return EntityID{}, errors.WrapInvalid(errors.ErrInvalidData, "EntityID", "ParseEntityID",
				fmt.Sprintf("part %d is empty", i+1))
		}
	}

	return EntityID{
		Org:      parts[0],
		Platform: parts[1],
		Domain:   parts[2],
		System:   parts[3],
		Type:     parts[4],
		Instance: parts[5],
	}, nil
}
