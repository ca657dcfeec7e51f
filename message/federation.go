package message

import (
	"time"

	"github.com/c360/semreason/config"
	"github.com/google/uuid"
)

// FederationMeta extends Meta for multi-platform deployments: a global UID
// plus the originating platform. With it, two regional instances ingesting
// the same regulation can correlate their entities, and aggregators can
// tell which platform asserted which fact.
type FederationMeta interface {
	Meta

	// UID is a UUID unique across every platform, unlike the message ID
	// which is only unique within one.
	UID() uuid.UUID

	// Platform identifies the instance that created this message.
	Platform() config.PlatformConfig
}

// DefaultFederationMeta embeds DefaultMeta and adds the federation fields.
type DefaultFederationMeta struct {
	*DefaultMeta
	uid      uuid.UUID
	platform config.PlatformConfig
}

// NewFederationMeta builds federation metadata for a message produced by
// source on the given platform. The UID is freshly generated; the creation
// time is now.
func NewFederationMeta(source string, platform config.PlatformConfig) *DefaultFederationMeta {
	return &DefaultFederationMeta{
		DefaultMeta: NewDefaultMeta(time.Now(), source),
		uid:         uuid.New(),
		platform:    platform,
	}
}

// NewFederationMetaWithTime pins the creation time, for replayed history
// and fixtures.
func NewFederationMetaWithTime(
	source string,
	platform config.PlatformConfig,
	createdAt time.Time,
) *DefaultFederationMeta {
	return &DefaultFederationMeta{
		DefaultMeta: NewDefaultMeta(createdAt, source),
		uid:         uuid.New(),
		platform:    platform,
	}
}

func (m *DefaultFederationMeta) UID() uuid.UUID { return m.uid }

func (m *DefaultFederationMeta) Platform() config.PlatformConfig { return m.platform }

// GetPlatform extracts the origin platform from any message, reporting
// false when the message carries no federation metadata. Callers handle
// both cases:
//
//	if platform, ok := GetPlatform(msg); ok {
//	    globalID := platform.ID + ":" + entityID
//	} else {
//	    localID := entityID
//	}
func GetPlatform(msg Message) (config.PlatformConfig, bool) {
	if fedMeta, ok := msg.Meta().(FederationMeta); ok {
		return fedMeta.Platform(), true
	}
	return config.PlatformConfig{}, false
}

// GetUID extracts the global UID from any message, reporting false when
// the message carries no federation metadata.
func GetUID(msg Message) (uuid.UUID, bool) {
	if fedMeta, ok := msg.Meta().(FederationMeta); ok {
		return fedMeta.UID(), true
	}
	return uuid.UUID{}, false
}
