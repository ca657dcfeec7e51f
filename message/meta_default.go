package message

import (
	"time"

	"github.com/c360/semreason/pkg/timestamp"
)

// DefaultMeta is the standard Meta implementation. Times are stored as unix
// milliseconds to match the wire format, so a message round-trips without
// shifting its timestamps.
type DefaultMeta struct {
	createdAt  int64
	receivedAt int64
	source     string
}

// NewDefaultMeta records the given creation time and source, stamping the
// receipt time as now.
func NewDefaultMeta(createdAt time.Time, source string) *DefaultMeta {
	return &DefaultMeta{
		createdAt:  timestamp.ToUnixMs(createdAt),
		receivedAt: timestamp.Now(),
		source:     source,
	}
}

// NewDefaultMetaWithReceivedAt sets both times explicitly. Used when
// decoding a message off the wire and when importing history.
func NewDefaultMetaWithReceivedAt(createdAt, receivedAt time.Time, source string) *DefaultMeta {
	return &DefaultMeta{
		createdAt:  timestamp.ToUnixMs(createdAt),
		receivedAt: timestamp.ToUnixMs(receivedAt),
		source:     source,
	}
}

func (m *DefaultMeta) CreatedAt() time.Time { return timestamp.ToTime(m.createdAt) }

func (m *DefaultMeta) ReceivedAt() time.Time { return timestamp.ToTime(m.receivedAt) }

func (m *DefaultMeta) Source() string { return m.source }
