package message

// StorageReference points at the full stored form of a message, so
// components can pass lightweight semantic summaries around the mesh and
// fetch the complete payload only when they need it. Large ingested
// documents are stored once; everything downstream carries a reference.
type StorageReference struct {
	// StorageInstance names the storage component holding the data.
	// Deployments may run several instances ("message-store",
	// "objectstore-primary"); the reference says which one to ask.
	StorageInstance string `json:"storage_instance"`

	// Key retrieves the data from that instance. The layout is backend
	// specific; time-partitioned keys like "2025/01/13/14/msg_abc123"
	// and latest-pointers like "legal/regulation/gdpr/latest" both occur.
	Key string `json:"key"`

	// ContentType is the MIME type of the stored bytes, e.g.
	// "application/json".
	ContentType string `json:"content_type"`

	// Size hints the stored size in bytes so consumers can decide
	// whether fetching is worthwhile. 0 means unknown.
	Size int64 `json:"size,omitempty"`
}

// Storable is a Graphable whose full data lives in external storage. The
// triple summary travels with the message; StorageRef says where the rest
// is. Object stores attach the reference after persisting, downstream
// processors reason over the triples and dereference only on demand.
type Storable interface {
	Graphable

	// StorageRef returns where the full data is stored, or nil if the
	// message carries everything inline.
	StorageRef() *StorageReference
}
