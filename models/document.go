package models

import (
	"time"
)

// Document processing statuses. A document moves
// received -> chunking -> embedding -> stored, or ends in failed.
const (
	StatusReceived  = "received"
	StatusChunking  = "chunking"
	StatusEmbedding = "embedding"
	StatusStored    = "stored"
	StatusFailed    = "failed"
)

// Supported media types. Anything else is rejected before chunking.
const (
	MediaTypeText = "text/plain"
	MediaTypeHTML = "text/html"
	MediaTypePDF  = "application/pdf"
)

// Document is an uploaded source document. Content is immutable after
// creation; deletion cascades to the document's chunks.
type Document struct {
	ID           string     `bson:"_id" json:"id"`
	OwnerID      string     `bson:"owner_id" json:"owner_id"`
	Title        string     `bson:"title" json:"title"`
	MediaType    string     `bson:"media_type" json:"media_type"`
	Content      []byte     `bson:"content" json:"-"` // compressed at rest
	Compression  string     `bson:"compression,omitempty" json:"-"`
	ContentHash  string     `bson:"content_hash" json:"content_hash"`
	ByteSize     int64      `bson:"byte_size" json:"byte_size"`
	Status       string     `bson:"status" json:"status"`
	ChunkCount   int        `bson:"chunk_count" json:"chunk_count"`
	ErrorMessage string     `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	ProcessedAt  *time.Time `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}
