package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DocumentChunk is the unit of embedding and retrieval. Chunks of a
// document are contiguous and non-overlapping; concatenating them in
// ascending ordinal order reproduces the document content exactly.
type DocumentChunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID    string             `bson:"owner_id" json:"owner_id"`
	DocumentID string             `bson:"document_id" json:"document_id"`
	Ordinal    int                `bson:"ordinal" json:"ordinal"`
	Text       string             `bson:"text" json:"text"`
	Embedding  []float32          `bson:"embedding" json:"-"`
}
