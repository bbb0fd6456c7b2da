package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rag-docqa-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDocumentNotFound is returned when a document id does not exist for
// the requesting owner.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore persists document metadata and compressed content.
type DocumentStore interface {
	Insert(ctx context.Context, doc models.Document) error
	Get(ctx context.Context, ownerID, id string) (models.Document, error)
	List(ctx context.Context, ownerID string) ([]models.Document, error)
	ListByStatus(ctx context.Context, status string) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id, status, errorMessage string) error
	MarkStored(ctx context.Context, id string, chunkCount int) error
	Delete(ctx context.Context, ownerID, id string) error
}

type MongoDocumentStore struct {
	col *mongo.Collection
}

func NewMongoDocumentStore(db *mongo.Database) *MongoDocumentStore {
	return &MongoDocumentStore{col: db.Collection("documents")}
}

func (s *MongoDocumentStore) Insert(ctx context.Context, doc models.Document) error {
	_, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert document %s: %v: %w", doc.ID, err, ErrStorage)
	}
	return nil
}

func (s *MongoDocumentStore) Get(ctx context.Context, ownerID, id string) (models.Document, error) {
	var doc models.Document
	err := s.col.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document %s: %v: %w", id, err, ErrStorage)
	}
	return doc, nil
}

func (s *MongoDocumentStore) List(ctx context.Context, ownerID string) ([]models.Document, error) {
	cursor, err := s.col.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.M{"created_at": -1}).SetProjection(bson.M{"content": 0}))
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %v: %w", ownerID, err, ErrStorage)
	}
	defer cursor.Close(ctx)

	docs := make([]models.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents for %s: %v: %w", ownerID, err, ErrStorage)
	}
	return docs, nil
}

func (s *MongoDocumentStore) ListByStatus(ctx context.Context, status string) ([]models.Document, error) {
	cursor, err := s.col.Find(ctx, bson.M{"status": status},
		options.Find().SetProjection(bson.M{"content": 0}))
	if err != nil {
		return nil, fmt.Errorf("list documents with status %s: %v: %w", status, err, ErrStorage)
	}
	defer cursor.Close(ctx)

	docs := make([]models.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents with status %s: %v: %w", status, err, ErrStorage)
	}
	return docs, nil
}

func (s *MongoDocumentStore) UpdateStatus(ctx context.Context, id, status, errorMessage string) error {
	update := bson.M{"status": status}
	if errorMessage != "" {
		update["error_message"] = errorMessage
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("update status of %s: %v: %w", id, err, ErrStorage)
	}
	return nil
}

func (s *MongoDocumentStore) MarkStored(ctx context.Context, id string, chunkCount int) error {
	now := time.Now()
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       models.StatusStored,
		"chunk_count":  chunkCount,
		"processed_at": now,
	}})
	if err != nil {
		return fmt.Errorf("mark %s stored: %v: %w", id, err, ErrStorage)
	}
	return nil
}

func (s *MongoDocumentStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete document %s: %v: %w", id, err, ErrStorage)
	}
	if res.DeletedCount == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
