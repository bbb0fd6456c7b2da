package services

import (
	"context"
	"fmt"
	"sync"

	"rag-docqa-platform/models"
)

// stubEmbedder returns canned vectors keyed by input text, or a fixed
// error after a given number of calls.
type stubEmbedder struct {
	mu        sync.Mutex
	vectors   map[string][]float32
	fallback  []float32
	err       error
	failAfter int // fail on call number failAfter (1-based); 0 = always apply err
	calls     int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil && (s.failAfter == 0 || s.calls >= s.failAfter) {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return []float32{1, 0, 0}, nil
}

// stubSynthesizer records the prompt pieces it was called with and
// echoes the context back.
type stubSynthesizer struct {
	mu           sync.Mutex
	calls        int
	lastSystem   string
	lastContext  string
	lastQuestion string
	err          error
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, systemInstruction, contextBlock, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastSystem = systemInstruction
	s.lastContext = contextBlock
	s.lastQuestion = question
	if s.err != nil {
		return "", s.err
	}
	return contextBlock, nil
}

// memoryChunkStore is an in-process ChunkStore for pipeline tests.
type memoryChunkStore struct {
	mu     sync.Mutex
	chunks []models.DocumentChunk
	putErr error
}

func (m *memoryChunkStore) Put(ctx context.Context, chunk models.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.chunks = append(m.chunks, chunk)
	return nil
}

func (m *memoryChunkStore) QuerySimilar(ctx context.Context, ownerID string, queryVec []float32, threshold float64, k int) ([]models.RetrievedPassage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := make([]models.DocumentChunk, 0, len(m.chunks))
	for _, ch := range m.chunks {
		if ch.OwnerID == ownerID {
			owned = append(owned, ch)
		}
	}
	return rankPassages(owned, queryVec, threshold, k), nil
}

func (m *memoryChunkStore) DeleteByDocument(ctx context.Context, ownerID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, ch := range m.chunks {
		if ch.OwnerID != ownerID || ch.DocumentID != documentID {
			kept = append(kept, ch)
		}
	}
	m.chunks = kept
	return nil
}

// memoryDocumentStore tracks documents and their status transitions.
type memoryDocumentStore struct {
	mu       sync.Mutex
	docs     map[string]models.Document
	statuses map[string][]string
}

func newMemoryDocumentStore() *memoryDocumentStore {
	return &memoryDocumentStore{
		docs:     make(map[string]models.Document),
		statuses: make(map[string][]string),
	}
}

func (m *memoryDocumentStore) Insert(ctx context.Context, doc models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memoryDocumentStore) Get(ctx context.Context, ownerID, id string) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return models.Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

func (m *memoryDocumentStore) List(ctx context.Context, ownerID string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memoryDocumentStore) ListByStatus(ctx context.Context, status string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for _, doc := range m.docs {
		if doc.Status == status {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memoryDocumentStore) UpdateStatus(ctx context.Context, id, status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("update status of %s: %w", id, ErrDocumentNotFound)
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	m.docs[id] = doc
	m.statuses[id] = append(m.statuses[id], status)
	return nil
}

func (m *memoryDocumentStore) MarkStored(ctx context.Context, id string, chunkCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("mark %s stored: %w", id, ErrDocumentNotFound)
	}
	doc.Status = models.StatusStored
	doc.ChunkCount = chunkCount
	m.docs[id] = doc
	m.statuses[id] = append(m.statuses[id], models.StatusStored)
	return nil
}

func (m *memoryDocumentStore) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}
