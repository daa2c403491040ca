// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package vectordb

import (
	"context"
	"sync"
)

// MockVectorDB records upserts in memory. Used when no Qdrant endpoint
// is configured and in tests.
type MockVectorDB struct {
	mu      sync.Mutex
	vectors map[string][]float32
	payload map[string]map[string]string
}

// NewMockVectorDB creates an in-memory vector store.
func NewMockVectorDB() *MockVectorDB {
	return &MockVectorDB{
		vectors: make(map[string][]float32),
		payload: make(map[string]map[string]string),
	}
}

// Upsert records the vector and payload under id.
func (m *MockVectorDB) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[id] = vector
	m.payload[id] = payload
	return nil
}

// Search returns empty results for mock.
func (m *MockVectorDB) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	return []Match{}, nil
}

// Delete removes a recorded vector.
func (m *MockVectorDB) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, id)
	delete(m.payload, id)
	return nil
}

// Count returns the number of stored vectors.
func (m *MockVectorDB) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vectors)
}

// Payload returns the recorded payload for id, nil when absent.
func (m *MockVectorDB) Payload(id string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload[id]
}
