package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"doc-qa-agent/internal/models"
)

// Memory is an in-process Store holding embeddings in plain slices. It keeps
// single-session workloads free of any database dependency; the same
// collections simply vanish with the process.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]models.TextChunk
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]models.TextChunk)}
}

// Add appends chunks to a collection.
func (s *Memory) Add(ctx context.Context, collection string, chunks []models.TextChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], chunks...)
	return nil
}

// Search ranks a collection's chunks by cosine similarity to the query.
func (s *Memory) Search(ctx context.Context, collection string, query []float32, k int) ([]models.TextChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	type scored struct {
		chunk models.TextChunk
		score float64
	}
	ranked := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		ranked = append(ranked, scored{chunk: chunk, score: cosineSimilarity(query, chunk.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]models.TextChunk, 0, k)
	for _, r := range ranked[:k] {
		chunk := r.chunk
		chunk.Embedding = nil
		out = append(out, chunk)
	}
	return out, nil
}

// Drop removes a collection.
func (s *Memory) Drop(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
