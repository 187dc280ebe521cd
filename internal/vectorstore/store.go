package vectorstore

import (
	"context"

	"doc-qa-agent/internal/models"
)

// Store is a similarity index over named collections of embedded chunks.
// A collection is the storage side of one retrieval index handle: built once,
// searched many times, dropped when its owning session ends.
type Store interface {
	// Add inserts chunks (with embeddings populated) into a collection.
	Add(ctx context.Context, collection string, chunks []models.TextChunk) error

	// Search returns the k chunks most similar to the query vector.
	Search(ctx context.Context, collection string, query []float32, k int) ([]models.TextChunk, error)

	// Drop removes a collection and all of its chunks.
	Drop(ctx context.Context, collection string) error
}
