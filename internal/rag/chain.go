package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"doc-qa-agent/internal/embedding"
	"doc-qa-agent/internal/extract"
	"doc-qa-agent/internal/models"
	"doc-qa-agent/internal/oracle"
	"doc-qa-agent/internal/vectorstore"
)

// Extractor provides the document text the builder indexes.
type Extractor interface {
	Text(path string) (string, error)
	PageCount(path string) (int, error)
	PageRangeText(path string, start, end int) (string, error)
}

// ErrInvalidRange is returned when a section's resolved start page is not
// strictly before its resolved end page.
var ErrInvalidRange = errors.New("start page is after the end page or page numbers are invalid")

// NoAnswer is the fallback returned when the model produces no usable answer.
const NoAnswer = "No answer could be generated."

const defaultTopK = 4

// CacheKey is the retrieval-index cache key for a whole document.
func CacheKey(path string) string {
	return path
}

// SectionCacheKey is the cache key for a page-bounded section index. Two
// requests with identical bounds must produce identical keys.
func SectionCacheKey(path string, start, end int) string {
	return fmt.Sprintf("%s:%d:%d", path, start, end)
}

// Builder constructs question-answering chains. Building is the expensive
// path (extraction, embedding, index population); callers are expected to
// cache the returned chains.
type Builder struct {
	Extractor Extractor
	Embedder  embedding.Embedder
	Store     vectorstore.Store
	Oracle    oracle.Completer
	Log       *zap.Logger

	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// NewBuilder creates a Builder with the default chunking parameters.
func NewBuilder(ex Extractor, em embedding.Embedder, st vectorstore.Store, or oracle.Completer, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		Extractor:    ex,
		Embedder:     em,
		Store:        st,
		Oracle:       or,
		Log:          log,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		TopK:         defaultTopK,
	}
}

// Chain answers questions against one fixed retrieval context.
type Chain struct {
	collection string
	embedder   embedding.Embedder
	store      vectorstore.Store
	oracle     oracle.Completer
	log        *zap.Logger
	topK       int
}

// Collection reports the store collection this chain searches.
func (c *Chain) Collection() string {
	return c.collection
}

// BuildChain builds a chain over the entire document.
func (b *Builder) BuildChain(ctx context.Context, path string) (*Chain, error) {
	b.Log.Info("building retrieval chain for entire document", zap.String("path", path))

	text, err := b.Extractor.Text(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	meta := models.Metadata{Document: path}
	return b.build(ctx, CacheKey(path), text, meta)
}

// BuildSectionChain builds a chain over the 1-indexed inclusive page range
// [start, end]. The range is clamped to the document's true bounds first;
// ErrInvalidRange is reported when the clamped range is empty or inverted,
// before any extraction work happens.
func (b *Builder) BuildSectionChain(ctx context.Context, path string, start, end int) (*Chain, error) {
	b.Log.Info("building retrieval chain for section",
		zap.String("path", path), zap.Int("start_page", start), zap.Int("end_page", end))

	total, err := b.Extractor.PageCount(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	clampedStart, clampedEnd := extract.ClampRange(start, end, total)
	if clampedStart > clampedEnd {
		return nil, ErrInvalidRange
	}

	text, err := b.Extractor.PageRangeText(path, clampedStart, clampedEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to extract section text: %w", err)
	}

	meta := models.Metadata{Document: path, StartPage: start, EndPage: end}
	return b.build(ctx, SectionCacheKey(path, start, end), text, meta)
}

func (b *Builder) build(ctx context.Context, collection, text string, meta models.Metadata) (*Chain, error) {
	parts := SplitText(text, b.ChunkSize, b.ChunkOverlap)
	if len(parts) == 0 {
		return nil, extract.ErrNoContent
	}

	vecs, err := b.embedAll(ctx, parts)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.TextChunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, models.TextChunk{
			Index:     i,
			Content:   part,
			Metadata:  meta,
			Embedding: vecs[i],
		})
	}

	if err := b.Store.Add(ctx, collection, chunks); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	b.Log.Info("retrieval chain ready",
		zap.String("collection", collection), zap.Int("chunks", len(chunks)))

	return &Chain{
		collection: collection,
		embedder:   b.Embedder,
		store:      b.Store,
		oracle:     b.Oracle,
		log:        b.Log,
		topK:       b.TopK,
	}, nil
}

// embedAll embeds every chunk, in one bounded-parallel batch when the
// embedder supports it.
func (b *Builder) embedAll(ctx context.Context, parts []string) ([][]float32, error) {
	if batch, ok := b.Embedder.(embedding.BatchEmbedder); ok {
		vecs, err := batch.EmbedBatch(ctx, parts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
		return vecs, nil
	}

	vecs := make([][]float32, len(parts))
	for i, part := range parts {
		vec, err := b.Embedder.Embed(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Answer retrieves the chunks most similar to the query and asks the model
// to answer from that context alone.
func (c *Chain) Answer(ctx context.Context, query string) (string, error) {
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := c.store.Search(ctx, c.collection, vec, c.topK)
	if err != nil {
		return "", fmt.Errorf("failed to search index: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Answer the following question based only on the provided context:\n\n")
	sb.WriteString("Context:\n")
	for _, chunk := range chunks {
		sb.WriteString(chunk.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)

	answer, err := c.oracle.Complete(ctx, oracle.Request{User: sb.String()})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return NoAnswer, nil
	}
	return answer, nil
}
