package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"doc-qa-agent/internal/models"
)

// Postgres is a pgvector-backed Store. Collections share one table and are
// distinguished by a collection column, so building and dropping an index
// needs no DDL.
type Postgres struct {
	Pool *pgxpool.Pool
	Dims int
}

// NewPostgres connects to the database and registers the pgvector types on
// every pooled connection.
func NewPostgres(ctx context.Context, connStr string, dims int) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{Pool: pool, Dims: dims}, nil
}

// Initialize sets up the chunk table and its indices.
func (s *Postgres) Initialize(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`)
	if err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}

	_, err = s.Pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS doc_chunks (
            id SERIAL PRIMARY KEY,
            collection TEXT NOT NULL,
            chunk_index INTEGER NOT NULL,
            content TEXT NOT NULL,
            document TEXT,
            page_start INTEGER,
            page_end INTEGER,
            embedding vector(%d) NOT NULL
        )
    `, s.Dims))
	if err != nil {
		return fmt.Errorf("failed to create doc_chunks table: %w", err)
	}

	_, err = s.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS doc_chunks_embedding_idx ON doc_chunks
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	_, err = s.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS doc_chunks_collection_idx ON doc_chunks (collection)
	`)
	if err != nil {
		return fmt.Errorf("failed to create collection index: %w", err)
	}

	return nil
}

// Add inserts chunks into a collection.
func (s *Postgres) Add(ctx context.Context, collection string, chunks []models.TextChunk) error {
	for _, chunk := range chunks {
		_, err := s.Pool.Exec(ctx, `
            INSERT INTO doc_chunks (
                collection, chunk_index, content, document, page_start, page_end, embedding
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `,
			collection,
			chunk.Index,
			chunk.Content,
			chunk.Metadata.Document,
			chunk.Metadata.StartPage,
			chunk.Metadata.EndPage,
			pgvector.NewVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", chunk.Index, err)
		}
	}
	return nil
}

// Search returns the k most similar chunks by cosine distance.
func (s *Postgres) Search(ctx context.Context, collection string, query []float32, k int) ([]models.TextChunk, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT chunk_index, content, document, page_start, page_end
		FROM doc_chunks
		WHERE collection = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`, collection, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.TextChunk
	for rows.Next() {
		var chunk models.TextChunk
		if err := rows.Scan(
			&chunk.Index,
			&chunk.Content,
			&chunk.Metadata.Document,
			&chunk.Metadata.StartPage,
			&chunk.Metadata.EndPage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading chunk rows: %w", err)
	}

	return chunks, nil
}

// Drop removes a collection.
func (s *Postgres) Drop(ctx context.Context, collection string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM doc_chunks WHERE collection = $1`, collection)
	if err != nil {
		return fmt.Errorf("failed to drop collection %q: %w", collection, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.Pool.Close()
}
