package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// Embedder turns text into a vector. Implemented by OllamaEmbedder and by
// test fakes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedders that can process many texts at
// once. Index builders use it when available and fall back to embedding one
// text at a time otherwise.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

var _ BatchEmbedder = (*OllamaEmbedder)(nil)

// OllamaEmbedder generates embeddings through the Ollama API.
type OllamaEmbedder struct {
	Client        *api.Client
	Model         string
	MaxRetries    int
	Timeout       time.Duration
	MaxConcurrent int
}

// NewOllamaEmbedder creates an embedder for the given model. The host is
// resolved from OLLAMA_HOST.
func NewOllamaEmbedder(model string) *OllamaEmbedder {
	client := api.NewClient(envconfig.Host(), http.DefaultClient)

	return &OllamaEmbedder{
		Client:        client,
		Model:         model,
		MaxRetries:    3,
		Timeout:       time.Second * 30,
		MaxConcurrent: 3,
	}
}

// Embed generates an embedding for a single text, retrying transient
// failures with linear backoff.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32
	var err error

	for retries := 0; retries <= e.MaxRetries; retries++ {
		if retries > 0 {
			time.Sleep(time.Duration(retries) * time.Second)
		}

		embedding, err = e.createEmbedding(ctx, text)
		if err == nil {
			return embedding, nil
		}
	}

	return nil, fmt.Errorf("failed to create embedding after %d retries: %w", e.MaxRetries, err)
}

func (e *OllamaEmbedder) createEmbedding(ctx context.Context, text string) ([]float32, error) {
	req := api.EmbeddingRequest{
		Model:  e.Model,
		Prompt: text,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	resp, err := e.Client.Embeddings(ctxWithTimeout, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	out := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedBatch embeds texts in parallel, bounded by MaxConcurrent. The result
// slice is ordered like the input.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.MaxConcurrent)
	out := make([][]float32, len(texts))
	errChan := make(chan error, len(texts))

	for i := range texts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int) {
			defer func() {
				wg.Done()
				<-semaphore
			}()

			embedding, err := e.Embed(ctx, texts[i])
			if err != nil {
				errChan <- fmt.Errorf("failed to embed text %d: %w", i, err)
				return
			}
			out[i] = embedding
		}(i)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	return out, nil
}
