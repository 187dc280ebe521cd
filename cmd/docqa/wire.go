package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"doc-qa-agent/internal/agent"
	"doc-qa-agent/internal/config"
	"doc-qa-agent/internal/embedding"
	"doc-qa-agent/internal/extract"
	"doc-qa-agent/internal/oracle"
	"doc-qa-agent/internal/rag"
	"doc-qa-agent/internal/vectorstore"
)

// buildSession wires one agent session for a document. The vector index
// lives in Postgres when POSTGRES_URL is set and in process memory
// otherwise. The returned cleanup tears the session's indexes down.
func buildSession(ctx context.Context, path string, verbose bool) (*agent.Session, func(), error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("cannot open document %q: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, err
		}
	}

	completer := oracle.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	embedder := embedding.NewOllamaEmbedder(cfg.EmbeddingModel)

	var store vectorstore.Store
	var closeStore func()
	if cfg.PostgresURL != "" {
		pg, err := vectorstore.NewPostgres(ctx, cfg.PostgresURL, cfg.EmbeddingDims)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Initialize(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		store = pg
		closeStore = pg.Close
	} else {
		store = vectorstore.NewMemory()
		closeStore = func() {}
	}

	extractor := extract.NewExtractor()
	builder := rag.NewBuilder(extractor, embedder, store, completer, log)

	session, err := agent.NewSession(path, completer, builder, extractor, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	session.SetMaxSteps(cfg.MaxSteps)

	cleanup := func() {
		if err := session.Close(context.Background()); err != nil {
			log.Warn("session teardown failed", zap.Error(err))
		}
		closeStore()
		_ = log.Sync()
	}
	return session, cleanup, nil
}
