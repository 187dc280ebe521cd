package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"doc-qa-agent/internal/models"
	"doc-qa-agent/internal/oracle"
	"doc-qa-agent/internal/rag"
	"doc-qa-agent/internal/toc"
)

// ErrNoPath is returned when a session is created without a document.
var ErrNoPath = errors.New("a document path must be provided")

// Extractor is the page-scoped text source the session's own tools (the
// classifier and the ToC resolver) read from.
type Extractor interface {
	FirstPagesText(path string, n int) (string, error)
}

// Session is one document's agent: the reasoning loop plus every cache the
// spec scopes to a session. All derived artifacts (ToC, structure verdict,
// retrieval chains) live here and die with the session; nothing is global.
type Session struct {
	id        string
	path      string
	oracle    oracle.Completer
	extractor Extractor
	builder   *rag.Builder
	log       *zap.Logger

	maxSteps int

	tocResolved bool
	tocEntries  []models.TocEntry
	tocErr      string

	structure string

	chains *gocache.Cache
}

// NewSession creates an agent session for one document.
func NewSession(path string, or oracle.Completer, builder *rag.Builder, ex Extractor, log *zap.Logger) (*Session, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	log = log.With(zap.String("session", id), zap.String("document", path))
	log.Info("document agent session initialized")

	return &Session{
		id:        id,
		path:      path,
		oracle:    or,
		extractor: ex,
		builder:   builder,
		log:       log,
		maxSteps:  defaultMaxSteps,
		chains:    gocache.New(gocache.NoExpiration, 0),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetMaxSteps overrides the reasoning loop's step budget.
func (s *Session) SetMaxSteps(n int) {
	if n > 0 {
		s.maxSteps = n
	}
}

// Close drops every retrieval index this session built.
func (s *Session) Close(ctx context.Context) error {
	var firstErr error
	for key := range s.chains.Items() {
		if err := s.builder.Store.Drop(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.chains.Flush()
	return firstErr
}

// resolveToC resolves the document's table of contents once per session.
// Both outcomes are cached: a successful entry list, or the error text from
// a failed resolution. Either way the extraction and the model call happen
// at most once.
func (s *Session) resolveToC(ctx context.Context) ([]models.TocEntry, string) {
	if s.tocResolved {
		s.log.Debug("table of contents served from cache")
		return s.tocEntries, s.tocErr
	}

	s.log.Info("parsing document for table of contents")
	entries, err := toc.Resolve(ctx, s.extractor, s.oracle, s.path)
	s.tocResolved = true
	if err != nil {
		s.tocErr = err.Error()
		s.log.Warn("table of contents resolution failed", zap.String("error", s.tocErr))
		return nil, s.tocErr
	}
	s.tocEntries = entries
	s.log.Info("table of contents resolved", zap.Int("entries", len(entries)))
	return s.tocEntries, ""
}

// analyzeStructure computes and caches the monograph/compilation verdict.
func (s *Session) analyzeStructure(ctx context.Context) (string, error) {
	if s.structure != "" {
		s.log.Debug("structure analysis served from cache")
		return s.structure, nil
	}

	s.log.Info("analyzing thesis structure from chapter titles")
	entries, errStr := s.resolveToC(ctx)
	if errStr != "" {
		return fmt.Sprintf("Cannot analyze structure, ToC could not be parsed: %s", errStr), nil
	}

	s.structure = toc.AnalyzeStructure(entries)
	return s.structure, nil
}

// chainFor returns the cached chain for key, building and caching it on the
// first request. Failed builds leave the cache untouched.
func (s *Session) chainFor(ctx context.Context, key string, build func(context.Context) (*rag.Chain, error)) (*rag.Chain, error) {
	if v, ok := s.chains.Get(key); ok {
		s.log.Debug("retrieval chain served from cache", zap.String("key", key))
		return v.(*rag.Chain), nil
	}

	chain, err := build(ctx)
	if err != nil {
		return nil, err
	}
	s.chains.Set(key, chain, gocache.NoExpiration)
	return chain, nil
}

// dispatch executes one typed tool request. Tool failures come back as
// errors; the executor turns them into observation text for the model, never
// into process faults.
func (s *Session) dispatch(ctx context.Context, req toolRequest) (string, error) {
	switch req := req.(type) {
	case classifyRequest:
		return s.classify(ctx)

	case structureRequest:
		return s.analyzeStructure(ctx)

	case listToCRequest:
		s.log.Info("listing table of contents")
		entries, errStr := s.resolveToC(ctx)
		if errStr != "" {
			return fmt.Sprintf("Could not list ToC: %s", errStr), nil
		}
		return toc.Format(entries), nil

	case pageRangeRequest:
		s.log.Info("locating chapter", zap.String("identifier", req.Identifier))
		entries, errStr := s.resolveToC(ctx)
		if errStr != "" {
			return fmt.Sprintf("Could not get page range because ToC could not be parsed: %s", errStr), nil
		}
		if len(entries) == 0 {
			return "Could not find a table of contents to search.", nil
		}
		pages, err := toc.Locate(entries, req.Identifier)
		if err != nil {
			return fmt.Sprintf("Could not find a chapter matching '%s' in the Table of Contents.", req.Identifier), nil
		}
		out, err := json.Marshal(pages)
		if err != nil {
			return "", err
		}
		return string(out), nil

	case paperQuestionRequest:
		s.log.Info("answering question over entire document", zap.String("query", req.Query))
		chain, err := s.chainFor(ctx, rag.CacheKey(s.path), func(ctx context.Context) (*rag.Chain, error) {
			return s.builder.BuildChain(ctx, s.path)
		})
		if err != nil {
			return "", err
		}
		return chain.Answer(ctx, req.Query)

	case sectionQuestionRequest:
		s.log.Info("answering question over section",
			zap.String("query", req.Query),
			zap.Int("start_page", req.StartPage),
			zap.Int("end_page", req.EndPage))
		key := rag.SectionCacheKey(s.path, req.StartPage, req.EndPage)
		chain, err := s.chainFor(ctx, key, func(ctx context.Context) (*rag.Chain, error) {
			return s.builder.BuildSectionChain(ctx, s.path, req.StartPage, req.EndPage)
		})
		if err != nil {
			return "", fmt.Errorf("failed to create retrieval chain for section: %w", err)
		}
		return chain.Answer(ctx, req.Query)

	default:
		return "", fmt.Errorf("unhandled tool request %q", req.toolName())
	}
}
