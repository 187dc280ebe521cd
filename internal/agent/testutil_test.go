package agent

import (
	"context"
	"strings"
	"testing"

	"doc-qa-agent/internal/extract"
	"doc-qa-agent/internal/oracle"
	"doc-qa-agent/internal/rag"
	"doc-qa-agent/internal/vectorstore"
)

// stubExtractor satisfies both the agent's and the rag builder's extraction
// interfaces from a fixed page list.
type stubExtractor struct {
	pages          []string
	firstCalls     int
	textCalls      int
	rangeCalls     int
	pageCountCalls int
}

func (s *stubExtractor) FirstPagesText(path string, n int) (string, error) {
	s.firstCalls++
	if n > len(s.pages) {
		n = len(s.pages)
	}
	return s.join(1, n)
}

func (s *stubExtractor) Text(path string) (string, error) {
	s.textCalls++
	return s.join(1, len(s.pages))
}

func (s *stubExtractor) PageCount(path string) (int, error) {
	s.pageCountCalls++
	return len(s.pages), nil
}

func (s *stubExtractor) PageRangeText(path string, start, end int) (string, error) {
	s.rangeCalls++
	start, end = extract.ClampRange(start, end, len(s.pages))
	return s.join(start, end)
}

func (s *stubExtractor) join(start, end int) (string, error) {
	var parts []string
	for i := start; i <= end && i >= 1; i++ {
		if s.pages[i-1] != "" {
			parts = append(parts, s.pages[i-1])
		}
	}
	if len(parts) == 0 {
		return "", extract.ErrNoContent
	}
	return strings.Join(parts, "\n\n"), nil
}

// stubEmbedder returns a deterministic vector per text.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r)
	}
	return vec, nil
}

// routedCompleter answers model calls by recognizing which component issued
// them, so one fake can serve the reasoning loop, the classifier, the ToC
// resolver, and the retrieval chains while counting each separately.
type routedCompleter struct {
	// reason produces the reasoning-loop response for the n-th call (1-based).
	reason func(call int, req oracle.Request) string

	classifyResponse string
	tocResponse      string
	ragResponse      string

	reasonCalls   int
	classifyCalls int
	tocCalls      int
	ragCalls      int

	reasonRequests []oracle.Request
}

func (r *routedCompleter) Complete(ctx context.Context, req oracle.Request) (string, error) {
	switch {
	case req.System == classifyInstructions:
		r.classifyCalls++
		return r.classifyResponse, nil
	case strings.HasPrefix(req.User, "You are a text-processing utility"):
		r.tocCalls++
		return r.tocResponse, nil
	case strings.HasPrefix(req.User, "Answer the following question based only"):
		r.ragCalls++
		return r.ragResponse, nil
	default:
		r.reasonCalls++
		r.reasonRequests = append(r.reasonRequests, req)
		if r.reason == nil {
			return "", nil
		}
		return r.reason(r.reasonCalls, req), nil
	}
}

// newTestSession wires a session against in-memory fakes.
func newTestSession(t *testing.T, com oracle.Completer, ex *stubExtractor) (*Session, *vectorstore.Memory) {
	t.Helper()
	store := vectorstore.NewMemory()
	builder := rag.NewBuilder(ex, &stubEmbedder{}, store, com, nil)
	session, err := NewSession("thesis.pdf", com, builder, ex, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session, store
}

func finalAnswer(text string) string {
	return "Thought: I have enough information.\nFinal Answer: " + text
}

func toolCall(name, input string) string {
	return "Thought: I need more information.\nAction: " + name + "\nAction Input: " + input
}
