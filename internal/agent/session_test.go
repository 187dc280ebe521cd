package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-qa-agent/internal/oracle"
	"doc-qa-agent/internal/rag"
)

const sampleToC = `[{"title": "Chapter 1: Introduction", "page": 2}, {"title": "A Study of Distributed Consensus Protocols", "page": 15}]`

// scripted returns a reason func that replays responses in order.
func scripted(responses ...string) func(int, oracle.Request) string {
	return func(call int, req oracle.Request) string {
		return responses[call-1]
	}
}

func TestNewSessionRequiresPath(t *testing.T) {
	_, err := NewSession("", nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestToCResolvedOncePerSession(t *testing.T) {
	com := &routedCompleter{
		tocResponse: sampleToC,
		reason: scripted(
			toolCall(toolListToC, `""`),
			finalAnswer("Two chapters."),
			toolCall(toolListToC, `""`),
			finalAnswer("Still two chapters."),
		),
	}
	ex := &stubExtractor{pages: []string{"cover", "contents"}}
	session, _ := newTestSession(t, com, ex)

	first, err := session.Ask(context.Background(), "list the chapters", nil)
	require.NoError(t, err)
	second, err := session.Ask(context.Background(), "list them again", first.ChatHistory)
	require.NoError(t, err)

	assert.Equal(t, 1, com.tocCalls, "the document is parsed for a ToC at most once per session")
	assert.Equal(t, 1, ex.firstCalls)
	assert.Contains(t, com.reasonRequests[1].User, "1. Chapter 1: Introduction (page 2)")
	assert.Equal(t, "Still two chapters.", second.FinalAnswer)
}

func TestToCFailureCachedAsError(t *testing.T) {
	com := &routedCompleter{
		tocResponse: "I could not find a table of contents, sorry.",
		reason: scripted(
			toolCall(toolPageRange, "Introduction"),
			toolCall(toolPageRange, "Introduction"),
			finalAnswer("The ToC is unreadable."),
		),
	}
	session, _ := newTestSession(t, com, &stubExtractor{pages: []string{"cover"}})

	_, err := session.Ask(context.Background(), "where is the introduction?", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, com.tocCalls, "a failed resolution is cached like a successful one")
	require.Len(t, com.reasonRequests, 3)
	for _, req := range com.reasonRequests[1:] {
		assert.Contains(t, req.User, "Could not get page range because ToC could not be parsed")
	}
}

func TestPageRangeObservationIsJSON(t *testing.T) {
	com := &routedCompleter{
		tocResponse: sampleToC,
		reason: scripted(
			toolCall(toolPageRange, "introduction"),
			finalAnswer("Pages 2 to 14."),
		),
	}
	session, _ := newTestSession(t, com, &stubExtractor{pages: []string{"cover", "contents"}})

	_, err := session.Ask(context.Background(), "where is the introduction?", nil)

	require.NoError(t, err)
	require.Len(t, com.reasonRequests, 2)
	assert.Contains(t, com.reasonRequests[1].User, `{"start_page":2,"end_page":14}`)
}

func TestPageRangeUnknownChapter(t *testing.T) {
	com := &routedCompleter{
		tocResponse: sampleToC,
		reason: scripted(
			toolCall(toolPageRange, "Appendix Z"),
			finalAnswer("No such chapter."),
		),
	}
	session, _ := newTestSession(t, com, &stubExtractor{pages: []string{"cover", "contents"}})

	_, err := session.Ask(context.Background(), "where is appendix z?", nil)

	require.NoError(t, err)
	require.Len(t, com.reasonRequests, 2)
	assert.Contains(t, com.reasonRequests[1].User,
		"Could not find a chapter matching 'Appendix Z' in the Table of Contents.")
}

func TestStructureVerdictCached(t *testing.T) {
	com := &routedCompleter{
		tocResponse: sampleToC,
		reason: scripted(
			toolCall(toolStructure, `""`),
			toolCall(toolStructure, `""`),
			finalAnswer("A compilation of one paper."),
		),
	}
	session, _ := newTestSession(t, com, &stubExtractor{pages: []string{"cover", "contents"}})

	_, err := session.Ask(context.Background(), "is this a compilation?", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, com.tocCalls)
	require.Len(t, com.reasonRequests, 3)
	assert.Contains(t, com.reasonRequests[1].User, "compilation of 1 papers")
	assert.Contains(t, com.reasonRequests[2].User, "compilation of 1 papers")
}

func TestStructureUnavailableWithoutToC(t *testing.T) {
	com := &routedCompleter{
		tocResponse: "not json at all",
		reason: scripted(
			toolCall(toolStructure, `""`),
			finalAnswer("Cannot tell."),
		),
	}
	session, _ := newTestSession(t, com, &stubExtractor{pages: []string{"cover"}})

	_, err := session.Ask(context.Background(), "is this a compilation?", nil)

	require.NoError(t, err)
	require.Len(t, com.reasonRequests, 2)
	assert.Contains(t, com.reasonRequests[1].User, "Cannot analyze structure, ToC could not be parsed")
}

func TestWholeDocumentChainBuiltOnce(t *testing.T) {
	com := &routedCompleter{
		ragResponse: "The paper is about consensus.",
		reason: scripted(
			toolCall(toolPaperQA, "what is it about?"),
			toolCall(toolPaperQA, "what is the topic?"),
			finalAnswer("Consensus."),
		),
	}
	ex := &stubExtractor{pages: []string{"page one text", "page two text"}}
	session, _ := newTestSession(t, com, ex)

	_, err := session.Ask(context.Background(), "what is this paper about?", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, ex.textCalls, "the document is indexed once and reused")
	assert.Equal(t, 2, com.ragCalls)
}

func TestSectionChainCachedByRange(t *testing.T) {
	com := &routedCompleter{
		ragResponse: "The section covers related work.",
		reason: scripted(
			toolCall(toolSectionQA, `{"query": "what is covered?", "start_page": 1, "end_page": 3}`),
			toolCall(toolSectionQA, `{"query": "anything else?", "start_page": 1, "end_page": 3}`),
			toolCall(toolSectionQA, `{"query": "and here?", "start_page": 2, "end_page": 4}`),
			finalAnswer("Related work."),
		),
	}
	ex := &stubExtractor{pages: []string{"one", "two", "three", "four", "five"}}
	session, _ := newTestSession(t, com, ex)

	_, err := session.Ask(context.Background(), "what does the middle cover?", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, ex.rangeCalls, "identical ranges share one index, distinct ranges get their own")
	assert.Equal(t, 3, com.ragCalls)
}

func TestInvalidSectionRangeBecomesObservation(t *testing.T) {
	com := &routedCompleter{
		reason: scripted(
			toolCall(toolSectionQA, `{"query": "what?", "start_page": 5, "end_page": 2}`),
			finalAnswer("Those pages are backwards."),
		),
	}
	ex := &stubExtractor{pages: []string{"one", "two", "three", "four", "five", "six"}}
	session, store := newTestSession(t, com, ex)

	result, err := session.Ask(context.Background(), "what is on pages 5 to 2?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Those pages are backwards.", result.FinalAnswer)
	assert.Equal(t, 0, ex.rangeCalls, "no extraction is attempted for an invalid range")
	require.Len(t, com.reasonRequests, 2)
	assert.Contains(t, com.reasonRequests[1].User, "failed to create retrieval chain for section")

	_, searchErr := store.Search(context.Background(), rag.SectionCacheKey("thesis.pdf", 5, 2), []float32{1}, 1)
	assert.Error(t, searchErr, "a failed build must not leave a collection behind")
}

func TestCloseDropsSessionCollections(t *testing.T) {
	com := &routedCompleter{
		ragResponse: "An answer.",
		reason: scripted(
			toolCall(toolPaperQA, "what is it about?"),
			finalAnswer("Done."),
		),
	}
	ex := &stubExtractor{pages: []string{"page one text"}}
	session, store := newTestSession(t, com, ex)

	_, err := session.Ask(context.Background(), "what is this about?", nil)
	require.NoError(t, err)

	_, searchErr := store.Search(context.Background(), rag.CacheKey("thesis.pdf"), []float32{1}, 1)
	require.NoError(t, searchErr, "the whole-document index exists before Close")

	require.NoError(t, session.Close(context.Background()))

	_, searchErr = store.Search(context.Background(), rag.CacheKey("thesis.pdf"), []float32{1}, 1)
	assert.Error(t, searchErr, "Close drops every index the session built")
}
