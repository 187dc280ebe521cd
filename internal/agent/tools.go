package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tool names exposed to the model.
const (
	toolClassify  = "classify_document_type"
	toolStructure = "analyze_thesis_structure"
	toolListToC   = "list_table_of_contents"
	toolPageRange = "get_page_range_for_chapter"
	toolPaperQA   = "answer_paper_question"
	toolSectionQA = "answer_question_on_section"
)

// ToolSpec describes one capability for the system prompt.
type ToolSpec struct {
	Name        string
	Description string
}

// toolSpecs is the fixed registry. Order is stable so prompts are
// reproducible.
var toolSpecs = []ToolSpec{
	{toolClassify, "Determines if the document is a 'PhD thesis' or a 'scientific paper'."},
	{toolStructure, "Analyzes a thesis to check if it's a collection of papers or a single monograph based on chapter titles."},
	{toolListToC, "Gets a numbered list of all chapter titles and their start pages."},
	{toolPageRange, "Gets the exact start/end pages for a chapter with a known title or number."},
	{toolPaperQA, "Answers a specific question about a document classified as a 'paper'."},
	{toolSectionQA, "Answers a question about a specific section of a thesis using a page range. Input must be a JSON object with 'query', 'start_page' and 'end_page' keys."},
}

// Tools returns the registry entries.
func Tools() []ToolSpec {
	return toolSpecs
}

func toolNames() []string {
	names := make([]string, len(toolSpecs))
	for i, spec := range toolSpecs {
		names[i] = spec.Name
	}
	return names
}

// toolRequest is the closed set of dispatchable tool invocations. Parsing a
// model's (action, input) pair into one of these cases happens before any
// capability runs, so dispatch itself never sees malformed input.
type toolRequest interface {
	toolName() string
}

type classifyRequest struct{}

type structureRequest struct{}

type listToCRequest struct{}

type pageRangeRequest struct {
	Identifier string
}

type paperQuestionRequest struct {
	Query string
}

type sectionQuestionRequest struct {
	Query     string
	StartPage int
	EndPage   int
}

func (classifyRequest) toolName() string        { return toolClassify }
func (structureRequest) toolName() string       { return toolStructure }
func (listToCRequest) toolName() string         { return toolListToC }
func (pageRangeRequest) toolName() string       { return toolPageRange }
func (paperQuestionRequest) toolName() string   { return toolPaperQA }
func (sectionQuestionRequest) toolName() string { return toolSectionQA }

// parseToolRequest validates an action name and its single-string input. The
// returned errors are written for the model, which is expected to read them
// as observations and self-correct.
func parseToolRequest(action, input string) (toolRequest, error) {
	switch action {
	case toolClassify:
		return classifyRequest{}, nil
	case toolStructure:
		return structureRequest{}, nil
	case toolListToC:
		return listToCRequest{}, nil
	case toolPageRange:
		if strings.TrimSpace(input) == "" {
			return nil, fmt.Errorf("Error: %s requires a chapter name or number as input.", toolPageRange)
		}
		return pageRangeRequest{Identifier: input}, nil
	case toolPaperQA:
		if strings.TrimSpace(input) == "" {
			return nil, fmt.Errorf("Error: %s requires a question as input.", toolPaperQA)
		}
		return paperQuestionRequest{Query: input}, nil
	case toolSectionQA:
		return parseSectionRequest(input)
	default:
		return nil, fmt.Errorf("Error: unknown tool %q. Available tools: [%s]", action, strings.Join(toolNames(), ", "))
	}
}

// sectionInput is the wire shape of the section tool's JSON payload. Page
// fields stay untyped so both 10 and "10" can be coerced.
type sectionInput struct {
	Query     string `json:"query"`
	StartPage any    `json:"start_page"`
	EndPage   any    `json:"end_page"`
}

func parseSectionRequest(input string) (toolRequest, error) {
	var parsed sectionInput
	if err := json.Unmarshal([]byte(input), &parsed); err != nil {
		return nil, fmt.Errorf("Error: Invalid input format. Expected JSON with 'query', 'start_page', 'end_page'. Details: %v", err)
	}
	if parsed.Query == "" {
		return nil, fmt.Errorf("Error: Invalid input format. The 'query' field is required.")
	}
	start, err := coercePage(parsed.StartPage)
	if err != nil {
		return nil, fmt.Errorf("Error: Invalid input format. 'start_page' must be an integer. Details: %v", err)
	}
	end, err := coercePage(parsed.EndPage)
	if err != nil {
		return nil, fmt.Errorf("Error: Invalid input format. 'end_page' must be an integer. Details: %v", err)
	}
	return sectionQuestionRequest{
		Query:     parsed.Query,
		StartPage: start,
		EndPage:   end,
	}, nil
}

func coercePage(v any) (int, error) {
	switch v := v.(type) {
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case nil:
		return 0, fmt.Errorf("field is missing")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
