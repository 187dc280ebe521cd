package models

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry in a session's conversation history.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TocEntry is a single table-of-contents entry extracted from a document's
// front matter. Entries are ordered by page ascending; the section locator
// relies on the next entry's page bounding the current entry's section.
type TocEntry struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// PageRange is a 1-indexed inclusive span of document pages.
type PageRange struct {
	StartPage int `json:"start_page"`
	EndPage   int `json:"end_page"`
}

// TextChunk is one embedded slice of document text stored in a vector index.
type TextChunk struct {
	Index     int       `json:"index"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Metadata carries the provenance of a chunk.
type Metadata struct {
	Document  string `json:"document"`
	StartPage int    `json:"start_page,omitempty"`
	EndPage   int    `json:"end_page,omitempty"`
}

// ScratchpadStep is one step of the reasoning trace accumulated within a
// single user turn: a tool invocation with its observation, or a bare
// observation when the model's output could not be parsed. A final answer
// ends the turn instead of becoming a step.
type ScratchpadStep struct {
	Thought     string `json:"thought"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// TurnResult is what one completed agent turn hands back to the host.
type TurnResult struct {
	FinalAnswer string     `json:"final_answer"`
	ChatHistory []ChatTurn `json:"chat_history"`
}
