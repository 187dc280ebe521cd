package oracle

import (
	"context"

	"doc-qa-agent/internal/models"
)

// Request is a single completion request. History and User are distinct so
// implementations can map them onto role-aware chat APIs.
type Request struct {
	System  string
	History []models.ChatTurn
	User    string
}

// Completer is the LLM completion contract. Output is untrusted free text:
// callers must be prepared for responses that do not follow instructions.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
