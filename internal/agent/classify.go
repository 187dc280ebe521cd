package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"doc-qa-agent/internal/extract"
	"doc-qa-agent/internal/oracle"
)

// Document type labels.
const (
	TypeThesis  = "thesis"
	TypePaper   = "paper"
	TypeUnknown = "unknown"
)

// classifyPages is how much front matter the classifier reads.
const classifyPages = 3

const classifyInstructions = "Is the text from a 'thesis' or a 'paper'? Respond with ONLY 'thesis' or 'paper'."

// classify labels the document from its first pages. An unreadable or empty
// document is "unknown" without spending a model call; any label other than
// the two expected ones also maps to "unknown".
func (s *Session) classify(ctx context.Context) (string, error) {
	s.log.Info("classifying document type", zap.String("path", s.path))

	text, err := s.extractor.FirstPagesText(s.path, classifyPages)
	if err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			return TypeUnknown, nil
		}
		return "", fmt.Errorf("error reading document for classification: %w", err)
	}

	out, err := s.oracle.Complete(ctx, oracle.Request{
		System: classifyInstructions,
		User:   text,
	})
	if err != nil {
		return "", fmt.Errorf("classification failed: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(out))
	if label != TypeThesis && label != TypePaper {
		return TypeUnknown, nil
	}
	return label, nil
}
