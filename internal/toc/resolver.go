package toc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"doc-qa-agent/internal/extract"
	"doc-qa-agent/internal/models"
	"doc-qa-agent/internal/oracle"
)

// MaxScanPages bounds how much front matter is scanned for a ToC.
const MaxScanPages = 20

// TextSource provides page-scoped document text.
type TextSource interface {
	FirstPagesText(path string, n int) (string, error)
}

const resolvePrompt = "You are a text-processing utility. Analyze the following text and extract the Table of Contents. " +
	"Respond with ONLY a valid JSON array, where each object has a 'title' (string) and 'page' (integer) key. " +
	"Example: [{\"title\": \"Chapter 1: Introduction\", \"page\": 1}, {\"title\": \"Chapter 2: Background\", \"page\": 15}]\n\n" +
	"Text: "

// DecodeError reports that the model's ToC output was not valid JSON. Raw
// carries the verbatim output so the formatting mistake can be diagnosed.
type DecodeError struct {
	Raw string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse table of contents into JSON. Raw response: %s", e.Raw)
}

// Resolve extracts text from the document's first pages and asks the model
// to parse it into structured ToC entries. All failures come back as error
// values; callers cache whichever outcome they get.
func Resolve(ctx context.Context, src TextSource, or oracle.Completer, path string) ([]models.TocEntry, error) {
	text, err := src.FirstPagesText(path, MaxScanPages)
	if err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			return nil, fmt.Errorf("no text could be extracted to find a table of contents")
		}
		return nil, fmt.Errorf("error reading document for table of contents: %w", err)
	}

	raw, err := or.Complete(ctx, oracle.Request{User: resolvePrompt + text})
	if err != nil {
		return nil, fmt.Errorf("table of contents parsing failed: %w", err)
	}

	cleaned := stripCodeFences(raw)
	var entries []models.TocEntry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, &DecodeError{Raw: raw}
	}
	return entries, nil
}

// stripCodeFences removes ``` markers and a leading language tag so a
// fenced-but-otherwise-valid JSON response still decodes.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}

// Format renders entries as a numbered "N. Title (page P)" listing.
func Format(entries []models.TocEntry) string {
	if len(entries) == 0 {
		return "The Table of Contents is empty or could not be found."
	}
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s (page %d)", i+1, entry.Title, entry.Page))
	}
	return strings.Join(lines, "\n")
}
