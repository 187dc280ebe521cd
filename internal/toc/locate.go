package toc

import (
	"errors"
	"strings"

	"doc-qa-agent/internal/models"
)

// ErrNotFound is returned when no ToC entry matches a chapter identifier.
var ErrNotFound = errors.New("no matching chapter in the table of contents")

// lastChapterSpan is the assumed page length of the final chapter, which has
// no following entry to bound it.
const lastChapterSpan = 100

// Locate maps a chapter identifier (a name like "Results" or a number like
// "Chapter 3") to its page range. The identifier matches an entry when it is
// a substring of the normalized title, or when the title starts with the
// identifier followed by a space, period, or colon. The first match in ToC
// order wins. An identifier that normalizes to empty (such as the bare word
// "chapter") matches nothing rather than everything.
func Locate(entries []models.TocEntry, identifier string) (models.PageRange, error) {
	norm := normalizeIdentifier(identifier)
	if norm == "" || len(entries) == 0 {
		return models.PageRange{}, ErrNotFound
	}

	found := -1
	for i, entry := range entries {
		title := strings.ToLower(entry.Title)
		if strings.Contains(title, norm) || startsWithDelimited(title, norm) {
			found = i
			break
		}
	}
	if found == -1 {
		return models.PageRange{}, ErrNotFound
	}

	start := entries[found].Page
	end := start + lastChapterSpan
	if found+1 < len(entries) {
		end = entries[found+1].Page - 1
	}
	return models.PageRange{StartPage: start, EndPage: end}, nil
}

func normalizeIdentifier(identifier string) string {
	norm := strings.ToLower(identifier)
	norm = strings.ReplaceAll(norm, "chapter", "")
	return strings.TrimSpace(norm)
}

func startsWithDelimited(title, prefix string) bool {
	if !strings.HasPrefix(title, prefix) {
		return false
	}
	rest := title[len(prefix):]
	if rest == "" {
		return false
	}
	switch rest[0] {
	case ' ', '.', ':':
		return true
	}
	return false
}
