package toc

import (
	"fmt"
	"strings"

	"doc-qa-agent/internal/models"
)

// genericTitles are common chapter names that appear in any thesis and say
// nothing about whether a chapter is a standalone paper.
var genericTitles = []string{
	"introduction", "summary", "conclusion", "discussion", "background",
	"literature review", "methodology", "methods", "references", "bibliography",
	"acknowledgements", "abstract",
}

// minPaperTitleLength filters out short non-generic titles that are unlikely
// to be full paper titles.
const minPaperTitleLength = 15

// AnalyzeStructure inspects a thesis's ToC and reports whether it looks like
// a monograph or a compilation of papers. A chapter counts as a candidate
// paper when its title is not generic and is reasonably long.
func AnalyzeStructure(entries []models.TocEntry) string {
	var papers []string
	for _, entry := range entries {
		title := strings.TrimSpace(strings.ToLower(entry.Title))
		if isGeneric(title) {
			continue
		}
		if len(title) > minPaperTitleLength {
			papers = append(papers, entry.Title)
		}
	}

	if len(papers) == 0 {
		return "Analysis complete: This document appears to be a standard monograph-style thesis, " +
			"as most chapters have generic titles like 'Introduction' or 'Conclusion'."
	}

	return fmt.Sprintf(
		"Analysis complete: This thesis appears to be a compilation of %d papers. "+
			"The following non-generic chapters have been identified as potential standalone papers:\n- %s",
		len(papers), strings.Join(papers, "\n- "))
}

func isGeneric(title string) bool {
	for _, generic := range genericTitles {
		if strings.Contains(title, generic) {
			return true
		}
	}
	return false
}
