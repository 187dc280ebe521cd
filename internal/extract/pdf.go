package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoContent is returned when a page range yields no extractable text.
var ErrNoContent = errors.New("no text content found in requested pages")

// Extractor reads text out of PDF documents. It is stateless; every call
// opens the file fresh.
type Extractor struct{}

// NewExtractor creates a new PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// Text extracts the full plain text of the document.
func (e *Extractor) Text(path string) (string, error) {
	n, err := e.PageCount(path)
	if err != nil {
		return "", err
	}
	return e.PageRangeText(path, 1, n)
}

// FirstPagesText extracts text from up to the first n pages.
func (e *Extractor) FirstPagesText(path string, n int) (string, error) {
	return e.PageRangeText(path, 1, n)
}

// PageRangeText extracts text from the 1-indexed inclusive range
// [start, end]. The range is clamped to the document's true bounds. Pages
// that fail to parse are skipped; ErrNoContent is returned when nothing
// usable came out of the whole range.
func (e *Extractor) PageRangeText(path string, start, end int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	start, end = ClampRange(start, end, total)
	if start > end {
		return "", ErrNoContent
	}

	var sb strings.Builder
	for i := start; i <= end; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the range.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return sb.String(), nil
}

// ClampRange clamps a 1-indexed inclusive page range to [1, total].
func ClampRange(start, end, total int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > total {
		end = total
	}
	return start, end
}
