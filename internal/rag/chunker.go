package rag

const (
	// DefaultChunkSize is the sliding-window width in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many characters adjacent chunks share.
	DefaultChunkOverlap = 100
)

// SplitText splits text into contiguous overlapping chunks. The window
// advances by size-overlap characters, so every chunk after the first repeats
// the tail of its predecessor. Boundaries are rune-aligned.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 10
		}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
