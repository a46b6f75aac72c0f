package knowledge

import "strings"

// Chunking defaults, sized so one chunk stays well inside embedding model
// input limits.
const (
	DefaultChunkWords   = 200
	DefaultChunkOverlap = 40
)

// ChunkText splits text into word windows of chunkWords with overlap words
// shared between neighbors. Text at or under the window size is returned
// as a single chunk.
func ChunkText(text string, chunkWords, overlap int) []string {
	if chunkWords <= 0 {
		chunkWords = DefaultChunkWords
	}
	if overlap < 0 || overlap >= chunkWords {
		overlap = DefaultChunkOverlap
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= chunkWords {
		return []string{strings.Join(words, " ")}
	}

	step := chunkWords - overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
