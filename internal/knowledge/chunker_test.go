package knowledge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("just a few words", 200, 40)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words", chunks[0])

	assert.Nil(t, ChunkText("   ", 200, 40))
}

func TestChunkTextWindowsOverlap(t *testing.T) {
	text := strings.Join(numberedWords(10), " ")

	chunks := ChunkText(text, 4, 2)
	require.GreaterOrEqual(t, len(chunks), 3)
	assert.Equal(t, "w0 w1 w2 w3", chunks[0])
	assert.Equal(t, "w2 w3 w4 w5", chunks[1], "neighbors must share the overlap")
}

func TestChunkTextDefaultWindowBounds(t *testing.T) {
	// Exactly one window stays a single chunk; one extra word splits.
	atWindow := strings.Join(numberedWords(DefaultChunkWords), " ")
	assert.Len(t, ChunkText(atWindow, 0, 0), 1)

	overWindow := strings.Join(numberedWords(DefaultChunkWords+1), " ")
	chunks := ChunkText(overWindow, 0, 0)
	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(chunk)), DefaultChunkWords)
	}
}

func TestChunkTextCoversAllWordsInOrder(t *testing.T) {
	words := numberedWords(23)
	chunks := ChunkText(strings.Join(words, " "), 5, 2)

	step := 5 - 2
	var reassembled []string
	for i, chunk := range chunks {
		chunkWords := strings.Fields(chunk)
		assert.LessOrEqual(t, len(chunkWords), 5)
		if i == 0 {
			reassembled = append(reassembled, chunkWords...)
			continue
		}
		// Drop the shared overlap, keep the new tail.
		assert.Equal(t, reassembled[i*step:], chunkWords[:len(reassembled)-i*step])
		reassembled = append(reassembled, chunkWords[len(reassembled)-i*step:]...)
	}
	assert.Equal(t, words, reassembled)
}

func TestChunkTextInvalidOverlapFallsBack(t *testing.T) {
	// Overlap at or above the window would never advance; the defaults
	// take over instead.
	text := strings.Join(numberedWords(500), " ")
	chunks := ChunkText(text, 200, 200)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "w0", strings.Fields(chunks[0])[0])
	assert.Equal(t, "w160", strings.Fields(chunks[1])[0], "step must be window minus default overlap")
}
