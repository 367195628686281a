package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextKeepsShortParagraphsTogether(t *testing.T) {
	chunks := NewTextChunker().ChunkText("First paragraph.\n\nSecond paragraph.", 100, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", chunks[0])
}

func TestChunkTextRespectsMaxSize(t *testing.T) {
	sentence := "Candidates should name concrete trade-offs. "
	text := strings.Repeat(sentence, 40)

	chunks := NewTextChunker().ChunkText(text, 200, 20)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 200+20+1)
	}
}

func TestChunkTextOverlap(t *testing.T) {
	text := "Alpha section text that is long enough.\n\nBravo section text that is long enough."

	chunks := NewTextChunker().ChunkText(text, 45, 8)

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[1], getLastNChars(chunks[0], 8)))
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Empty(t, NewTextChunker().ChunkText("  \n\n  ", 100, 10))
}

func TestSplitIntoSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two?", "Three!", "tail"}, splitIntoSentences("One. Two? Three! tail"))
}

func TestGetLastNChars(t *testing.T) {
	assert.Equal(t, "çé", getLastNChars("abcçé", 2))
	assert.Equal(t, "abc", getLastNChars("abc", 10))
	assert.Equal(t, "", getLastNChars("abc", 0))
}
