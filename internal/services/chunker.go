package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits reference documents into overlapping pieces small enough
// to embed individually.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Sizes are counted in runes. Paragraphs are
// kept whole when they fit; longer ones are split on sentence boundaries.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) > maxChunkSize {
			units = append(units, splitIntoSentences(para)...)
			continue
		}
		units = append(units, para)
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		if tail := getLastNChars(chunk, overlap); tail != "" {
			current.WriteString(tail)
		}
	}

	for _, unit := range units {
		size := utf8.RuneCountInString(current.String()) + utf8.RuneCountInString(unit) + 1
		if size > maxChunkSize && current.Len() > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(unit)
	}

	if current.Len() > 0 && (len(chunks) == 0 || current.String() != getLastNChars(chunks[len(chunks)-1], overlap)) {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitIntoSentences cuts text after '.', '!' or '?' and keeps the punctuation.
func splitIntoSentences(text string) []string {
	var (
		result []string
		start  int
	)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				result = append(result, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
