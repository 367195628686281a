package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	respond func(ctx context.Context, call int) (string, error)
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string, _ float32) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(ctx, call)
}

func (f *fakeLLM) Provider() string { return "fake" }

func (f *fakeLLM) Model() string { return "fake-1" }

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func staticLLM(response string) *fakeLLM {
	return &fakeLLM{respond: func(context.Context, int) (string, error) { return response, nil }}
}

func failingLLM(err error) *fakeLLM {
	return &fakeLLM{respond: func(context.Context, int) (string, error) { return "", err }}
}

func blockingLLM() *fakeLLM {
	return &fakeLLM{respond: func(ctx context.Context, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}

var errUpstream = errors.New("upstream exploded")

// docxBytes builds a minimal DOCX with one paragraph per argument.
func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testCatalog() *config.Catalog {
	return config.DefaultCatalog()
}

func question(index int, dimension models.Dimension) models.Question {
	return models.Question{
		Index:     index,
		Text:      "Tell me about a system you designed.",
		Dimension: dimension,
	}
}
