package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "hello world", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates with ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "trims whitespace first", input: "  spaced  ", limit: 5, expect: "space..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), " gemini ", "gemini-2.5-flash").Info("scored")

	entries := observed.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "gemini", ctx[FieldProvider])
	assert.Equal(t, "gemini-2.5-flash", ctx[FieldModel])
}

func TestCommonFieldsSkipsEmpty(t *testing.T) {
	assert.Empty(t, CommonFields("", "  "))
	assert.Len(t, CommonFields("deepseek", ""), 1)
}

func TestWithFieldsNilLogger(t *testing.T) {
	l := WithFields(nil, Session("abc"))
	require.NotNil(t, l)
	l.Info("does not panic")
}
