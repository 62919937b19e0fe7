package news

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatContext(t *testing.T) {
	got := FormatContext([]Headline{
		{Title: "Apple beats estimates", PublishedAt: "2026-03-01", Snippet: "Revenue up 8%"},
		{Title: "  "},
		{Title: "iPhone demand softens"},
	})

	assert.Equal(t, "Recent headlines:\n"+
		"1. Apple beats estimates (2026-03-01)\n"+
		"   Revenue up 8%\n"+
		"2. iPhone demand softens\n", got)
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil))
	assert.Equal(t, "", FormatContext([]Headline{{Title: " "}}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
	assert.Equal(t, "苹果…", Truncate("苹果公司", 2))
	long := strings.Repeat("x", MaxSnippetRunes+10)
	assert.Equal(t, MaxSnippetRunes+1, len([]rune(Truncate(long, MaxSnippetRunes))))
}

func TestQuery_SearchTerms(t *testing.T) {
	q := &Query{Subject: "NVDA"}
	assert.Equal(t, "NVDA stock news", q.SearchTerms())
}
