// Package news 为个股分析提供近期新闻标题，作为文本分析提示词的上下文
package news

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Provider 定义通用的新闻标题来源接口
type Provider interface {
	Headlines(ctx context.Context, q *Query) ([]Headline, error)
}

// Query 新闻查询
type Query struct {
	Subject string
	Limit   int
	// Since 为零值时不限制日期
	Since time.Time
}

// Headline 单条新闻
type Headline struct {
	Title       string
	URL         string
	Snippet     string
	PublishedAt string
}

// SearchTerms 由标的生成搜索词
func (q *Query) SearchTerms() string {
	return q.Subject + " stock news"
}

// MaxSnippetRunes 单条摘要在提示词中保留的最大字符数
const MaxSnippetRunes = 280

// FormatContext 将新闻标题整理为提示词片段，无标题时返回空串
func FormatContext(headlines []Headline) string {
	var sb strings.Builder
	n := 0
	for _, h := range headlines {
		title := strings.TrimSpace(h.Title)
		if title == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s", n, title)
		if h.PublishedAt != "" {
			fmt.Fprintf(&sb, " (%s)", h.PublishedAt)
		}
		sb.WriteString("\n")
		if s := Truncate(strings.TrimSpace(h.Snippet), MaxSnippetRunes); s != "" {
			fmt.Fprintf(&sb, "   %s\n", s)
		}
	}
	if n == 0 {
		return ""
	}
	return "Recent headlines:\n" + sb.String()
}

// Truncate 按字符截断，超出时以省略号结尾
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
