// Package narrative 将 AI 返回的自由文本解析为有序的段落列表。
package narrative

import (
	"regexp"
	"strings"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/sentiment"
)

var (
	// 两个及以上连续换行（中间允许空白）视为段落分隔
	blockSep = regexp.MustCompile(`\n\s*\n`)
	// 行首的 Markdown 标题标记
	headingMarker = regexp.MustCompile(`^#+\s*`)
	// 行首的单个列表标记，必须跟空白
	bulletMarker = regexp.MustCompile(`^[*•-]\s+`)
	// 强调标记，只去掉成对使用的定界符，零散的 * 与 _ 原样保留
	emphasis = strings.NewReplacer("**", "", "__", "")
)

// Parse 按空行切分段落，每段首行为标题，其余行为要点。
// 输入为空时返回空列表，格式异常时尽量保留原文，不会报错。
func Parse(text string) []model.NarrativeSection {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return []model.NarrativeSection{}
	}

	blocks := blockSep.Split(text, -1)
	sections := make([]model.NarrativeSection, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")
		rawTitle := strings.TrimSpace(lines[0])
		title := NormalizeTitle(rawTitle)

		bullets := make([]string, 0, len(lines)-1)
		for _, line := range lines[1:] {
			if b := cleanBullet(line); b != "" {
				bullets = append(bullets, b)
			}
		}

		sections = append(sections, model.NarrativeSection{
			RawTitle:        rawTitle,
			NormalizedTitle: title,
			Polarity:        sentiment.Classify(title),
			Bullets:         bullets,
		})
	}
	return sections
}

// NormalizeTitle 去掉标题标记与强调标记，结尾冒号替换为 " –"
func NormalizeTitle(line string) string {
	s := strings.TrimSpace(line)
	s = headingMarker.ReplaceAllString(s, "")
	s = emphasis.Replace(s)
	s = unwrap(strings.TrimSpace(s))
	if strings.HasSuffix(s, ":") {
		s = strings.TrimSuffix(s, ":") + " –"
	}
	return strings.TrimSpace(s)
}

// unwrap 去掉包住整行的单个 * 或 _，冒号可在定界符外
func unwrap(s string) string {
	for _, d := range []string{"*", "_"} {
		if len(s) <= 2 || !strings.HasPrefix(s, d) {
			continue
		}
		inner := s[1:]
		switch {
		case strings.HasSuffix(inner, d):
			return strings.TrimSpace(strings.TrimSuffix(inner, d))
		case strings.HasSuffix(inner, d+":"):
			return strings.TrimSpace(strings.TrimSuffix(inner, d+":")) + ":"
		}
	}
	return s
}

func cleanBullet(line string) string {
	s := emphasis.Replace(line)
	s = strings.TrimLeft(s, " \t")
	s = bulletMarker.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Split 展示策略：第一段为执行摘要，其后最多 n 段作为详情卡片
func Split(sections []model.NarrativeSection, n int) (*model.NarrativeSection, []model.NarrativeSection) {
	if len(sections) == 0 {
		return nil, nil
	}
	summary := sections[0]
	details := sections[1:]
	if n >= 0 && len(details) > n {
		details = details[:n]
	}
	return &summary, details
}
