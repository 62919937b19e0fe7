package sentiment

import (
	"strings"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

// polarityRule 关键词组，按顺序匹配，先命中者生效
type polarityRule struct {
	polarity model.Polarity
	keywords []string
}

// 顺序决定优先级：同时包含 bearish 与 cautious 时判为 bearish
var polarityRules = []polarityRule{
	{model.Bullish, []string{"bullish"}},
	{model.Bearish, []string{"bearish"}},
	{model.Anxious, []string{"anxious", "cautious", "mixed"}},
}

var (
	positiveKeywords = []string{"bull", "acc", "high", "surge"}
	negativeKeywords = []string{"bear", "dist", "low", "drop"}
)

// Classify 根据标题或短描述判断情绪极性，大小写不敏感
func Classify(label string) model.Polarity {
	s := strings.ToLower(label)
	for _, rule := range polarityRules {
		if containsAny(s, rule.keywords) {
			return rule.polarity
		}
	}
	return model.Neutral
}

// Tone 判断指标描述词（Accumulation、Surge、Distribution 等）的方向。
// 两组关键词同时命中时负向优先。
func Tone(descriptor string) model.Tone {
	s := strings.ToLower(descriptor)
	switch {
	case containsAny(s, negativeKeywords):
		return model.ToneNegative
	case containsAny(s, positiveKeywords):
		return model.TonePositive
	default:
		return model.ToneNeutral
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
