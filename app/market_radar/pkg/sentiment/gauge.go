package sentiment

import "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"

// Fraction 极性对应的环形进度比例
func Fraction(p model.Polarity) float64 {
	switch p {
	case model.Bullish:
		return 0.8
	case model.Bearish:
		return 0.2
	default:
		return 0.5
	}
}

// Color 极性对应的仪表盘颜色
func Color(p model.Polarity) model.Color {
	switch p {
	case model.Bullish:
		return model.ColorEmerald
	case model.Bearish:
		return model.ColorRose
	default:
		return model.ColorBlue
	}
}

// Gauge 组装仪表盘展示值
func Gauge(p model.Polarity) model.Gauge {
	return model.Gauge{
		Polarity: p,
		Fraction: Fraction(p),
		Color:    Color(p),
	}
}
