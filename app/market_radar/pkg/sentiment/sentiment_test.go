package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  model.Polarity
	}{
		{"Bullish Momentum", model.Bullish},
		{"STRONGLY BULLISH", model.Bullish},
		{"Bearish Divergence", model.Bearish},
		{"Bearish but Cautious Outlook", model.Bearish},
		{"Bullish yet bearish undertones", model.Bullish},
		{"Anxious Tape", model.Anxious},
		{"Cautious optimism", model.Anxious},
		{"Mixed Signals –", model.Anxious},
		{"Executive Summary", model.Neutral},
		{"", model.Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.label))
		})
	}
}

func TestTone(t *testing.T) {
	tests := []struct {
		descriptor string
		want       model.Tone
	}{
		{"Accumulation", model.TonePositive},
		{"Surge", model.TonePositive},
		{"High", model.TonePositive},
		{"Bullish", model.TonePositive},
		{"Distribution", model.ToneNegative},
		{"Low", model.ToneNegative},
		{"Sharp Drop", model.ToneNegative},
		{"Bearish", model.ToneNegative},
		{"Steady", model.ToneNeutral},
		// 两组同时命中：负向优先
		{"High then Drop", model.ToneNegative},
		{"Bullish Distribution", model.ToneNegative},
	}
	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			assert.Equal(t, tt.want, Tone(tt.descriptor))
		})
	}
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.8, Fraction(model.Bullish))
	assert.Equal(t, 0.2, Fraction(model.Bearish))
	assert.Equal(t, 0.5, Fraction(model.Neutral))
	assert.Equal(t, 0.5, Fraction(model.Anxious))
	assert.Equal(t, 0.5, Fraction(model.Polarity("sideways")))
}

func TestColor(t *testing.T) {
	assert.Equal(t, model.ColorEmerald, Color(model.Bullish))
	assert.Equal(t, model.ColorRose, Color(model.Bearish))
	assert.Equal(t, model.ColorBlue, Color(model.Anxious))
	assert.Equal(t, model.ColorBlue, Color(""))
}

func TestGauge(t *testing.T) {
	g := Gauge(model.Bearish)
	assert.Equal(t, model.Gauge{Polarity: model.Bearish, Fraction: 0.2, Color: model.ColorRose}, g)
}
