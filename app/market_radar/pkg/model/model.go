package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Polarity 情绪极性
type Polarity string

const (
	Bullish Polarity = "bullish"
	Bearish Polarity = "bearish"
	Anxious Polarity = "anxious"
	Neutral Polarity = "neutral"
)

// Tone 指标描述词的方向
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// Color 仪表盘配色
type Color string

const (
	ColorEmerald Color = "emerald"
	ColorRose    Color = "rose"
	ColorBlue    Color = "blue"
	ColorAmber   Color = "amber"
)

// Status 编排状态
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// AnalysisRequest 个股分析请求
type AnalysisRequest struct {
	Subject string `json:"subject"`
}

// NarrativeSection 从 AI 文本中解析出的一个段落
type NarrativeSection struct {
	RawTitle        string   `json:"rawTitle"`
	NormalizedTitle string   `json:"title"`
	Polarity        Polarity `json:"polarity"`
	Bullets         []string `json:"bullets"`
}

// PendingOperation 进行中的编排及其展示进度
type PendingOperation struct {
	RequestID         string    `json:"requestId"`
	Subject           string    `json:"subject"`
	StartedAt         time.Time `json:"startedAt"`
	CurrentPhaseIndex int       `json:"currentPhaseIndex"`
	CurrentPhase      string    `json:"currentPhase"`
	CurrentTipIndex   int       `json:"currentTipIndex"`
	CurrentTip        string    `json:"currentTip"`
}

// Gauge 环形仪表盘展示值
type Gauge struct {
	Polarity Polarity `json:"polarity"`
	Fraction float64  `json:"fraction"`
	Color    Color    `json:"color"`
}

// MetricReading 单个脉冲指标及其分类
type MetricReading struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Tone       Tone     `json:"tone"`
	Polarity   Polarity `json:"polarity"`
}

// Analysis 一次个股分析的完整结果
type Analysis struct {
	Subject     string             `json:"subject"`
	Narrative   string             `json:"narrative"`
	Sections    []NarrativeSection `json:"sections"`
	Pulse       *PulseResult       `json:"pulse"`
	Metrics     []MetricReading    `json:"metrics"`
	Gauge       Gauge              `json:"gauge"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// PulseResult 个股脉冲，后端直接返回的结构化对象，原样保存
type PulseResult struct {
	Metrics  map[string]string `json:"metrics"`
	AlphaTip string            `json:"alphaTip"`
}

// UnmarshalJSON 指标值允许为数字或布尔，统一转为字符串
func (p *PulseResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Metrics  map[string]any `json:"metrics"`
		AlphaTip any            `json:"alphaTip"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Metrics = nil
	if raw.Metrics != nil {
		p.Metrics = make(map[string]string, len(raw.Metrics))
		for k, v := range raw.Metrics {
			p.Metrics[k] = looseString(v)
		}
	}
	p.AlphaTip = looseString(raw.AlphaTip)
	return nil
}

// Normalize 填充缺省字段：nil 指标映射为空 map，其余内容不做改动
func (p *PulseResult) Normalize() {
	if p.Metrics == nil {
		p.Metrics = map[string]string{}
	}
}

// Metric 按名称（忽略大小写与首尾空白）查找指标，空白描述词视为缺失
func (p *PulseResult) Metric(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for k, v := range p.Metrics {
		if !strings.EqualFold(strings.TrimSpace(k), name) {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// MoodSnapshot 市场情绪快照，数值范围 0-100
type MoodSnapshot struct {
	EquityValue int    `json:"equityValue"`
	EquityLabel string `json:"equityLabel"`
	CryptoValue int    `json:"cryptoValue"`
	CryptoLabel string `json:"cryptoLabel"`
}

// UnmarshalJSON 数值允许为小数或数字字符串，四舍五入为整数
func (m *MoodSnapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		EquityValue any `json:"equityValue"`
		EquityLabel any `json:"equityLabel"`
		CryptoValue any `json:"cryptoValue"`
		CryptoLabel any `json:"cryptoLabel"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.EquityValue = looseInt(raw.EquityValue)
	m.EquityLabel = looseString(raw.EquityLabel)
	m.CryptoValue = looseInt(raw.CryptoValue)
	m.CryptoLabel = looseString(raw.CryptoLabel)
	return nil
}

// Normalize 数值截断到 0-100，缺失的标签按数值区间补齐
func (m *MoodSnapshot) Normalize() {
	m.EquityValue = clamp(m.EquityValue, 0, 100)
	m.CryptoValue = clamp(m.CryptoValue, 0, 100)
	if strings.TrimSpace(m.EquityLabel) == "" {
		m.EquityLabel, _ = MoodBand(m.EquityValue)
	}
	if strings.TrimSpace(m.CryptoLabel) == "" {
		m.CryptoLabel, _ = MoodBand(m.CryptoValue)
	}
}

// MoodBand 情绪数值对应的标签和颜色
func MoodBand(value int) (string, Color) {
	switch {
	case value < 25:
		return "Extreme Fear", ColorRose
	case value < 45:
		return "Fear", ColorAmber
	case value <= 55:
		return "Neutral", ColorBlue
	case value <= 75:
		return "Greed", ColorEmerald
	default:
		return "Extreme Greed", ColorEmerald
	}
}

// Impact 宏观因素影响方向
type Impact string

const (
	ImpactPositive Impact = "Positive"
	ImpactNegative Impact = "Negative"
	ImpactNeutral  Impact = "Neutral"
)

// Rating 行业配置建议
type Rating string

const (
	RatingOverweight  Rating = "Overweight"
	RatingUnderweight Rating = "Underweight"
	RatingNeutral     Rating = "Neutral"
)

// MacroDriver 宏观驱动因素
type MacroDriver struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
}

// IndexTechnical 单个指数的技术面
type IndexTechnical struct {
	SentimentLabel string   `json:"sentimentLabel"`
	Bias           string   `json:"bias"`
	KeyLevels      []string `json:"keyLevels"`
}

// SectorCall 行业观点
type SectorCall struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Rating Rating `json:"rating"`
}

// OutlookResult 市场展望
type OutlookResult struct {
	Summary      string                    `json:"summary"`
	MacroDrivers []MacroDriver             `json:"macroDrivers"`
	Technical    map[string]IndexTechnical `json:"technical"`
	BullCase     []string                  `json:"bullCase"`
	BearCase     []string                  `json:"bearCase"`
	Sectors      []SectorCall              `json:"sectors"`
}

// Normalize 缺失字段映射为空值，未知的枚举值归为 Neutral
func (o *OutlookResult) Normalize() {
	o.Summary = strings.TrimSpace(o.Summary)
	if o.MacroDrivers == nil {
		o.MacroDrivers = []MacroDriver{}
	}
	for i := range o.MacroDrivers {
		o.MacroDrivers[i].Impact = ParseImpact(string(o.MacroDrivers[i].Impact))
	}
	if o.Technical == nil {
		o.Technical = map[string]IndexTechnical{}
	}
	for k, v := range o.Technical {
		if v.KeyLevels == nil {
			v.KeyLevels = []string{}
			o.Technical[k] = v
		}
	}
	if o.BullCase == nil {
		o.BullCase = []string{}
	}
	if o.BearCase == nil {
		o.BearCase = []string{}
	}
	if o.Sectors == nil {
		o.Sectors = []SectorCall{}
	}
	for i := range o.Sectors {
		o.Sectors[i].Rating = ParseRating(string(o.Sectors[i].Rating))
	}
}

// ParseImpact 忽略大小写解析影响方向
func ParseImpact(s string) Impact {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return ImpactPositive
	case "negative":
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

// ParseRating 忽略大小写解析行业评级
func ParseRating(s string) Rating {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overweight":
		return RatingOverweight
	case "underweight":
		return RatingUnderweight
	default:
		return RatingNeutral
	}
}

// looseString 将任意 JSON 标量转为字符串，null 为空串
func looseString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// looseInt 将数字或数字字符串（可带 %）转为整数，无法识别时为 0
func looseInt(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(x), "%"), 64)
		if err != nil {
			return 0
		}
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	// 先截断再转换，避免溢出
	return int(math.Round(math.Max(-1e6, math.Min(1e6, f))))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
