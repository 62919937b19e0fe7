package domain

import "time"

// AnalysisSummary 历史分析摘要
type AnalysisSummary struct {
	ID            int       `json:"id"`
	Subject       string    `json:"subject"`
	GaugePolarity string    `json:"gaugePolarity"`
	GaugeFraction float64   `json:"gaugeFraction"`
	SectionCount  int       `json:"sectionCount"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// ArchivedSection 归档的段落
type ArchivedSection struct {
	RawTitle string   `json:"rawTitle"`
	Title    string   `json:"title"`
	Polarity string   `json:"polarity"`
	Bullets  []string `json:"bullets"`
}

// ArchivedAnalysis 历史分析详情
type ArchivedAnalysis struct {
	AnalysisSummary
	Narrative string            `json:"narrative"`
	Pulse     map[string]any    `json:"pulse"`
	Sections  []ArchivedSection `json:"sections"`
}
