// Package report 将个股分析渲染为单页 HTML
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/narrative"
)

// PageData 用于模板渲染的数据
type PageData struct {
	Subject  string
	Date     string
	Summary  *model.NarrativeSection
	Details  []model.NarrativeSection
	Metrics  []model.MetricReading
	AlphaTip string
	Gauge    model.Gauge
	// 环形进度条的 stroke-dashoffset，周长 100
	GaugeOffset float64
}

// NewPageData 按展示策略组装页面：第一段为执行摘要，其后 detailCards 段为详情卡片
func NewPageData(a *model.Analysis, detailCards int) PageData {
	summary, details := narrative.Split(a.Sections, detailCards)
	data := PageData{
		Subject:     a.Subject,
		Date:        a.GeneratedAt.Format("2006-01-02 15:04"),
		Summary:     summary,
		Details:     details,
		Metrics:     a.Metrics,
		Gauge:       a.Gauge,
		GaugeOffset: 100 * (1 - a.Gauge.Fraction),
	}
	if a.Pulse != nil {
		data.AlphaTip = strings.TrimSpace(a.Pulse.AlphaTip)
	}
	return data
}

// Render 渲染模板
func Render(w io.Writer, data PageData) error {
	return pageTpl.Execute(w, data)
}

// WriteFile 渲染到文件，自动创建目录
func WriteFile(path string, data PageData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Render(f, data); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

var pageTpl = template.Must(template.New("analysis").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Market Radar | {{ .Subject }}</title>
    <style>
        :root {
            --emerald: #10b981;
            --rose: #f43f5e;
            --blue: #3b82f6;
            --amber: #f59e0b;
            --bg-color: #0f172a;
            --card-bg: #1e293b;
            --text-main: #e2e8f0;
            --text-secondary: #94a3b8;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 900px; margin: 0 auto; }
        header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 32px; }
        h1 { font-size: 2.5rem; margin: 0; }
        .date-info { color: var(--text-secondary); }
        .card { background: var(--card-bg); border-radius: 12px; padding: 24px; margin-bottom: 24px; }
        .summary { border-left: 4px solid var(--blue); }
        .grid { display: grid; gap: 20px; grid-template-columns: 1fr; }
        @media (min-width: 768px) { .grid { grid-template-columns: 1fr 1fr 1fr; } }
        .bullish { border-top: 3px solid var(--emerald); }
        .bearish { border-top: 3px solid var(--rose); }
        .anxious { border-top: 3px solid var(--amber); }
        .neutral { border-top: 3px solid var(--blue); }
        .tone-positive { color: var(--emerald); }
        .tone-negative { color: var(--rose); }
        .tone-neutral { color: var(--text-secondary); }
        .gauge circle { fill: none; stroke-width: 3; }
        .gauge .track { stroke: #334155; }
        .gauge .emerald { stroke: var(--emerald); }
        .gauge .rose { stroke: var(--rose); }
        .gauge .blue { stroke: var(--blue); }
        .metrics { list-style: none; padding: 0; display: flex; gap: 24px; flex-wrap: wrap; }
        .alpha { font-style: italic; color: var(--amber); }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <div>
                <h1>{{ .Subject }}</h1>
                <div class="date-info">{{ .Date }}</div>
            </div>
            <svg class="gauge" width="96" height="96" viewBox="0 0 36 36">
                <circle class="track" cx="18" cy="18" r="15.9155"></circle>
                <circle class="{{ .Gauge.Color }}" cx="18" cy="18" r="15.9155"
                    stroke-dasharray="100" stroke-dashoffset="{{ printf "%.0f" .GaugeOffset }}"></circle>
                <text x="18" y="21" text-anchor="middle" font-size="6" fill="currentColor">{{ .Gauge.Polarity }}</text>
            </svg>
        </header>

        {{if .Metrics}}
        <div class="card">
            <ul class="metrics">
                {{range .Metrics}}
                <li><span class="date-info">{{.Name}}</span> <strong class="tone-{{.Tone}}">{{.Descriptor}}</strong></li>
                {{end}}
            </ul>
            {{if .AlphaTip}}<p class="alpha">{{.AlphaTip}}</p>{{end}}
        </div>
        {{end}}

        {{with .Summary}}
        <div class="card summary">
            <h2>{{.NormalizedTitle}}</h2>
            <ul>
                {{range .Bullets}}
                <li>{{.}}</li>
                {{end}}
            </ul>
        </div>
        {{else}}
        <div class="card summary"><p class="date-info">Synthesizing...</p></div>
        {{end}}

        <div class="grid">
            {{range .Details}}
            <div class="card {{.Polarity}}">
                <h3>{{.NormalizedTitle}}</h3>
                {{if .Bullets}}
                <ul>
                    {{range .Bullets}}
                    <li>{{.}}</li>
                    {{end}}
                </ul>
                {{else}}
                <p class="date-info">Synthesizing...</p>
                {{end}}
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`))
