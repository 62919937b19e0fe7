package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/narrative"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/sentiment"
)

// ErrBackend 后端调用失败（重试耗尽、非限流错误或无法解析的 JSON）
var ErrBackend = errors.New("backend failure")

// gaugeMetric 决定仪表盘极性的脉冲指标名
const gaugeMetric = "sentiment"

// Archiver 分析结果归档，可选
type Archiver interface {
	SaveAnalysis(ctx context.Context, a *model.Analysis) error
}

// Engine AI 请求层：限流、重试、解码
type Engine struct {
	cfg     *config.Config
	backend llm.Backend
	limiter *rate.Limiter
	store   Archiver
	news    news.Provider

	// 限流重试的基础退避时长
	backoff time.Duration
	now     func() time.Time
}

// Option 引擎可选项
type Option func(*Engine)

// WithNews 为个股文本分析附加近期新闻标题，p 为 nil 时不启用
func WithNews(p news.Provider) Option {
	return func(e *Engine) {
		e.news = p
	}
}

// NewEngine 创建引擎实例，store 为 nil 时不归档
func NewEngine(cfg *config.Config, backend llm.Backend, store Archiver, opts ...Option) *Engine {
	// 初始化限流器
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	burst := cfg.Concurrency.QPS
	limiter := rate.NewLimiter(limit, burst)

	e := &Engine{
		cfg:     cfg,
		backend: backend,
		limiter: limiter,
		store:   store,
		backoff: 2 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config 引擎使用的配置
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Narrative 请求个股的自由文本分析
func (e *Engine) Narrative(ctx context.Context, subject string) (string, error) {
	prompt := fmt.Sprintf(narrativePrompt, subject)
	if headlines := e.headlines(ctx, subject); headlines != "" {
		prompt += "\n\n" + headlines
	}
	req := &llm.Request{
		System: narrativeSystem,
		Prompt: prompt,
	}
	text, err := e.call(ctx, req, nil)
	if err != nil {
		return "", fmt.Errorf("%w: narrative %s: %w", ErrBackend, subject, err)
	}
	return text, nil
}

// headlines 拉取近期新闻作为提示词上下文，失败时记录日志并跳过
func (e *Engine) headlines(ctx context.Context, subject string) string {
	if e.news == nil {
		return ""
	}
	q := &news.Query{
		Subject: subject,
		Limit:   e.cfg.News.MaxHeadlines,
	}
	if days := e.cfg.News.LookbackDays; days > 0 {
		q.Since = e.now().AddDate(0, 0, -days)
	}
	items, err := e.news.Headlines(ctx, q)
	if err != nil {
		logger.Log.Warnf("[%s] 获取新闻失败，跳过: %v", subject, err)
		return ""
	}
	logger.Log.Debugf("[%s] 获取到 %d 条新闻", subject, len(items))
	return news.FormatContext(items)
}

// Pulse 请求个股脉冲指标
func (e *Engine) Pulse(ctx context.Context, subject string) (*model.PulseResult, error) {
	var pulse model.PulseResult
	req := &llm.Request{
		System: jsonSystem,
		Prompt: fmt.Sprintf(pulsePrompt, subject),
		JSON:   true,
	}
	if _, err := e.call(ctx, req, decodeInto(&pulse)); err != nil {
		return nil, fmt.Errorf("%w: pulse %s: %w", ErrBackend, subject, err)
	}
	pulse.Normalize()
	return &pulse, nil
}

// Mood 请求全市场情绪快照
func (e *Engine) Mood(ctx context.Context) (*model.MoodSnapshot, error) {
	var mood model.MoodSnapshot
	req := &llm.Request{System: jsonSystem, Prompt: moodPrompt, JSON: true}
	if _, err := e.call(ctx, req, decodeInto(&mood)); err != nil {
		return nil, fmt.Errorf("%w: mood: %w", ErrBackend, err)
	}
	mood.Normalize()
	return &mood, nil
}

// Outlook 请求市场展望
func (e *Engine) Outlook(ctx context.Context) (*model.OutlookResult, error) {
	var outlook model.OutlookResult
	req := &llm.Request{System: jsonSystem, Prompt: outlookPrompt, JSON: true}
	if _, err := e.call(ctx, req, decodeInto(&outlook)); err != nil {
		return nil, fmt.Errorf("%w: outlook: %w", ErrBackend, err)
	}
	outlook.Normalize()
	return &outlook, nil
}

// Analyze 并发请求文本分析与脉冲指标，两者都结束后再组装结果。
// 任一请求失败则整体失败，不返回部分数据。
func (e *Engine) Analyze(ctx context.Context, subject string) (*model.Analysis, error) {
	var (
		text  string
		pulse *model.PulseResult
		g     errgroup.Group
	)

	g.Go(func() error {
		var err error
		text, err = e.Narrative(ctx, subject)
		return err
	})
	g.Go(func() error {
		var err error
		pulse, err = e.Pulse(ctx, subject)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis := Assemble(subject, text, pulse, e.now())
	logger.Log.Infof("[%s] 分析完成，共 %d 个段落，%d 个指标", subject, len(analysis.Sections), len(analysis.Metrics))

	if e.store != nil {
		// 归档失败不影响本次结果
		if err := e.store.SaveAnalysis(context.WithoutCancel(ctx), analysis); err != nil {
			logger.Log.Errorf("[%s] 保存分析结果失败: %v", subject, err)
		}
	}
	return analysis, nil
}

// Assemble 将文本与脉冲组装为展示结果
func Assemble(subject, text string, pulse *model.PulseResult, at time.Time) *model.Analysis {
	if pulse == nil {
		pulse = &model.PulseResult{}
		pulse.Normalize()
	}
	sections := narrative.Parse(text)

	// 脉冲原样保存，展示用的读数去掉空白项
	trimmed := make(map[string]string, len(pulse.Metrics))
	for k, v := range pulse.Metrics {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			trimmed[k] = v
		}
	}
	names := make([]string, 0, len(trimmed))
	for name := range trimmed {
		names = append(names, name)
	}
	sort.Strings(names)

	metrics := make([]model.MetricReading, 0, len(names))
	for _, name := range names {
		descriptor := trimmed[name]
		metrics = append(metrics, model.MetricReading{
			Name:       name,
			Descriptor: descriptor,
			Tone:       sentiment.Tone(descriptor),
			Polarity:   sentiment.Classify(descriptor),
		})
	}

	return &model.Analysis{
		Subject:     subject,
		Narrative:   text,
		Sections:    sections,
		Pulse:       pulse,
		Metrics:     metrics,
		Gauge:       sentiment.Gauge(gaugePolarity(sections, pulse)),
		GeneratedAt: at,
	}
}

// gaugePolarity 优先取 sentiment 指标，其次取执行摘要标题
func gaugePolarity(sections []model.NarrativeSection, pulse *model.PulseResult) model.Polarity {
	if v, ok := pulse.Metric(gaugeMetric); ok {
		return sentiment.Classify(v)
	}
	if len(sections) > 0 {
		return sections[0].Polarity
	}
	return model.Neutral
}

// call 发送一次请求：先等待限流器，遇到限流错误按指数退避重试。
// decode 不为 nil 时还会解析响应，解析失败同样重试。
func (e *Engine) call(ctx context.Context, req *llm.Request, decode func(string) error) (string, error) {
	maxRetries := e.cfg.Concurrency.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := e.backend.Generate(ctx, req)
		if err != nil {
			if llm.IsRateLimitError(err) {
				lastErr = err
				if i < maxRetries {
					delay := e.backoff * time.Duration(1<<i)
					logger.Log.Warnf("触发限流，%v 后进行第 %d 次重试: %v", delay, i+1, err)
					if err := sleep(ctx, delay); err != nil {
						return "", err
					}
					continue
				}
			}
			return "", err
		}

		if decode == nil {
			return resp.Text, nil
		}
		if err := decode(resp.Text); err != nil {
			lastErr = err
			logger.Log.Warnf("响应解析失败 (第 %d 次): %v", i+1, err)
			continue
		}
		return resp.Text, nil
	}
	return "", fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// decodeInto 去掉代码块包裹后解析 JSON，成功时才写入 out
func decodeInto[T any](out *T) func(string) error {
	return func(text string) error {
		clean := llm.StripCodeFence(text)
		if clean == "" {
			return errors.New("empty response")
		}
		var v T
		if err := json.Unmarshal([]byte(clean), &v); err != nil {
			return fmt.Errorf("json unmarshal: %w", err)
		}
		*out = v
		return nil
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
