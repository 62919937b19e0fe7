package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/ticker"
)

var (
	// ErrInvalidSubject 标的为空，请求不会发出，状态不变
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrBusy 已有进行中的编排
	ErrBusy = errors.New("orchestration in progress")
)

// NormalizeSubject 去掉首尾空白并转为大写。Caser 有状态，不能跨 goroutine 共享。
func NormalizeSubject(subject string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(subject))
}

// FetchFunc 一次编排实际执行的请求
type FetchFunc[T any] func(ctx context.Context, subject string) (T, error)

// Options 编排器选项
type Options struct {
	Name           string
	RequireSubject bool
	Ticker         config.TickerConfig
}

// Snapshot 编排状态快照，供展示层读取
type Snapshot[T any] struct {
	Status  model.Status            `json:"status"`
	Subject string                  `json:"subject,omitempty"`
	Pending *model.PendingOperation `json:"pending,omitempty"`
	Result  T                       `json:"result,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type pendingRun struct {
	op     model.PendingOperation
	ticker *ticker.Ticker
}

// Orchestrator 管理一个触发来源的 idle → pending → ready|error 状态机。
// 状态总是反映最近一次启动的编排，被取代的编排结果会被丢弃。
type Orchestrator[T any] struct {
	opts  Options
	fetch FetchFunc[T]

	startTicker func(phases, tips []string, phaseEvery, tipEvery time.Duration) *ticker.Ticker

	mu      sync.RWMutex
	gen     uint64
	status  model.Status
	subject string
	run     *pendingRun
	result  T
	err     error
}

// NewOrchestrator 创建编排器
func NewOrchestrator[T any](opts Options, fetch FetchFunc[T]) *Orchestrator[T] {
	return &Orchestrator[T]{
		opts:        opts,
		fetch:       fetch,
		startTicker: ticker.Start,
		status:      model.StatusIdle,
	}
}

// NewAnalysisOrchestrator 个股分析：文本与脉冲并发请求
func NewAnalysisOrchestrator(e *Engine) *Orchestrator[*model.Analysis] {
	return NewOrchestrator(Options{
		Name:           "analysis",
		RequireSubject: true,
		Ticker:         e.cfg.Ticker,
	}, e.Analyze)
}

// NewMoodOrchestrator 市场情绪，无需标的
func NewMoodOrchestrator(e *Engine) *Orchestrator[*model.MoodSnapshot] {
	return NewOrchestrator(Options{Name: "mood", Ticker: e.cfg.Ticker},
		func(ctx context.Context, _ string) (*model.MoodSnapshot, error) {
			return e.Mood(ctx)
		})
}

// NewOutlookOrchestrator 市场展望，无需标的
func NewOutlookOrchestrator(e *Engine) *Orchestrator[*model.OutlookResult] {
	return NewOrchestrator(Options{Name: "outlook", Ticker: e.cfg.Ticker},
		func(ctx context.Context, _ string) (*model.OutlookResult, error) {
			return e.Outlook(ctx)
		})
}

// Run 同步执行一次编排直到结束。不检查是否繁忙，调用方应先检查 Busy。
func (o *Orchestrator[T]) Run(ctx context.Context, subject string) (T, error) {
	subject, err := o.validate(subject)
	if err != nil {
		var zero T
		return zero, err
	}

	o.mu.Lock()
	gen, tk := o.beginLocked(subject)
	o.mu.Unlock()

	return o.execute(ctx, gen, tk, subject)
}

// TryStart 在空闲时启动一次后台编排，繁忙时返回 ErrBusy。
// 后台编排不随 ctx 取消而中止。
func (o *Orchestrator[T]) TryStart(ctx context.Context, subject string) error {
	subject, err := o.validate(subject)
	if err != nil {
		return err
	}

	o.mu.Lock()
	if o.status == model.StatusPending {
		o.mu.Unlock()
		return ErrBusy
	}
	gen, tk := o.beginLocked(subject)
	o.mu.Unlock()

	go o.execute(context.WithoutCancel(ctx), gen, tk, subject)
	return nil
}

// Busy 是否有进行中的编排
func (o *Orchestrator[T]) Busy() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status == model.StatusPending
}

// Snapshot 当前状态。进行中时附带阶段与小贴士进度，error 状态不携带数据。
func (o *Orchestrator[T]) Snapshot() Snapshot[T] {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := Snapshot[T]{Status: o.status, Subject: o.subject}
	switch o.status {
	case model.StatusPending:
		if o.run != nil {
			op := o.run.op
			op.CurrentPhaseIndex, op.CurrentPhase = o.run.ticker.Phase()
			op.CurrentTipIndex, op.CurrentTip = o.run.ticker.Tip()
			s.Pending = &op
		}
	case model.StatusReady:
		s.Result = o.result
	case model.StatusError:
		if o.err != nil {
			s.Error = o.err.Error()
		}
	}
	return s
}

func (o *Orchestrator[T]) validate(subject string) (string, error) {
	subject = NormalizeSubject(subject)
	if o.opts.RequireSubject && subject == "" {
		return "", ErrInvalidSubject
	}
	return subject, nil
}

// beginLocked 进入 pending，清空上一次的结果，调用方持有写锁
func (o *Orchestrator[T]) beginLocked(subject string) (uint64, *ticker.Ticker) {
	tc := o.opts.Ticker
	tk := o.startTicker(tc.Phases, tc.Tips, tc.PhaseInterval(), tc.TipInterval())

	o.gen++
	o.status = model.StatusPending
	o.subject = subject
	o.run = &pendingRun{
		op: model.PendingOperation{
			RequestID: uuid.NewString(),
			Subject:   subject,
			StartedAt: time.Now(),
		},
		ticker: tk,
	}
	var zero T
	o.result = zero
	o.err = nil

	logger.Log.Infof("[%s] 开始编排 %s (request=%s)", o.opts.Name, subject, o.run.op.RequestID)
	return o.gen, tk
}

func (o *Orchestrator[T]) execute(ctx context.Context, gen uint64, tk *ticker.Ticker, subject string) (T, error) {
	defer tk.Stop()

	result, err := o.fetch(ctx, subject)
	o.settle(gen, result, err)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func (o *Orchestrator[T]) settle(gen uint64, result T, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.gen {
		logger.Log.Warnf("[%s] 编排 #%d 已被取代，丢弃其结果", o.opts.Name, gen)
		return
	}

	o.run = nil
	if err != nil {
		logger.Log.Errorf("[%s] 编排失败 %s: %v", o.opts.Name, o.subject, err)
		var zero T
		o.status = model.StatusError
		o.result = zero
		o.err = err
		return
	}
	o.status = model.StatusReady
	o.result = result
}
