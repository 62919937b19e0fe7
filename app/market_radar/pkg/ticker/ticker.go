// Package ticker 在长耗时请求等待期间轮换展示阶段文案与小贴士。
//
// 阶段进度是装饰性的：它只按固定周期前进并停在最后一个阶段，
// 与后端请求的真实进度无关。
package ticker

import (
	"sync"
	"time"
)

// Ticker 阶段/小贴士计时器句柄
type Ticker struct {
	phases []string
	tips   []string

	mu    sync.RWMutex
	phase int
	tip   int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start 启动计时器，两个下标都从 0 开始并立即可读。
// 周期不大于 0 或文案为空时，对应的触发器不启动。
func Start(phases, tips []string, phaseEvery, tipEvery time.Duration) *Ticker {
	t := &Ticker{
		phases: append([]string(nil), phases...),
		tips:   append([]string(nil), tips...),
		done:   make(chan struct{}),
	}

	if phaseEvery > 0 && len(t.phases) > 1 {
		t.wg.Add(1)
		go t.loop(phaseEvery, t.advancePhase)
	}
	if tipEvery > 0 && len(t.tips) > 1 {
		t.wg.Add(1)
		go t.loop(tipEvery, t.advanceTip)
	}
	return t
}

func (t *Ticker) loop(every time.Duration, step func()) {
	defer t.wg.Done()

	tk := time.NewTicker(every)
	defer tk.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-tk.C:
			// Stop 与 tick 同时就绪时以 Stop 为准
			select {
			case <-t.done:
				return
			default:
			}
			step()
		}
	}
}

// advancePhase 阶段前进一格，停在最后一个阶段
func (t *Ticker) advancePhase() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase < len(t.phases)-1 {
		t.phase++
	}
}

// advanceTip 小贴士循环前进
func (t *Ticker) advanceTip() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.tips) > 0 {
		t.tip = (t.tip + 1) % len(t.tips)
	}
}

// Stop 停止两个触发器并等待其退出。可重复调用，nil 或未启动的句柄上调用无副作用。
func (t *Ticker) Stop() {
	if t == nil || t.done == nil {
		return
	}
	t.stopOnce.Do(func() {
		close(t.done)
	})
	t.wg.Wait()
}

// Phase 当前阶段下标与文案
func (t *Ticker) Phase() (int, string) {
	if t == nil {
		return 0, ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase, labelAt(t.phases, t.phase)
}

// Tip 当前小贴士下标与文案
func (t *Ticker) Tip() (int, string) {
	if t == nil {
		return 0, ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tip, labelAt(t.tips, t.tip)
}

func labelAt(labels []string, i int) string {
	if i < 0 || i >= len(labels) {
		return ""
	}
	return labels[i]
}
