package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

const sampleNarrative = "### **Bullish Setup:**\n* Breakout above 190\n* Volume confirms\n\nRisks\n- Rates are rising"

const samplePulse = "```json\n{\"metrics\":{\"volume\":\"Surge\",\"sentiment\":\"Bearish\",\"flows\":\" \"},\"alphaTip\":\" Trim into strength \"}\n```"

// fakeBackend 按请求类型分发到不同的处理函数
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	narrative func(n int) (string, error)
	pulse     func(n int) (string, error)
	other     func(n int) (string, error)
}

func (f *fakeBackend) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	kind := "other"
	switch {
	case !req.JSON:
		kind = "narrative"
	case req.Prompt != moodPrompt && req.Prompt != outlookPrompt:
		kind = "pulse"
	}

	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[kind]++
	n := f.calls[kind]
	f.mu.Unlock()

	handler := map[string]func(int) (string, error){
		"narrative": f.narrative,
		"pulse":     f.pulse,
		"other":     f.other,
	}[kind]
	if handler == nil {
		return nil, errors.New("unexpected request")
	}
	text, err := handler(n)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Text: text, Model: "fake"}, nil
}

func (f *fakeBackend) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func fixed(text string) func(int) (string, error) {
	return func(int) (string, error) { return text, nil }
}

func failing(err error) func(int) (string, error) {
	return func(int) (string, error) { return "", err }
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{
		LLM: config.LLMConfig{APIKey: "k", Model: "m"},
		Concurrency: config.ConcurrencyConfig{
			QPS:        100,
			RPM:        60000,
			MaxRetries: 2,
		},
		Ticker: config.TickerConfig{
			Phases:          []string{"connect", "scan", "synthesize"},
			Tips:            []string{"tip a", "tip b"},
			PhaseIntervalMs: 5,
			TipIntervalMs:   5,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

var testNow = time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)

func newTestEngine(b llm.Backend, store Archiver) *Engine {
	e := NewEngine(testConfig(), b, store)
	e.backoff = time.Millisecond
	e.now = func() time.Time { return testNow }
	return e
}

func TestEngine_Analyze(t *testing.T) {
	b := &fakeBackend{narrative: fixed(sampleNarrative), pulse: fixed(samplePulse)}
	e := newTestEngine(b, nil)

	a, err := e.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", a.Subject)
	assert.Equal(t, testNow, a.GeneratedAt)
	require.Len(t, a.Sections, 2)
	assert.Equal(t, "Bullish Setup –", a.Sections[0].NormalizedTitle)
	assert.Equal(t, model.Bullish, a.Sections[0].Polarity)
	assert.Equal(t, []string{"Breakout above 190", "Volume confirms"}, a.Sections[0].Bullets)

	require.NotNil(t, a.Pulse)
	// 脉冲原样保存
	assert.Equal(t, map[string]string{"volume": "Surge", "sentiment": "Bearish", "flows": " "}, a.Pulse.Metrics)
	assert.Equal(t, " Trim into strength ", a.Pulse.AlphaTip)

	assert.Equal(t, []model.MetricReading{
		{Name: "sentiment", Descriptor: "Bearish", Tone: model.ToneNegative, Polarity: model.Bearish},
		{Name: "volume", Descriptor: "Surge", Tone: model.TonePositive, Polarity: model.Neutral},
	}, a.Metrics)

	// sentiment 指标优先于执行摘要标题
	assert.Equal(t, model.Gauge{Polarity: model.Bearish, Fraction: 0.2, Color: model.ColorRose}, a.Gauge)

	assert.Equal(t, 1, b.count("narrative"))
	assert.Equal(t, 1, b.count("pulse"))
}

func TestEngine_AnalyzeFanOutIsConcurrent(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	wait := func(text string) func(int) (string, error) {
		return func(int) (string, error) {
			started <- struct{}{}
			<-release
			return text, nil
		}
	}
	b := &fakeBackend{narrative: wait(sampleNarrative), pulse: wait(samplePulse)}
	e := newTestEngine(b, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.Analyze(context.Background(), "AAPL")
		done <- err
	}()

	// 两个请求都在任何一个返回之前发出
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("requests were not issued concurrently")
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestEngine_AnalyzePulseFailure(t *testing.T) {
	b := &fakeBackend{
		narrative: fixed(sampleNarrative),
		pulse:     failing(errors.New("upstream 500")),
	}
	e := newTestEngine(b, nil)

	a, err := e.Analyze(context.Background(), "AAPL")
	assert.Nil(t, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "pulse")
	// 非限流错误不重试
	assert.Equal(t, 1, b.count("pulse"))
}

func TestEngine_RetriesRateLimit(t *testing.T) {
	b := &fakeBackend{
		narrative: func(n int) (string, error) {
			if n == 1 {
				return "", errors.New("error, status code: 429, message: Too Many Requests")
			}
			return sampleNarrative, nil
		},
	}
	e := newTestEngine(b, nil)

	text, err := e.Narrative(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, sampleNarrative, text)
	assert.Equal(t, 2, b.count("narrative"))
}

func TestEngine_RateLimitExhausted(t *testing.T) {
	b := &fakeBackend{narrative: failing(errors.New("429 Too Many Requests"))}
	e := newTestEngine(b, nil)

	_, err := e.Narrative(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, 3, b.count("narrative"))
}

func TestEngine_RateLimitBackoffHonoursContext(t *testing.T) {
	b := &fakeBackend{narrative: failing(errors.New("429"))}
	e := newTestEngine(b, nil)
	e.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Narrative(ctx, "AAPL")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, b.count("narrative"))
}

func TestEngine_MalformedJSON(t *testing.T) {
	b := &fakeBackend{pulse: fixed("Sure! Here is the pulse: bullish")}
	e := newTestEngine(b, nil)

	_, err := e.Pulse(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, 3, b.count("pulse"))
}

func TestEngine_MalformedJSONRecovers(t *testing.T) {
	b := &fakeBackend{pulse: func(n int) (string, error) {
		if n == 1 {
			return `{"metrics": {"volume": `, nil
		}
		return `{"alphaTip": "hold"}`, nil
	}}
	e := newTestEngine(b, nil)

	pulse, err := e.Pulse(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotNil(t, pulse.Metrics)
	assert.Empty(t, pulse.Metrics)
	assert.Equal(t, "hold", pulse.AlphaTip)
}

func TestEngine_MoodDefaults(t *testing.T) {
	b := &fakeBackend{other: fixed(`{"equityValue": 150, "cryptoLabel": "Fear"}`)}
	e := newTestEngine(b, nil)

	mood, err := e.Mood(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.MoodSnapshot{
		EquityValue: 100,
		EquityLabel: "Extreme Greed",
		CryptoValue: 0,
		CryptoLabel: "Fear",
	}, *mood)
}

func TestEngine_LooseNumbersDoNotFail(t *testing.T) {
	b := &fakeBackend{
		narrative: fixed(sampleNarrative),
		pulse:     fixed(`{"metrics": {"rsi": 72, "sentiment": "Bullish"}}`),
		other:     fixed(`{"equityValue": 62.5, "cryptoValue": 30}`),
	}
	e := newTestEngine(b, nil)

	mood, err := e.Mood(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 63, mood.EquityValue)
	assert.Equal(t, "Greed", mood.EquityLabel)
	assert.Equal(t, 1, b.count("other"), "decoded on the first attempt")

	a, err := e.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []model.MetricReading{
		{Name: "rsi", Descriptor: "72", Tone: model.ToneNeutral, Polarity: model.Neutral},
		{Name: "sentiment", Descriptor: "Bullish", Tone: model.TonePositive, Polarity: model.Bullish},
	}, a.Metrics)
	assert.Equal(t, 1, b.count("pulse"))
}

func TestEngine_OutlookDefaults(t *testing.T) {
	b := &fakeBackend{other: fixed(`{
		"summary": " Range-bound week ",
		"macroDrivers": [{"title": "CPI", "impact": "negative"}, {"title": "Earnings", "impact": "huge"}],
		"technical": {"SPX": {"sentimentLabel": "Mixed"}},
		"sectors": [{"name": "Tech", "rating": "OVERWEIGHT"}]
	}`)}
	e := newTestEngine(b, nil)

	o, err := e.Outlook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Range-bound week", o.Summary)
	require.Len(t, o.MacroDrivers, 2)
	assert.Equal(t, model.ImpactNegative, o.MacroDrivers[0].Impact)
	assert.Equal(t, model.ImpactNeutral, o.MacroDrivers[1].Impact)
	assert.NotNil(t, o.Technical["SPX"].KeyLevels)
	assert.NotNil(t, o.BullCase)
	assert.NotNil(t, o.BearCase)
	assert.Equal(t, model.RatingOverweight, o.Sectors[0].Rating)
}

func TestEngine_ArchiveFailureDoesNotFailAnalysis(t *testing.T) {
	store := &mockArchiver{}
	store.On("SaveAnalysis", mock.Anything, mock.AnythingOfType("*model.Analysis")).
		Return(errors.New("connection refused")).Once()

	b := &fakeBackend{narrative: fixed(sampleNarrative), pulse: fixed(samplePulse)}
	e := newTestEngine(b, store)

	a, err := e.Analyze(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", a.Subject)
	store.AssertExpectations(t)
}

func TestEngine_FailedAnalysisIsNotArchived(t *testing.T) {
	store := &mockArchiver{}
	b := &fakeBackend{narrative: failing(errors.New("boom")), pulse: fixed(samplePulse)}
	e := newTestEngine(b, store)

	_, err := e.Analyze(context.Background(), "MSFT")
	require.Error(t, err)
	store.AssertNotCalled(t, "SaveAnalysis", mock.Anything, mock.Anything)
}

func TestAssemble_GaugeFallsBackToSummary(t *testing.T) {
	a := Assemble("NVDA", "Bullish Momentum\n* AI demand", &model.PulseResult{Metrics: map[string]string{"volume": "Low"}}, testNow)
	assert.Equal(t, model.Bullish, a.Gauge.Polarity)
	assert.Equal(t, 0.8, a.Gauge.Fraction)
	assert.Equal(t, model.ColorEmerald, a.Gauge.Color)
}

func TestAssemble_EmptyInputs(t *testing.T) {
	a := Assemble("NVDA", "", nil, testNow)
	assert.NotNil(t, a.Sections)
	assert.Empty(t, a.Sections)
	require.NotNil(t, a.Pulse)
	assert.NotNil(t, a.Pulse.Metrics)
	assert.Empty(t, a.Metrics)
	assert.Equal(t, model.Gauge{Polarity: model.Neutral, Fraction: 0.5, Color: model.ColorBlue}, a.Gauge)
}
