package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
	Ticker      TickerConfig      `yaml:"ticker"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	News        NewsConfig        `yaml:"news"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai 或 gemini
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// DBConfig 数据库相关配置，Host 为空时不启用报告归档
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// NewsConfig 新闻标题来源，Provider 为空时不启用
type NewsConfig struct {
	Provider     string `yaml:"provider"` // tavily、searxng 或 rss
	MaxHeadlines int    `yaml:"max_headlines"`
	LookbackDays int    `yaml:"lookback_days"`
	// FetchArticles 为没有摘要的标题抓取网页正文
	FetchArticles  bool          `yaml:"fetch_articles"`
	ArticleTimeout int           `yaml:"article_timeout"` // 秒
	Tavily         TavilyConfig  `yaml:"tavily"`
	SearXNG        SearXNGConfig `yaml:"searxng"`
	RSS            RSSConfig     `yaml:"rss"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // 秒
}

// RSSConfig RSS 源列表，地址中的 {subject} 会替换为标的
type RSSConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS        int `yaml:"qps"`
	RPM        int `yaml:"rpm"`
	MaxRetries int `yaml:"max_retries"`
}

// TickerConfig 等待期间展示的阶段文案与小贴士
type TickerConfig struct {
	Phases          []string `yaml:"phases"`
	Tips            []string `yaml:"tips"`
	PhaseIntervalMs int      `yaml:"phase_interval_ms"`
	TipIntervalMs   int      `yaml:"tip_interval_ms"`
}

// AnalysisConfig 个股分析展示策略
type AnalysisConfig struct {
	// DetailCards 执行摘要之后展示的详情卡片数量
	DetailCards int `yaml:"detail_cards"`
}

// PhaseInterval 阶段切换周期
func (t TickerConfig) PhaseInterval() time.Duration {
	return time.Duration(t.PhaseIntervalMs) * time.Millisecond
}

// TipInterval 小贴士轮播周期
func (t TickerConfig) TipInterval() time.Duration {
	return time.Duration(t.TipIntervalMs) * time.Millisecond
}

// 默认值
const (
	DefaultProvider        = "openai"
	DefaultQPS             = 2
	DefaultRPM             = 30
	DefaultMaxRetries      = 3
	DefaultPhaseIntervalMs = 2500
	DefaultTipIntervalMs   = 4000
	DefaultDetailCards     = 3
	DefaultDBPort          = 5432
	DefaultMaxHeadlines    = 5
	DefaultLookbackDays    = 3
)

// DefaultPhases 默认阶段文案
var DefaultPhases = []string{
	"Connecting to market feeds...",
	"Scanning price action and volume...",
	"Weighing institutional flows...",
	"Synthesizing analyst narrative...",
}

// DefaultTips 默认小贴士
var DefaultTips = []string{
	"Tip: divergence between price and volume often precedes a reversal.",
	"Tip: sector rotation shows up in relative strength before headlines.",
	"Tip: a bullish read is not a trade plan. Size positions for the downside.",
	"Tip: watch the bond market when equities and crypto disagree.",
}

// LoadConfig 从指定路径加载配置，并补齐默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults 为缺省字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = DefaultQPS
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = DefaultRPM
	}
	if c.Concurrency.MaxRetries < 0 {
		c.Concurrency.MaxRetries = 0
	} else if c.Concurrency.MaxRetries == 0 {
		c.Concurrency.MaxRetries = DefaultMaxRetries
	}
	if c.DB.Host != "" && c.DB.Port == 0 {
		c.DB.Port = DefaultDBPort
	}
	if len(c.Ticker.Phases) == 0 {
		c.Ticker.Phases = append([]string(nil), DefaultPhases...)
	}
	if len(c.Ticker.Tips) == 0 {
		c.Ticker.Tips = append([]string(nil), DefaultTips...)
	}
	if c.Ticker.PhaseIntervalMs <= 0 {
		c.Ticker.PhaseIntervalMs = DefaultPhaseIntervalMs
	}
	if c.Ticker.TipIntervalMs <= 0 {
		c.Ticker.TipIntervalMs = DefaultTipIntervalMs
	}
	if c.Analysis.DetailCards <= 0 {
		c.Analysis.DetailCards = DefaultDetailCards
	}
	if c.News.Provider != "" {
		if c.News.MaxHeadlines <= 0 {
			c.News.MaxHeadlines = DefaultMaxHeadlines
		}
		if c.News.LookbackDays <= 0 {
			c.News.LookbackDays = DefaultLookbackDays
		}
	}
}

// Validate 校验必填配置
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider: %q", c.LLM.Provider))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is missing"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is missing"))
	}
	switch c.News.Provider {
	case "":
	case "tavily":
		if c.News.Tavily.APIKey == "" {
			errs = append(errs, errors.New("news.tavily.api_key is missing"))
		}
	case "searxng":
		if c.News.SearXNG.BaseURL == "" {
			errs = append(errs, errors.New("news.searxng.base_url is missing"))
		}
	case "rss":
		if len(c.News.RSS.Feeds) == 0 {
			errs = append(errs, errors.New("news.rss.feeds is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown news provider: %q", c.News.Provider))
	}
	return errors.Join(errs...)
}
