package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_radar/app/display/internal/conf"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm/factory"
	mrLogger "github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	newsFactory "github.com/iWorld-y/market_radar/app/market_radar/pkg/news/factory"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

// ToConfig 将 internal/conf.Radar 转换为 pkg/config.Config 并补齐默认值
func ToConfig(c *conf.Radar) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		cfg.ApplyDefaults()
		return cfg
	}

	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			Provider: c.Llm.Provider,
			BaseURL:  c.Llm.BaseUrl,
			APIKey:   c.Llm.ApiKey,
			Model:    c.Llm.Model,
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS:        int(c.Concurrency.Qps),
			RPM:        int(c.Concurrency.Rpm),
			MaxRetries: int(c.Concurrency.MaxRetries),
		}
	}
	if c.Db != nil {
		cfg.DB = config.DBConfig{
			Host:     c.Db.Host,
			Port:     int(c.Db.Port),
			User:     c.Db.User,
			Password: c.Db.Password,
			Name:     c.Db.Name,
		}
	}
	if c.Ticker != nil {
		cfg.Ticker = config.TickerConfig{
			Phases:          c.Ticker.Phases,
			Tips:            c.Ticker.Tips,
			PhaseIntervalMs: int(c.Ticker.PhaseIntervalMs),
			TipIntervalMs:   int(c.Ticker.TipIntervalMs),
		}
	}
	if c.Analysis != nil {
		cfg.Analysis.DetailCards = int(c.Analysis.DetailCards)
	}
	if c.News != nil {
		cfg.News = config.NewsConfig{
			Provider:       c.News.Provider,
			MaxHeadlines:   int(c.News.MaxHeadlines),
			LookbackDays:   int(c.News.LookbackDays),
			FetchArticles:  c.News.FetchArticles,
			ArticleTimeout: int(c.News.ArticleTimeout),
		}
		if c.News.Tavily != nil {
			cfg.News.Tavily = config.TavilyConfig{APIKey: c.News.Tavily.ApiKey, BaseURL: c.News.Tavily.BaseUrl}
		}
		if c.News.Searxng != nil {
			cfg.News.SearXNG = config.SearXNGConfig{BaseURL: c.News.Searxng.BaseUrl, Timeout: int(c.News.Searxng.Timeout)}
		}
		if c.News.Rss != nil {
			cfg.News.RSS.Feeds = c.News.Rss.Feeds
		}
	}

	cfg.ApplyDefaults()
	return cfg
}

// NewRadarEngine 初始化 market_radar 引擎
func NewRadarEngine(c *conf.Radar, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)
	cfg := ToConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// 初始化日志
	if err := mrLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init market_radar logger: %v", err)
		_ = mrLogger.InitLogger("info", "") // 降级处理
	}

	ctx := context.Background()

	// 初始化存储层，失败时不归档
	cleanup := func() {
		helper.Info("Cleaning up market_radar engine")
	}
	var archive engine.Archiver
	if cfg.DB.Host != "" {
		store, err := storage.NewStorage(ctx, cfg.DB)
		if err != nil {
			helper.Errorf("Failed to init storage for engine: %v", err)
		} else {
			archive = store
			cleanup = func() {
				helper.Info("Cleaning up market_radar engine")
				store.Close()
			}
		}
	}

	backend, err := factory.NewBackend(ctx, cfg.LLM)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		cleanup()
		return nil, nil, err
	}

	provider, err := newsFactory.NewProvider(cfg.News)
	if err != nil {
		helper.Errorf("Failed to init news provider: %v", err)
		cleanup()
		return nil, nil, err
	}

	return engine.NewEngine(cfg, backend, archive, engine.WithNews(provider)), cleanup, nil
}
