package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news/rss"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news/searxng"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news/tavily"
)

// NewProvider 根据配置创建新闻来源，未配置时返回 nil
func NewProvider(cfg config.NewsConfig) (news.Provider, error) {
	p, err := newProvider(cfg)
	if err != nil || p == nil {
		return nil, err
	}
	if cfg.FetchArticles {
		p = news.WithArticleText(p, time.Duration(cfg.ArticleTimeout)*time.Second)
	}
	return p, nil
}

func newProvider(cfg config.NewsConfig) (news.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil

	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey, cfg.Tavily.BaseURL), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	case "rss":
		if len(cfg.RSS.Feeds) == 0 {
			return nil, fmt.Errorf("rss feeds are empty")
		}
		return rss.NewClient(cfg.RSS.Feeds), nil

	default:
		return nil, fmt.Errorf("unknown news provider: %s", cfg.Provider)
	}
}
