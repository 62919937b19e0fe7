package news

import (
	"context"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

// articleFetcher 抓取网页正文
type articleFetcher func(url string, timeout time.Duration) (readability.Article, error)

// articleProvider 为缺少摘要的标题抓取正文
type articleProvider struct {
	Provider
	timeout time.Duration
	fetch   articleFetcher
}

// WithArticleText 包装 p，摘要为空的标题用网页正文补齐。p 为 nil 时返回 nil
func WithArticleText(p Provider, timeout time.Duration) Provider {
	if p == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &articleProvider{
		Provider: p,
		timeout:  timeout,
		fetch: func(url string, timeout time.Duration) (readability.Article, error) {
			return readability.FromURL(url, timeout)
		},
	}
}

// Headlines implements Provider
func (a *articleProvider) Headlines(ctx context.Context, q *Query) ([]Headline, error) {
	headlines, err := a.Provider.Headlines(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range headlines {
		if ctx.Err() != nil {
			break
		}
		h := &headlines[i]
		if strings.TrimSpace(h.Snippet) != "" || h.URL == "" {
			continue
		}
		text, err := a.fetchText(h.URL)
		if err != nil {
			logger.Log.Warnf("抓取正文失败 %s: %v", h.URL, err)
			continue
		}
		h.Snippet = Truncate(text, MaxSnippetRunes)
	}
	return headlines, nil
}

func (a *articleProvider) fetchText(url string) (string, error) {
	article, err := a.fetch(url, a.timeout)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(article.TextContent), " "), nil
}
