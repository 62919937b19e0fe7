// Package rss 从 RSS/Atom 源读取新闻标题
package rss

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news"
)

// SubjectPlaceholder 源地址中的标的占位符
const SubjectPlaceholder = "{subject}"

// Client RSS 客户端
type Client struct {
	feeds  []string
	parser *gofeed.Parser
}

// NewClient 创建 RSS 客户端。
// 含占位符的地址按标的展开；不含占位符的源按标题与摘要过滤。
func NewClient(feeds []string) *Client {
	return &Client{
		feeds:  feeds,
		parser: gofeed.NewParser(),
	}
}

// Ensure Client implements news.Provider
var _ news.Provider = (*Client)(nil)

// Headlines implements news.Provider
func (c *Client) Headlines(ctx context.Context, q *news.Query) ([]news.Headline, error) {
	var (
		headlines []news.Headline
		errs      []error
	)
	for _, feedURL := range c.feeds {
		items, err := c.fetch(ctx, feedURL, q)
		if err != nil {
			logger.Log.Warnf("解析 RSS 失败 %s: %v", feedURL, err)
			errs = append(errs, err)
			continue
		}
		for _, h := range items {
			headlines = append(headlines, h)
			if q.Limit > 0 && len(headlines) >= q.Limit {
				return headlines, nil
			}
		}
	}
	// 所有源都失败时才报错
	if len(errs) == len(c.feeds) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return headlines, nil
}

func (c *Client) fetch(ctx context.Context, feedURL string, q *news.Query) ([]news.Headline, error) {
	templated := strings.Contains(feedURL, SubjectPlaceholder)
	if templated {
		feedURL = strings.ReplaceAll(feedURL, SubjectPlaceholder, url.QueryEscape(q.Subject))
	}

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	subject := strings.ToLower(q.Subject)
	var out []news.Headline
	for _, item := range feed.Items {
		// 过滤掉时间窗口之外的旧文章
		if !q.Since.IsZero() && item.PublishedParsed != nil && item.PublishedParsed.Before(q.Since) {
			continue
		}
		if !templated && !mentions(item, subject) {
			continue
		}
		h := news.Headline{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: strings.TrimSpace(item.Description),
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = item.PublishedParsed.Format("2006-01-02")
		}
		out = append(out, h)
	}
	return out, nil
}

func mentions(item *gofeed.Item, subject string) bool {
	return strings.Contains(strings.ToLower(item.Title), subject) ||
		strings.Contains(strings.ToLower(item.Description), subject)
}
