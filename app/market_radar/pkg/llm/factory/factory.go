package factory

import (
	"context"
	"fmt"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm/gemini"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm/openai"
)

// NewBackend 根据配置创建 AI 后端
func NewBackend(ctx context.Context, cfg config.LLMConfig) (llm.Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is missing")
	}

	switch cfg.Provider {
	case "", "openai":
		return openai.NewClient(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)

	case "gemini":
		return gemini.NewClient(ctx, cfg.APIKey, cfg.Model)

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
