package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
)

func TestNewBackend_Errors(t *testing.T) {
	_, err := NewBackend(context.Background(), config.LLMConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "api key")

	_, err = NewBackend(context.Background(), config.LLMConfig{Provider: "claude", APIKey: "k"})
	assert.ErrorContains(t, err, "unknown llm provider")
}
