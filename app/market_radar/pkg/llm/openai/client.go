package openai

import (
	"context"
	"fmt"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
)

// jsonGuard JSON 模式下追加的系统提示
const jsonGuard = "你是一个 JSON 生成器。请只输出 JSON 字符串，不要包含任何 markdown 标记。"

// Client OpenAI 兼容协议的后端（DeepSeek、Qwen 等同样适用）
type Client struct {
	chatModel model.ChatModel
	model     string
}

// Ensure Client implements llm.Backend
var _ llm.Backend = (*Client)(nil)

// NewClient 创建 OpenAI 兼容后端
func NewClient(ctx context.Context, baseURL, apiKey, modelName string) (*Client, error) {
	chatModel, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewWithChatModel(chatModel, modelName), nil
}

// NewWithChatModel 使用已有的 eino ChatModel
func NewWithChatModel(cm model.ChatModel, modelName string) *Client {
	return &Client{chatModel: cm, model: modelName}
}

// Generate implements llm.Backend
func (c *Client) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	messages := buildMessages(req)

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from %s", c.model)
	}
	return &llm.Response{Text: resp.Content, Model: c.model}, nil
}

func buildMessages(req *llm.Request) []*schema.Message {
	var messages []*schema.Message
	system := req.System
	if req.JSON {
		if system != "" {
			system += "\n"
		}
		system += jsonGuard
	}
	if system != "" {
		messages = append(messages, &schema.Message{Role: schema.System, Content: system})
	}
	messages = append(messages, &schema.Message{Role: schema.User, Content: req.Prompt})
	return messages
}
