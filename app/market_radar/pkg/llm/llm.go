package llm

import (
	"context"
	"strings"
)

// Backend 定义通用的生成式 AI 后端接口：发送提示词，返回自由文本
type Backend interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用生成请求
type Request struct {
	System string
	Prompt string
	// JSON 为 true 时要求后端只输出 JSON 对象
	JSON bool
}

// Response 通用生成响应
type Response struct {
	Text  string
	Model string
}

// IsRateLimitError 判断是否为限流错误，各家后端的错误文本不同
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "resource_exhausted")
}

// StripCodeFence 去掉模型常带的 ```json 代码块包裹
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
