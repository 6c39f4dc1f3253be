package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
)

// NewChatModel 根据配置创建对话模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	temperature := cfg.SamplingTemperature()

	switch cfg.Provider {
	case "", "openai":
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: &temperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM 初始化失败: %w", err)
		}
		return cm, nil

	case "http":
		return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model, timeout).WithTemperature(temperature), nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewRawClient 创建原样透传响应体的客户端
func NewRawClient(cfg config.LLMConfig) *Client {
	return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model, time.Duration(cfg.Timeout)*time.Second).
		WithTemperature(cfg.SamplingTemperature())
}
