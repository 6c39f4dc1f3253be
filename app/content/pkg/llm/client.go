package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// maxResponseBytes 响应体读取上限，超出视为异常响应
const maxResponseBytes = 1 << 20

var (
	// ErrBadResponse 响应体不是预期的 chat completion 结构
	ErrBadResponse = errors.New("unexpected chat completion response")
	// ErrNoChoices 响应中没有 choices
	ErrNoChoices = fmt.Errorf("%w: no choices", ErrBadResponse)
)

// StatusError 接口返回非 2xx 状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completion api error (status %d): %s", e.StatusCode, e.Body)
}

// Temporary 429 和 5xx 可以重试
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Message chat completion 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest POST /chat/completions 请求体
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
}

// ChatResponse 只包含用到的字段
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice 单个候选回复
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client 直接调用 OpenAI 兼容的 chat completion 接口
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float32
	client      *http.Client
}

// NewClient 创建客户端，timeout 为 0 时使用 60 秒
func NewClient(baseURL, apiKey, modelName string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   modelName,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithTemperature 设置默认采样温度
func (c *Client) WithTemperature(t float32) *Client {
	c.temperature = &t
	return c
}

// Ensure Client implements model.BaseChatModel
var _ model.BaseChatModel = (*Client)(nil)

// Generate implements model.BaseChatModel
func (c *Client) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	req := c.newRequest(input, opts...)

	body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	msg := &schema.Message{
		Role:         schema.Assistant,
		Content:      choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{FinishReason: choice.FinishReason},
	}
	if resp.Usage != nil {
		msg.ResponseMeta.Usage = &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return msg, nil
}

// Stream 接口不做流式输出，整条回复作为单元素流返回
func (c *Client) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := c.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// CompleteRaw 以单条用户消息发送 query，返回未经处理的响应体
func (c *Client) CompleteRaw(ctx context.Context, query string, opts ...model.Option) (map[string]any, error) {
	req := c.newRequest([]*schema.Message{schema.UserMessage(query)}, opts...)

	body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return out, nil
}

func (c *Client) newRequest(input []*schema.Message, opts ...model.Option) ChatRequest {
	o := model.GetCommonOptions(&model.Options{Model: &c.model, Temperature: c.temperature}, opts...)

	req := ChatRequest{Model: c.model, Temperature: o.Temperature}
	if o.Model != nil && *o.Model != "" {
		req.Model = *o.Model
	}
	for _, m := range input {
		req.Messages = append(req.Messages, Message{Role: string(m.Role), Content: m.Content})
	}
	return req
}

func (c *Client) post(ctx context.Context, req ChatRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if len(body) > maxResponseBytes {
			body = body[:maxResponseBytes]
		}
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBadResponse, maxResponseBytes)
	}
	return body, nil
}
