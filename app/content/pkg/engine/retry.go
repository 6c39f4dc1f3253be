package engine

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/llm"
)

const maxBackoff = 30 * time.Second

// RetryPolicy 重试策略，Attempts 为总尝试次数
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// RetryFromConfig 从配置构造重试策略
func RetryFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		Attempts:  cfg.Attempts,
		BaseDelay: time.Duration(cfg.BaseDelayMS) * time.Millisecond,
	}
}

// Backoff 第 attempt 次失败后的等待时间: BaseDelay * 2^attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt > 10 {
		return maxBackoff
	}
	d := p.BaseDelay * time.Duration(1<<attempt)
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isTransient 429、5xx 和网络超时可以重试
func isTransient(err error) bool {
	var se *llm.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}

	// eino-ext 的 openai 客户端只在错误信息中带状态码
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"429", "too many requests", "status code: 5", "service unavailable", "bad gateway"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// classify 将调用 LLM 的错误归类
func classify(op string, err error) *Error {
	if errors.Is(err, llm.ErrBadResponse) || strings.Contains(strings.ToLower(err.Error()), "empty choices") {
		return &Error{Kind: KindUnexpectedResponse, Op: op, Err: err}
	}
	return &Error{Kind: KindTransportFailure, Op: op, Err: err}
}
