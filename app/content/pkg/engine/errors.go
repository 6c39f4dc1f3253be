package engine

import (
	"errors"
	"fmt"
)

// Kind 错误类别，调用方据此区分"没有内容"和"出错了"
type Kind string

const (
	KindConfigurationMissing Kind = "configuration_missing"
	KindInvalidCategory      Kind = "invalid_category"
	KindTransportFailure     Kind = "transport_failure"
	KindUnexpectedResponse   Kind = "unexpected_response_shape"
	KindNoPayload            Kind = "no_payload"
	KindMalformedPayload     Kind = "malformed_payload"
	KindInvalidPayload       Kind = "invalid_payload"
)

// ErrDisabled 未配置 LLM 凭证
var ErrDisabled = errors.New("llm api key is not configured")

// Error 引擎返回的所有错误都是 *Error
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf 返回错误类别，err 不是 *Error 时返回空字符串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsPayloadKind 内容提取或校验阶段的错误
func IsPayloadKind(k Kind) bool {
	switch k {
	case KindNoPayload, KindMalformedPayload, KindInvalidPayload:
		return true
	}
	return false
}
