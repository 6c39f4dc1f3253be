// Package extract 从模型的自由文本回复中取出 JSON 数组
package extract

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNoArray 回复中没有任何 '['
	ErrNoArray = errors.New("no JSON array in content")
	// ErrMalformed 存在 '[' 但无法解析出合法数组
	ErrMalformed = errors.New("malformed JSON array in content")
)

// maxFailedStarts 解码失败的 '[' 位置上限，每次失败都会读到文本末尾
const maxFailedStarts = 64

// Arrays 按出现顺序返回文本中所有顶层 JSON 数组。
// 每个 '[' 处用 json.Decoder 只解码一个值，前后的说明文字被忽略；
// 成功解码后跳过该数组，嵌套数组不会重复返回。
// 累计失败达到 maxFailedStarts 次后停止扫描。
func Arrays(content string) ([]json.RawMessage, error) {
	content = stripFences(content)
	if !strings.Contains(content, "[") {
		return nil, ErrNoArray
	}

	var out []json.RawMessage
	failed := 0
	for i := 0; i < len(content) && failed < maxFailedStarts; {
		j := strings.IndexByte(content[i:], '[')
		if j < 0 {
			break
		}
		start := i + j

		dec := json.NewDecoder(strings.NewReader(content[start:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			failed++
			i = start + 1
			continue
		}
		out = append(out, raw)
		i = start + int(dec.InputOffset())
	}

	if len(out) == 0 {
		return nil, ErrMalformed
	}
	return out, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
