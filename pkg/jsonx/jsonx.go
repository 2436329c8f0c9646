// Package jsonx 提供从混杂文本中提取 JSON 值的工具
// 云厂商 CLI 偶尔会在 JSON 输出前后打印警告或提示文本，
// 进程管理逻辑不应关心这种噪音，统一在这里处理
package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNoJSON 输入中找不到合法的 JSON 值
var ErrNoJSON = errors.New("no valid JSON value found in input")

// Extract 从混杂文本中提取第一个合法的 JSON 对象或数组
// 定位第一个 '{' 或 '['，然后从末尾逐步收缩解析窗口直到解析成功
func Extract(data []byte) (json.RawMessage, error) {
	start := -1
	for i, b := range data {
		if b == '{' || b == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, ErrNoJSON
	}

	window := data[start:]
	for end := len(window); end > 0; end-- {
		candidate := bytes.TrimSpace(window[:end])
		if len(candidate) == 0 {
			break
		}
		if json.Valid(candidate) {
			raw := make(json.RawMessage, len(candidate))
			copy(raw, candidate)
			return raw, nil
		}
	}

	return nil, ErrNoJSON
}

// ExtractString Extract 的字符串便捷版本
func ExtractString(s string) (json.RawMessage, error) {
	return Extract([]byte(s))
}
