// Package apierror 提供 clouddesk 所有服务统一的分类错误类型
// 错误分类是一个封闭集合，见 taxonomy.go
package apierror

import (
	"fmt"
)

// Error 分类错误
// Code 是稳定的错误代码，Message 是固定的用户可见文案（不包含云厂商原始输出）
// Details 仅用于日志，不会序列化到响应中
type Error struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	HTTPStatus int               `json:"-"` // HTTP 状态码，不会序列化到响应中
	RawError   error             `json:"-"` // 内部错误，用于服务端调试，不会序列化到响应中
	Details    map[string]string `json:"-"` // 操作名、脱敏后的命令、耗时等，仅用于日志
}

// Error 实现 error 接口
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.RawError != nil {
		str += fmt.Sprintf(" (RawError: %v)", e.RawError)
	}
	return str
}

// Is 实现 errors.Is 接口，按 Code 判断错误类型
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e == nil || t == nil {
		return false
	}

	return e.Code == t.Code
}

// Unwrap 实现 errors.Unwrap 接口，返回底层错误
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.RawError
}

// 编译时检查 Error 是否实现了所有必需的接口
var _ interface {
	Error() string
	Is(target error) bool
	Unwrap() error
} = (*Error)(nil)

// NewError 创建新的错误
// 默认 HTTP 状态码为 500
func NewError(code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: 500,
	}
}

// NewErrorWithStatus 创建新的错误，指定 HTTP 状态码
func NewErrorWithStatus(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WrapError 包装预定义的错误
// 保留预定义错误的 Code 和 HTTPStatus，但使用自定义消息和原始错误
// 已分类的错误不允许二次分类，调用方只能透传或用本函数补充上下文
func WrapError(baseErr *Error, message string, rawError error) *Error {
	return &Error{
		Code:       baseErr.Code,
		Message:    message,
		HTTPStatus: baseErr.HTTPStatus,
		RawError:   rawError,
		Details:    baseErr.Details,
	}
}

// WithDetails 返回附带日志细节的错误副本
func (e *Error) WithDetails(details map[string]string) *Error {
	return &Error{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		RawError:   e.RawError,
		Details:    details,
	}
}

// ErrorResponse API 错误响应结构
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// NewErrorResponse 创建新的错误响应
func NewErrorResponse(err *Error) *ErrorResponse {
	return &ErrorResponse{Error: err}
}
