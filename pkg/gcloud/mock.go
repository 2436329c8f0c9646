package gcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockCall 记录一次 Run 调用
type MockCall struct {
	Args []string
	Opts RunOptions
}

// mockResult 预置的一次调用结果
type mockResult struct {
	raw json.RawMessage
	err error
}

// MockRunner Runner 的测试实现
// 按入队顺序返回预置结果，并记录所有调用；也可以设置 Handler 按参数动态应答
type MockRunner struct {
	mu      sync.Mutex
	calls   []MockCall
	results []mockResult

	// Handler 非空时优先于结果队列
	Handler func(args []string, opts RunOptions) (json.RawMessage, error)
}

// 确保 MockRunner 实现了 Runner 接口
var _ Runner = (*MockRunner)(nil)

// NewMockRunner 创建 MockRunner
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// Enqueue 预置一次成功结果
func (m *MockRunner) Enqueue(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{raw: json.RawMessage(raw)})
}

// EnqueueError 预置一次失败结果
func (m *MockRunner) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{err: err})
}

// Run 实现 Runner 接口
func (m *MockRunner) Run(_ context.Context, args []string, opts RunOptions) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := MockCall{Args: append([]string(nil), args...), Opts: opts}
	m.calls = append(m.calls, call)

	if m.Handler != nil {
		return m.Handler(call.Args, opts)
	}

	if len(m.results) == 0 {
		return nil, fmt.Errorf("mock runner: unexpected call %v", args)
	}
	result := m.results[0]
	m.results = m.results[1:]
	return result.raw, result.err
}

// Calls 返回已记录的调用副本
func (m *MockRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount 返回调用次数
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
