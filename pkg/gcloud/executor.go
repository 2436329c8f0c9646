// Package gcloud 封装云厂商命令行工具的调用
// 包含命令执行器、资源映射、实例生命周期与机器镜像操作
// 所有子进程失败在这里统一分类为 apierror 的封闭错误集合，上层不做二次分类
package gcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/jimyag/clouddesk/pkg/jsonx"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout 创建类操作的默认超时
	DefaultTimeout = 5 * time.Minute
	// ReadTimeout 状态查询类操作的超时
	ReadTimeout = 30 * time.Second
	// ControlTimeout 启停、删除类操作的超时
	ControlTimeout = 2 * time.Minute

	// stderr 进入错误 Details 前的截断长度
	maxStderrDetail = 1024

	redactedMarker = "[REDACTED]"
)

// RunOptions 单次命令的执行选项
type RunOptions struct {
	// Timeout 墙钟超时，零值使用 DefaultTimeout；超时后子进程被强制终止
	Timeout time.Duration
	// AutoConfirm 向子进程标准输入写入确认字节（部分命令会交互式提问）
	AutoConfirm bool
}

// Runner 执行一次云厂商 CLI 操作
// 返回解析后的 JSON 值或分类错误，本层从不重试
type Runner interface {
	Run(ctx context.Context, args []string, opts RunOptions) (json.RawMessage, error)
}

// Client 基于 gcloud 二进制的 Runner 实现
type Client struct {
	binPath string
	project string
}

// 确保 Client 实现了 Runner 接口
var _ Runner = (*Client)(nil)

// NewClient 创建命令执行器
// binPath 为空时使用 PATH 中的 "gcloud"，project 是目标项目 ID
func NewClient(binPath, project string) *Client {
	if binPath == "" {
		binPath = "gcloud"
	}
	return &Client{
		binPath: binPath,
		project: project,
	}
}

// Run 执行一次命令
// 隐式追加 --format=json 和 --project 两个参数
func (c *Client) Run(ctx context.Context, args []string, opts RunOptions) (json.RawMessage, error) {
	logger := zerolog.Ctx(ctx)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	full := make([]string, 0, len(args)+2)
	full = append(full, args...)
	full = append(full, "--format=json", "--project="+c.project)
	redacted := redactArgs(full)

	logger.Info().
		Strs("args", redacted).
		Dur("timeout", timeout).
		Msg("Running provider command")

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, c.binPath, full...)
	if opts.AutoConfirm {
		cmd.Stdin = strings.NewReader("Y\n")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	details := map[string]string{
		"operation": operationName(args),
		"command":   strings.Join(redacted, " "),
		"duration":  duration.String(),
	}

	if runErr != nil {
		classified := c.classify(cmdCtx, runErr, stderr.Bytes(), details)
		logger.Error().
			Strs("args", redacted).
			Dur("duration", duration).
			Str("code", classified.Code).
			Err(runErr).
			Msg("Provider command failed")
		return nil, classified
	}

	raw, err := jsonx.Extract(stdout.Bytes())
	if err != nil {
		logger.Error().
			Strs("args", redacted).
			Dur("duration", duration).
			Msg("Provider command succeeded but output is not JSON")
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to parse output", err).WithDetails(details)
	}

	logger.Info().
		Strs("args", redacted).
		Dur("duration", duration).
		Msg("Provider command completed")

	return raw, nil
}

// classify 将子进程失败归入封闭错误集合
func (c *Client) classify(cmdCtx context.Context, runErr error, stderr []byte, details map[string]string) *apierror.Error {
	details["stderr"] = truncate(string(stderr), maxStderrDetail)

	// 二进制缺失（执行环境没有安装 SDK）
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
		return apierror.ErrSDKNotInstalled.WithDetails(details)
	}

	// 墙钟超时，子进程已被 CommandContext 终止
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return apierror.ErrTimeout.WithDetails(details)
	}

	base := classifyStderr(string(stderr))
	return &apierror.Error{
		Code:       base.Code,
		Message:    base.Message,
		HTTPStatus: base.HTTPStatus,
		RawError:   fmt.Errorf("%w: %s", runErr, truncate(string(stderr), maxStderrDetail)),
		Details:    details,
	}
}

// stderr 关键字分类表，大小写不敏感，顺序即优先级
var stderrClassifications = []struct {
	err     *apierror.Error
	needles []string
}{
	{apierror.ErrZoneExhausted, []string{"zone_resource_pool_exhausted", "resource pool exhausted", "does not have enough resources"}},
	{apierror.ErrQuota, []string{"quota"}},
	{apierror.ErrAuth, []string{"gcloud auth login", "credential", "unauthenticated", "reauthentication"}},
	{apierror.ErrPermission, []string{"permission", "forbidden"}},
	{apierror.ErrNotFound, []string{"not found", "could not be found"}},
	{apierror.ErrInvalidConfig, []string{"invalid value", "invalid argument", "bad request"}},
}

// classifyStderr 按关键字匹配 stderr，匹配不到时兜底为 COMMAND_ERROR
func classifyStderr(stderr string) *apierror.Error {
	lowered := strings.ToLower(stderr)
	for _, c := range stderrClassifications {
		for _, needle := range c.needles {
			if strings.Contains(lowered, needle) {
				return c.err
			}
		}
	}
	return apierror.ErrCommand
}

// redactArgs 替换可能携带敏感信息的参数
// 包含 password、secret、key 的参数整体替换为脱敏标记
func redactArgs(args []string) []string {
	redacted := make([]string, len(args))
	for i, arg := range args {
		lowered := strings.ToLower(arg)
		if strings.Contains(lowered, "password") ||
			strings.Contains(lowered, "secret") ||
			strings.Contains(lowered, "key") {
			redacted[i] = redactedMarker
			continue
		}
		redacted[i] = arg
	}
	return redacted
}

// operationName 取命令动词部分作为操作名（不含资源名和标志）
func operationName(args []string) string {
	verbs := make([]string, 0, 3)
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			break
		}
		verbs = append(verbs, arg)
		if len(verbs) == 3 {
			break
		}
	}
	return strings.Join(verbs, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
