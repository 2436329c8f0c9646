package gcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/rs/zerolog"
)

// 厂商侧实例状态
const (
	// InstanceStatusRunning 实例运行中
	InstanceStatusRunning = "RUNNING"
	// InstanceStatusTerminated 实例已停止（厂商对"已停止"的叫法）
	InstanceStatusTerminated = "TERMINATED"
)

// GPUNone 表示不挂载 GPU
const GPUNone = "none"

const (
	// DefaultWaitRetries 状态收敛的默认查询次数
	DefaultWaitRetries = 3
	// DefaultWaitDelay 状态收敛两次查询之间的间隔
	DefaultWaitDelay = 2 * time.Second
)

// CreateConfig 创建实例的抽象配置
type CreateConfig struct {
	Name      string // 厂商侧实例名
	CPUCores  int
	RAMGB     int
	StorageGB int
	GPU       string // 逻辑 GPU 名，GPUNone 表示无
	Region    string // 逻辑区域
	Preset    string // 操作系统预设
}

// InstanceMetadata 创建实例后从厂商结果中提取的元数据
type InstanceMetadata struct {
	Name        string
	Zone        string
	MachineType string
	// ExternalIP 创建时经常还未分配，为空表示未知，之后通过 Describe 补全
	ExternalIP string
}

// InstanceDetail 实例完整描述
type InstanceDetail struct {
	Name              string
	Zone              string
	MachineType       string
	Status            string
	ExternalIP        string
	CreationTimestamp string
}

// InstanceAPI 实例生命周期操作接口
type InstanceAPI interface {
	Create(ctx context.Context, cfg CreateConfig) (*InstanceMetadata, error)
	Start(ctx context.Context, name, zone string) error
	Stop(ctx context.Context, name, zone string) error
	Delete(ctx context.Context, name, zone string) error
	Status(ctx context.Context, name, zone string) (string, error)
	Describe(ctx context.Context, name, zone string) (*InstanceDetail, error)
	WaitForStatus(ctx context.Context, name, zone, want string, maxRetries int, delay time.Duration) error
}

// Instances 实例生命周期管理器
// 所有实例都从同一个基础实例模板派生，机型和启动盘大小按请求覆盖
type Instances struct {
	runner       Runner
	baseTemplate string
}

// 确保 Instances 实现了 InstanceAPI 接口
var _ InstanceAPI = (*Instances)(nil)

// NewInstances 创建实例管理器
// baseTemplate 是所有桌面实例共用的基础实例模板名
func NewInstances(runner Runner, baseTemplate string) *Instances {
	return &Instances{
		runner:       runner,
		baseTemplate: baseTemplate,
	}
}

// instanceResource 厂商返回的实例资源（只取需要的字段）
type instanceResource struct {
	Name              string `json:"name"`
	Zone              string `json:"zone"`
	MachineType       string `json:"machineType"`
	Status            string `json:"status"`
	CreationTimestamp string `json:"creationTimestamp"`
	NetworkInterfaces []struct {
		AccessConfigs []struct {
			NatIP string `json:"natIP"`
		} `json:"accessConfigs"`
	} `json:"networkInterfaces"`
}

// externalIP 取第一个网卡的第一个外部地址，未分配时为空
func (r *instanceResource) externalIP() string {
	if len(r.NetworkInterfaces) == 0 {
		return ""
	}
	if len(r.NetworkInterfaces[0].AccessConfigs) == 0 {
		return ""
	}
	return r.NetworkInterfaces[0].AccessConfigs[0].NatIP
}

// Create 创建实例
// 机型、可用区、镜像族均由资源映射派生；执行器错误原样向上传播，
// 由调用方负责把失败持久化为 ERROR 状态
func (m *Instances) Create(ctx context.Context, cfg CreateConfig) (*InstanceMetadata, error) {
	logger := zerolog.Ctx(ctx)

	zone, err := Zone(cfg.Region)
	if err != nil {
		return nil, err
	}
	family, err := ImageFamily(cfg.Preset)
	if err != nil {
		return nil, err
	}
	machineType := MachineType(cfg.CPUCores, cfg.RAMGB)

	args := []string{
		"compute", "instances", "create", cfg.Name,
		"--zone=" + zone,
		"--source-instance-template=" + m.baseTemplate,
		"--machine-type=" + machineType,
		"--image-family=" + family,
		fmt.Sprintf("--boot-disk-size=%dGB", cfg.StorageGB),
	}
	if cfg.GPU != "" && cfg.GPU != GPUNone {
		args = append(args,
			fmt.Sprintf("--accelerator=type=%s,count=1", Accelerator(cfg.GPU)),
			"--maintenance-policy=TERMINATE",
		)
	}

	raw, err := m.runner.Run(ctx, args, RunOptions{Timeout: DefaultTimeout})
	if err != nil {
		return nil, err
	}

	// create 返回创建的实例数组
	var created []instanceResource
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to parse output", err)
	}
	if len(created) == 0 {
		return nil, apierror.WrapError(apierror.ErrCommand, "no data returned from provider", nil)
	}

	meta := &InstanceMetadata{
		Name:        created[0].Name,
		Zone:        lastSegment(created[0].Zone),
		MachineType: lastSegment(created[0].MachineType),
		ExternalIP:  created[0].externalIP(),
	}

	logger.Info().
		Str("instance", meta.Name).
		Str("zone", meta.Zone).
		Str("machine_type", meta.MachineType).
		Msg("Instance created")

	return meta, nil
}

// Start 启动实例并等待状态收敛到 RUNNING
func (m *Instances) Start(ctx context.Context, name, zone string) error {
	args := []string{"compute", "instances", "start", name, "--zone=" + zone}
	if _, err := m.runner.Run(ctx, args, RunOptions{Timeout: ControlTimeout}); err != nil {
		return err
	}
	return m.WaitForStatus(ctx, name, zone, InstanceStatusRunning, DefaultWaitRetries, DefaultWaitDelay)
}

// Stop 停止实例并等待状态收敛到 TERMINATED
func (m *Instances) Stop(ctx context.Context, name, zone string) error {
	args := []string{"compute", "instances", "stop", name, "--zone=" + zone}
	if _, err := m.runner.Run(ctx, args, RunOptions{Timeout: ControlTimeout}); err != nil {
		return err
	}
	return m.WaitForStatus(ctx, name, zone, InstanceStatusTerminated, DefaultWaitRetries, DefaultWaitDelay)
}

// Delete 删除实例
// 删除命令会交互式确认，这里自动应答
// 厂商侧不保证幂等：NOT_FOUND 应由调用方按"已经不存在"处理，而不是硬失败
func (m *Instances) Delete(ctx context.Context, name, zone string) error {
	args := []string{"compute", "instances", "delete", name, "--zone=" + zone}
	_, err := m.runner.Run(ctx, args, RunOptions{Timeout: ControlTimeout, AutoConfirm: true})
	return err
}

// Status 查询实例当前状态字符串
func (m *Instances) Status(ctx context.Context, name, zone string) (string, error) {
	detail, err := m.Describe(ctx, name, zone)
	if err != nil {
		return "", err
	}
	return detail.Status, nil
}

// Describe 查询实例完整描述
func (m *Instances) Describe(ctx context.Context, name, zone string) (*InstanceDetail, error) {
	args := []string{"compute", "instances", "describe", name, "--zone=" + zone}
	raw, err := m.runner.Run(ctx, args, RunOptions{Timeout: ReadTimeout})
	if err != nil {
		return nil, err
	}

	var resource instanceResource
	if err := json.Unmarshal(raw, &resource); err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to parse output", err)
	}

	return &InstanceDetail{
		Name:              resource.Name,
		Zone:              lastSegment(resource.Zone),
		MachineType:       lastSegment(resource.MachineType),
		Status:            resource.Status,
		ExternalIP:        resource.externalIP(),
		CreationTimestamp: resource.CreationTimestamp,
	}, nil
}

// WaitForStatus 状态收敛：厂商接受命令和实例真正到达目标状态不是原子的
// 轮询状态直到匹配；不匹配或查询出错时等待 delay 后重试，
// 共查询 maxRetries 次，耗尽后返回 TIMEOUT 并带上最后观察到的状态
func (m *Instances) WaitForStatus(ctx context.Context, name, zone, want string, maxRetries int, delay time.Duration) error {
	logger := zerolog.Ctx(ctx)

	lastObserved := "unknown"
	for attempt := 0; attempt < maxRetries; attempt++ {
		status, err := m.Status(ctx, name, zone)
		if err == nil {
			if status == want {
				return nil
			}
			lastObserved = status
			logger.Debug().
				Str("instance", name).
				Str("status", status).
				Str("want", want).
				Int("attempt", attempt+1).
				Msg("Instance status not converged yet")
		} else {
			// 瞬时查询失败同样消耗一次重试
			logger.Warn().
				Str("instance", name).
				Int("attempt", attempt+1).
				Err(err).
				Msg("Status query failed during convergence wait")
		}

		if attempt < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return apierror.WrapError(
		apierror.ErrTimeout,
		fmt.Sprintf("instance %s did not reach status %s (last observed: %s)", name, want, lastObserved),
		nil,
	)
}

// lastSegment 厂商在 JSON 中用完整 URL 表示 zone、machineType 等，取末段
func lastSegment(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
