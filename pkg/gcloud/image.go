package gcloud

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/rs/zerolog"
)

// 厂商侧机器镜像状态
const (
	// ImageStatusCreating 镜像还在异步拷贝中
	ImageStatusCreating = "CREATING"
	// ImageStatusReady 镜像已就绪
	ImageStatusReady = "READY"
)

// ImageMetadata 机器镜像描述
type ImageMetadata struct {
	Name           string
	SourceInstance string
	Status         string
	// StorageBytes 镜像物化完成前厂商不上报大小
	// nil 表示"尚不可知"，调用方不得按 0 计费
	StorageBytes      *int64
	CreationTimestamp string
}

// ImageAPI 机器镜像（备份）操作接口
type ImageAPI interface {
	CreateImage(ctx context.Context, name, sourceInstance, sourceZone string) (*ImageMetadata, error)
	DescribeImage(ctx context.Context, name string) (*ImageMetadata, error)
	DeleteImage(ctx context.Context, name string) error
	ListImages(ctx context.Context) ([]ImageMetadata, error)
}

// Images 机器镜像管理器
type Images struct {
	runner Runner
}

// 确保 Images 实现了 ImageAPI 接口
var _ ImageAPI = (*Images)(nil)

// NewImages 创建机器镜像管理器
func NewImages(runner Runner) *Images {
	return &Images{runner: runner}
}

// imageResource 厂商返回的机器镜像资源（只取需要的字段）
// totalStorageBytes 在 JSON 中是字符串，且在 CREATING 阶段通常缺失
type imageResource struct {
	Name              string `json:"name"`
	SourceInstance    string `json:"sourceInstance"`
	Status            string `json:"status"`
	TotalStorageBytes string `json:"totalStorageBytes"`
	CreationTimestamp string `json:"creationTimestamp"`
}

func (r *imageResource) toMetadata() ImageMetadata {
	meta := ImageMetadata{
		Name:              r.Name,
		SourceInstance:    lastSegment(r.SourceInstance),
		Status:            r.Status,
		CreationTimestamp: r.CreationTimestamp,
	}
	if r.TotalStorageBytes != "" {
		if bytes, err := strconv.ParseInt(r.TotalStorageBytes, 10, 64); err == nil {
			meta.StorageBytes = &bytes
		}
	}
	return meta
}

// CreateImage 为实例创建机器镜像
// 厂商开始一次异步拷贝并返回初始描述，此时 status 通常还不是终态，
// 大小和终态之后通过 DescribeImage 回填
func (m *Images) CreateImage(ctx context.Context, name, sourceInstance, sourceZone string) (*ImageMetadata, error) {
	logger := zerolog.Ctx(ctx)

	args := []string{
		"compute", "machine-images", "create", name,
		"--source-instance=" + sourceInstance,
		"--source-instance-zone=" + sourceZone,
	}
	raw, err := m.runner.Run(ctx, args, RunOptions{Timeout: DefaultTimeout})
	if err != nil {
		return nil, err
	}

	var resource imageResource
	if err := json.Unmarshal(raw, &resource); err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to parse output", err)
	}
	if resource.Name == "" {
		return nil, apierror.WrapError(apierror.ErrCommand, "no data returned from provider", nil)
	}

	meta := resource.toMetadata()
	logger.Info().
		Str("image", meta.Name).
		Str("source_instance", meta.SourceInstance).
		Str("status", meta.Status).
		Msg("Machine image creation started")

	return &meta, nil
}

// DescribeImage 查询机器镜像
// StorageBytes 在镜像就绪前可能为 nil
func (m *Images) DescribeImage(ctx context.Context, name string) (*ImageMetadata, error) {
	args := []string{"compute", "machine-images", "describe", name}
	raw, err := m.runner.Run(ctx, args, RunOptions{Timeout: ReadTimeout})
	if err != nil {
		return nil, err
	}

	var resource imageResource
	if err := json.Unmarshal(raw, &resource); err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to parse output", err)
	}

	meta := resource.toMetadata()
	return &meta, nil
}

// DeleteImage 删除机器镜像，自动应答交互式确认
func (m *Images) DeleteImage(ctx context.Context, name string) error {
	args := []string{"compute", "machine-images", "delete", name}
	_, err := m.runner.Run(ctx, args, RunOptions{Timeout: ControlTimeout, AutoConfirm: true})
	return err
}

// ListImages 枚举当前项目下所有机器镜像
// 用于对账，不用于按请求计费（计费读持久化记录）
func (m *Images) ListImages(ctx context.Context) ([]ImageMetadata, error) {
	args := []string{"compute", "machine-images", "list"}
	raw, err := m.runner.Run(ctx, args, RunOptions{Timeout: ReadTimeout})
	if err != nil {
		return nil, err
	}

	var resources []imageResource
	if err := json.Unmarshal(raw, &resources); err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to parse output", err)
	}

	images := make([]ImageMetadata, 0, len(resources))
	for i := range resources {
		images = append(images, resources[i].toMetadata())
	}
	return images, nil
}
