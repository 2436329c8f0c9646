package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository/model"
	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/jimyag/clouddesk/pkg/gcloud"
	"github.com/jimyag/clouddesk/pkg/idgen"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DesktopService 桌面服务，驱动桌面实例的生命周期
// 对同一桌面的并发操作不在这一层做互斥，由厂商侧仲裁
type DesktopService struct {
	desktopRepo repository.DesktopRepository
	instances   gcloud.InstanceAPI
	idGen       *idgen.Generator
}

// NewDesktopService 创建桌面服务
func NewDesktopService(desktopRepo repository.DesktopRepository, instances gcloud.InstanceAPI) *DesktopService {
	return &DesktopService{
		desktopRepo: desktopRepo,
		instances:   instances,
		idGen:       idgen.New(),
	}
}

// lastErrorOf 提取要持久化的分类错误描述（不含厂商原始输出）
func lastErrorOf(err error) string {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("[%s] %s", apiErr.Code, apiErr.Message)
	}
	return err.Error()
}

// markError 把失败持久化到记录上
// TIMEOUT 只落错误信息不落 ERROR 状态：厂商侧操作可能仍在推进，
// 状态留给下一次查询收敛；其余分类错误照常迁移到 ERROR
func (s *DesktopService) markError(ctx context.Context, desktop *model.Desktop, opErr error) {
	logger := zerolog.Ctx(ctx)

	if !errors.Is(opErr, apierror.ErrTimeout) &&
		entity.DesktopStatus(desktop.Status).CanTransitionTo(entity.DesktopStatusError) {
		desktop.Status = string(entity.DesktopStatusError)
	}
	desktop.LastError = lastErrorOf(opErr)
	if err := s.desktopRepo.Update(ctx, desktop); err != nil {
		logger.Error().Str("desktop_id", desktop.ID).Err(err).Msg("Failed to persist error state")
	}
}

// transition 校验并持久化一次状态迁移
func (s *DesktopService) transition(ctx context.Context, desktop *model.Desktop, to entity.DesktopStatus) error {
	if err := entity.ValidateDesktopTransition(entity.DesktopStatus(desktop.Status), to); err != nil {
		return apierror.WrapError(apierror.ErrInvalidConfig, err.Error(), nil)
	}
	desktop.Status = string(to)
	desktop.LastError = ""
	return s.desktopRepo.Update(ctx, desktop)
}

// getDesktop 加载桌面记录，不存在时返回 NOT_FOUND
func (s *DesktopService) getDesktop(ctx context.Context, id string) (*model.Desktop, error) {
	desktop, err := s.desktopRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("desktop %s not found", id), err)
		}
		return nil, err
	}
	return desktop, nil
}

// Create 创建桌面
// 先落 PROVISIONING 记录再发厂商命令：失败也要留下带错误信息的记录；
// 创建命令成功后等待实例收敛到 RUNNING，收敛超时不算失败，留给后续查询
func (s *DesktopService) Create(ctx context.Context, ownerID string, req *entity.CreateDesktopRequest) (*entity.Desktop, error) {
	logger := zerolog.Ctx(ctx)

	gpuClass := req.GPUClass
	if gpuClass == "" {
		gpuClass = gcloud.GPUNone
	}

	// 区域和预设先行校验，失败时连记录都不落
	zone, err := gcloud.Zone(req.Region)
	if err != nil {
		return nil, err
	}
	if _, err := gcloud.ImageFamily(req.Preset); err != nil {
		return nil, err
	}

	id, err := s.idGen.GenerateDesktopID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to generate desktop ID", err)
	}

	desktop := &model.Desktop{
		ID:        id,
		OwnerID:   ownerID,
		Status:    string(entity.DesktopStatusProvisioning),
		CPUCores:  req.CPUCores,
		RAMGB:     req.RAMGB,
		StorageGB: req.StorageGB,
		GPUClass:  gpuClass,
		Region:    req.Region,
		Preset:    req.Preset,
		Zone:      zone,
	}
	if err := s.desktopRepo.Create(ctx, desktop); err != nil {
		return nil, err
	}

	logger.Info().
		Str("desktop_id", id).
		Str("owner_id", ownerID).
		Str("region", req.Region).
		Str("preset", req.Preset).
		Msg("Creating desktop")

	meta, err := s.instances.Create(ctx, gcloud.CreateConfig{
		Name:      id,
		CPUCores:  req.CPUCores,
		RAMGB:     req.RAMGB,
		StorageGB: req.StorageGB,
		GPU:       gpuClass,
		Region:    req.Region,
		Preset:    req.Preset,
	})
	if err != nil {
		s.markError(ctx, desktop, err)
		return nil, err
	}

	desktop.Zone = meta.Zone
	desktop.MachineType = meta.MachineType
	desktop.ExternalIP = meta.ExternalIP
	if err := s.desktopRepo.Update(ctx, desktop); err != nil {
		return nil, err
	}

	// 创建命令被接受不代表实例已经可用，等它收敛到 RUNNING
	if err := s.instances.WaitForStatus(ctx, id, desktop.Zone, gcloud.InstanceStatusRunning, gcloud.DefaultWaitRetries, gcloud.DefaultWaitDelay); err != nil {
		if errors.Is(err, apierror.ErrTimeout) {
			logger.Warn().Str("desktop_id", id).Msg("Desktop did not converge to RUNNING yet, leaving PROVISIONING")
			return desktopModelToEntity(desktop)
		}
		s.markError(ctx, desktop, err)
		return nil, err
	}

	if err := s.transition(ctx, desktop, entity.DesktopStatusRunning); err != nil {
		return nil, err
	}
	return desktopModelToEntity(desktop)
}

// Describe 查询桌面
// 非终态的桌面顺带从厂商侧刷新状态和外部地址，不信任本地副本
func (s *DesktopService) Describe(ctx context.Context, id string) (*entity.Desktop, error) {
	desktop, err := s.getDesktop(ctx, id)
	if err != nil {
		return nil, err
	}

	status := entity.DesktopStatus(desktop.Status)
	if status == entity.DesktopStatusDeleted || status == entity.DesktopStatusError ||
		(status == entity.DesktopStatusProvisioning && desktop.Zone == "") {
		return desktopModelToEntity(desktop)
	}

	detail, err := s.instances.Describe(ctx, desktop.ID, desktop.Zone)
	if err != nil {
		// 刷新失败不致命，返回本地记录
		zerolog.Ctx(ctx).Warn().Str("desktop_id", id).Err(err).Msg("Failed to refresh desktop from provider")
		return desktopModelToEntity(desktop)
	}

	refreshed := status
	switch detail.Status {
	case gcloud.InstanceStatusRunning:
		refreshed = entity.DesktopStatusRunning
	case gcloud.InstanceStatusTerminated:
		refreshed = entity.DesktopStatusStopped
	}
	if refreshed != status && !status.CanTransitionTo(refreshed) {
		refreshed = status
	}

	desktop.Status = string(refreshed)
	desktop.ExternalIP = detail.ExternalIP
	if err := s.desktopRepo.Update(ctx, desktop); err != nil {
		return nil, err
	}
	return desktopModelToEntity(desktop)
}

// List 枚举桌面
// 只返回调用方自己的记录，和用量汇总同一个归属口径
func (s *DesktopService) List(ctx context.Context, ownerID string, req *entity.ListDesktopsRequest) ([]entity.Desktop, error) {
	filters := map[string]interface{}{"owner_id": ownerID}
	if req.Status != "" {
		filters["status"] = req.Status
	}
	desktops, err := s.desktopRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return desktopModelsToEntities(desktops)
}

// Start 启动桌面
func (s *DesktopService) Start(ctx context.Context, id string) (*entity.DesktopStateChangeResponse, error) {
	desktop, err := s.getDesktop(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := entity.DesktopStatus(desktop.Status)
	if err := entity.ValidateDesktopTransition(previous, entity.DesktopStatusRunning); err != nil {
		return nil, apierror.WrapError(apierror.ErrInvalidConfig, err.Error(), nil)
	}

	if err := s.instances.Start(ctx, desktop.ID, desktop.Zone); err != nil {
		s.markError(ctx, desktop, err)
		return nil, err
	}
	if err := s.transition(ctx, desktop, entity.DesktopStatusRunning); err != nil {
		return nil, err
	}

	return &entity.DesktopStateChangeResponse{
		ID:             id,
		PreviousStatus: previous,
		CurrentStatus:  entity.DesktopStatusRunning,
	}, nil
}

// Stop 停止桌面
func (s *DesktopService) Stop(ctx context.Context, id string) (*entity.DesktopStateChangeResponse, error) {
	desktop, err := s.getDesktop(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := entity.DesktopStatus(desktop.Status)
	if err := entity.ValidateDesktopTransition(previous, entity.DesktopStatusStopped); err != nil {
		return nil, apierror.WrapError(apierror.ErrInvalidConfig, err.Error(), nil)
	}

	if err := s.instances.Stop(ctx, desktop.ID, desktop.Zone); err != nil {
		s.markError(ctx, desktop, err)
		return nil, err
	}
	if err := s.transition(ctx, desktop, entity.DesktopStatusStopped); err != nil {
		return nil, err
	}

	return &entity.DesktopStateChangeResponse{
		ID:             id,
		PreviousStatus: previous,
		CurrentStatus:  entity.DesktopStatusStopped,
	}, nil
}

// Delete 删除桌面
// DELETED 是终态：记录不删行，只改状态，UpdatedAt 就此定格为计费终点；
// 厂商侧已经不存在（NOT_FOUND）按删除成功处理
func (s *DesktopService) Delete(ctx context.Context, id string) (*entity.DesktopStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx)

	desktop, err := s.getDesktop(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := entity.DesktopStatus(desktop.Status)
	if err := entity.ValidateDesktopTransition(previous, entity.DesktopStatusDeleted); err != nil {
		return nil, apierror.WrapError(apierror.ErrInvalidConfig, err.Error(), nil)
	}

	if err := s.instances.Delete(ctx, desktop.ID, desktop.Zone); err != nil {
		if !errors.Is(err, apierror.ErrNotFound) {
			s.markError(ctx, desktop, err)
			return nil, err
		}
		logger.Warn().Str("desktop_id", id).Msg("Instance already gone on provider side, marking deleted")
	}

	if err := s.transition(ctx, desktop, entity.DesktopStatusDeleted); err != nil {
		return nil, err
	}

	return &entity.DesktopStateChangeResponse{
		ID:             id,
		PreviousStatus: previous,
		CurrentStatus:  entity.DesktopStatusDeleted,
	}, nil
}
