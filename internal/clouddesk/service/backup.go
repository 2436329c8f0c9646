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

// BackupService 备份服务，管理桌面的机器镜像备份
type BackupService struct {
	backupRepo  repository.BackupRepository
	desktopRepo repository.DesktopRepository
	images      gcloud.ImageAPI
	idGen       *idgen.Generator
}

// NewBackupService 创建备份服务
func NewBackupService(
	backupRepo repository.BackupRepository,
	desktopRepo repository.DesktopRepository,
	images gcloud.ImageAPI,
) *BackupService {
	return &BackupService{
		backupRepo:  backupRepo,
		desktopRepo: desktopRepo,
		images:      images,
		idGen:       idgen.New(),
	}
}

// getBackup 加载备份记录，不存在时返回 NOT_FOUND
func (s *BackupService) getBackup(ctx context.Context, id string) (*model.Backup, error) {
	backup, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("backup %s not found", id), err)
		}
		return nil, err
	}
	return backup, nil
}

// markError 把失败持久化到记录上，规则与桌面一致：
// TIMEOUT 只落错误信息不落 ERROR 状态，其余分类错误迁移到 ERROR
func (s *BackupService) markError(ctx context.Context, backup *model.Backup, opErr error) {
	logger := zerolog.Ctx(ctx)

	if !errors.Is(opErr, apierror.ErrTimeout) &&
		entity.BackupStatus(backup.Status).CanTransitionTo(entity.BackupStatusError) {
		backup.Status = string(entity.BackupStatusError)
	}
	backup.LastError = lastErrorOf(opErr)
	if err := s.backupRepo.Update(ctx, backup); err != nil {
		logger.Error().Str("backup_id", backup.ID).Err(err).Msg("Failed to persist error state")
	}
}

// Create 为桌面创建备份
// 厂商侧镜像拷贝是异步的：这里落 CREATING 记录并发起命令，
// 大小和终态之后由 Describe 回填
func (s *BackupService) Create(ctx context.Context, ownerID string, req *entity.CreateBackupRequest) (*entity.Backup, error) {
	logger := zerolog.Ctx(ctx)

	desktop, err := s.desktopRepo.GetByID(ctx, req.DesktopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("desktop %s not found", req.DesktopID), err)
		}
		return nil, err
	}
	if entity.DesktopStatus(desktop.Status) == entity.DesktopStatusDeleted {
		return nil, apierror.WrapError(apierror.ErrInvalidConfig,
			fmt.Sprintf("desktop %s is deleted, cannot back up", req.DesktopID), nil)
	}

	id, err := s.idGen.GenerateBackupID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrCommand, "failed to generate backup ID", err)
	}

	backup := &model.Backup{
		ID:             id,
		OwnerID:        ownerID,
		DesktopID:      desktop.ID,
		Status:         string(entity.BackupStatusCreating),
		SourceInstance: desktop.ID,
		SourceZone:     desktop.Zone,
	}
	if err := s.backupRepo.Create(ctx, backup); err != nil {
		return nil, err
	}

	logger.Info().
		Str("backup_id", id).
		Str("desktop_id", desktop.ID).
		Msg("Creating backup")

	meta, err := s.images.CreateImage(ctx, id, desktop.ID, desktop.Zone)
	if err != nil {
		s.markError(ctx, backup, err)
		return nil, err
	}

	s.applyImageMetadata(backup, meta)
	if err := s.backupRepo.Update(ctx, backup); err != nil {
		return nil, err
	}
	return backupModelToEntity(backup)
}

// applyImageMetadata 把厂商侧镜像状态套用到备份记录
// 大小回填不是状态迁移，不经过迁移表；状态只在真正变化且迁移合法时覆盖
func (s *BackupService) applyImageMetadata(backup *model.Backup, meta *gcloud.ImageMetadata) {
	current := entity.BackupStatus(backup.Status)

	var target entity.BackupStatus
	switch meta.Status {
	case gcloud.ImageStatusReady:
		target = entity.BackupStatusCompleted
	case gcloud.ImageStatusCreating:
		target = entity.BackupStatusCreating
	default:
		target = current
	}

	if target != current && current.CanTransitionTo(target) {
		backup.Status = string(target)
	}
	if meta.StorageBytes != nil {
		backup.StorageBytes = meta.StorageBytes
	}
}

// Describe 查询备份
// 还没删除的备份顺带从厂商侧刷新状态和镜像大小
func (s *BackupService) Describe(ctx context.Context, id string) (*entity.Backup, error) {
	logger := zerolog.Ctx(ctx)

	backup, err := s.getBackup(ctx, id)
	if err != nil {
		return nil, err
	}

	status := entity.BackupStatus(backup.Status)
	if status == entity.BackupStatusDeleted || status == entity.BackupStatusError {
		return backupModelToEntity(backup)
	}

	meta, err := s.images.DescribeImage(ctx, backup.ID)
	if err != nil {
		// 刷新失败不致命，返回本地记录
		logger.Warn().Str("backup_id", id).Err(err).Msg("Failed to refresh backup from provider")
		return backupModelToEntity(backup)
	}

	s.applyImageMetadata(backup, meta)
	if err := s.backupRepo.Update(ctx, backup); err != nil {
		return nil, err
	}
	return backupModelToEntity(backup)
}

// List 枚举备份
// 只返回调用方自己的记录，和用量汇总同一个归属口径
func (s *BackupService) List(ctx context.Context, ownerID string, req *entity.ListBackupsRequest) ([]entity.Backup, error) {
	filters := map[string]interface{}{"owner_id": ownerID}
	if req.DesktopID != "" {
		filters["desktop_id"] = req.DesktopID
	}
	backups, err := s.backupRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return backupModelsToEntities(backups)
}

// Delete 删除备份
// DELETED 定格计费窗口；厂商侧已经不存在按删除成功处理
func (s *BackupService) Delete(ctx context.Context, id string) error {
	logger := zerolog.Ctx(ctx)

	backup, err := s.getBackup(ctx, id)
	if err != nil {
		return err
	}
	if err := entity.ValidateBackupTransition(entity.BackupStatus(backup.Status), entity.BackupStatusDeleted); err != nil {
		return apierror.WrapError(apierror.ErrInvalidConfig, err.Error(), nil)
	}

	if err := s.images.DeleteImage(ctx, backup.ID); err != nil {
		if !errors.Is(err, apierror.ErrNotFound) {
			s.markError(ctx, backup, err)
			return err
		}
		logger.Warn().Str("backup_id", id).Msg("Image already gone on provider side, marking deleted")
	}

	backup.Status = string(entity.BackupStatusDeleted)
	backup.LastError = ""
	return s.backupRepo.Update(ctx, backup)
}

// Reconcile 对账：把厂商侧镜像清单和本地 CREATING 记录对齐
// 轮询式尽力而为，不保证强一致
func (s *BackupService) Reconcile(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	creating, err := s.backupRepo.List(ctx, map[string]interface{}{
		"status": string(entity.BackupStatusCreating),
	})
	if err != nil {
		return err
	}
	if len(creating) == 0 {
		return nil
	}

	images, err := s.images.ListImages(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]*gcloud.ImageMetadata, len(images))
	for i := range images {
		byName[images[i].Name] = &images[i]
	}

	for _, backup := range creating {
		meta, ok := byName[backup.ID]
		if !ok {
			continue
		}
		s.applyImageMetadata(backup, meta)
		if err := s.backupRepo.Update(ctx, backup); err != nil {
			logger.Error().Str("backup_id", backup.ID).Err(err).Msg("Failed to reconcile backup")
		}
	}
	return nil
}
