package service

import (
	"context"

	"github.com/jimyag/clouddesk/internal/clouddesk/billing"
	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository"
)

// UsageService 用量服务
// 每次请求都从当前记录现算，汇总结果不持久化
type UsageService struct {
	desktopRepo repository.DesktopRepository
	backupRepo  repository.BackupRepository
	engine      *billing.Engine
}

// NewUsageService 创建用量服务
func NewUsageService(
	desktopRepo repository.DesktopRepository,
	backupRepo repository.BackupRepository,
	engine *billing.Engine,
) *UsageService {
	return &UsageService{
		desktopRepo: desktopRepo,
		backupRepo:  backupRepo,
		engine:      engine,
	}
}

// Summarize 汇总一个用户的用量
// DELETED 的记录也参与：计费历史保留在状态值里，不做行删除
func (s *UsageService) Summarize(ctx context.Context, ownerID string) (*entity.UsageSummary, error) {
	desktopModels, err := s.desktopRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	backupModels, err := s.backupRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	desktops, err := desktopModelsToEntities(desktopModels)
	if err != nil {
		return nil, err
	}
	backups, err := backupModelsToEntities(backupModels)
	if err != nil {
		return nil, err
	}

	return s.engine.Summarize(ownerID, desktops, backups), nil
}
