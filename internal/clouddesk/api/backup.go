package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/service"
	"github.com/jimyag/clouddesk/pkg/ginx"
	"github.com/rs/zerolog"
)

// BackupServiceInterface 定义备份服务的接口
type BackupServiceInterface interface {
	Create(ctx context.Context, ownerID string, req *entity.CreateBackupRequest) (*entity.Backup, error)
	Describe(ctx context.Context, id string) (*entity.Backup, error)
	List(ctx context.Context, ownerID string, req *entity.ListBackupsRequest) ([]entity.Backup, error)
	Delete(ctx context.Context, id string) error
}

type Backup struct {
	backupService BackupServiceInterface
}

func NewBackup(backupService *service.BackupService) *Backup {
	return &Backup{
		backupService: backupService,
	}
}

func (b *Backup) RegisterRoutes(router *gin.RouterGroup) {
	backupRouter := router.Group("/backups")
	backupRouter.POST("", ginx.Adapt5(b.CreateBackup))
	backupRouter.GET("", ginx.Adapt5(b.ListBackups))
	backupRouter.GET("/:id", ginx.Adapt5(b.DescribeBackup))
	backupRouter.DELETE("/:id", ginx.Adapt4(b.DeleteBackup))
}

func (b *Backup) CreateBackup(ctx *gin.Context, req *entity.CreateBackupRequest) (*entity.CreateBackupResponse, error) {
	logger := zerolog.Ctx(ctx.Request.Context())
	logger.Info().
		Str("desktop_id", req.DesktopID).
		Msg("CreateBackup called")

	backup, err := b.backupService.Create(ctx.Request.Context(), ownerID(ctx), req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("desktop_id", req.DesktopID).
			Msg("Failed to create backup")
		return nil, err
	}

	logger.Info().
		Str("backup_id", backup.ID).
		Msg("Backup creation started")

	return &entity.CreateBackupResponse{
		Backup: backup,
	}, nil
}

func (b *Backup) DescribeBackup(ctx *gin.Context, req *entity.DescribeBackupRequest) (*entity.DescribeBackupResponse, error) {
	backup, err := b.backupService.Describe(ctx.Request.Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &entity.DescribeBackupResponse{
		Backup: backup,
	}, nil
}

func (b *Backup) ListBackups(ctx *gin.Context, req *entity.ListBackupsRequest) (*entity.ListBackupsResponse, error) {
	backups, err := b.backupService.List(ctx.Request.Context(), ownerID(ctx), req)
	if err != nil {
		return nil, err
	}
	return &entity.ListBackupsResponse{
		Backups: backups,
	}, nil
}

func (b *Backup) DeleteBackup(ctx *gin.Context, req *entity.DeleteBackupRequest) error {
	logger := zerolog.Ctx(ctx.Request.Context())
	logger.Info().
		Str("backup_id", req.ID).
		Msg("DeleteBackup called")

	if err := b.backupService.Delete(ctx.Request.Context(), req.ID); err != nil {
		logger.Error().
			Err(err).
			Str("backup_id", req.ID).
			Msg("Failed to delete backup")
		return err
	}
	return nil
}
