package repository

import (
	"context"

	"github.com/jimyag/clouddesk/internal/clouddesk/repository/model"
	"gorm.io/gorm"
)

// BackupRepository 备份仓库接口
type BackupRepository interface {
	Create(ctx context.Context, backup *model.Backup) error
	GetByID(ctx context.Context, id string) (*model.Backup, error)
	List(ctx context.Context, filters map[string]interface{}) ([]*model.Backup, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Backup, error)
	Update(ctx context.Context, backup *model.Backup) error
}

type backupRepository struct {
	db *gorm.DB
}

// NewBackupRepository 创建备份仓库
func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepository{db: db}
}

// Create 创建备份记录
func (r *backupRepository) Create(ctx context.Context, backup *model.Backup) error {
	return r.db.WithContext(ctx).Create(backup).Error
}

// GetByID 根据 ID 获取备份（包括 DELETED 的记录）
func (r *backupRepository) GetByID(ctx context.Context, id string) (*model.Backup, error) {
	var backup model.Backup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&backup).Error; err != nil {
		return nil, err
	}
	return &backup, nil
}

// List 列出备份
func (r *backupRepository) List(ctx context.Context, filters map[string]interface{}) ([]*model.Backup, error) {
	var backups []*model.Backup
	query := r.db.WithContext(ctx).Model(&model.Backup{})

	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if ownerID, ok := filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	if desktopID, ok := filters["desktop_id"]; ok {
		query = query.Where("desktop_id = ?", desktopID)
	}

	if err := query.Order("created_at DESC").Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}

// ListByOwner 列出一个用户的全部备份（包括 DELETED 的记录，计费需要）
func (r *backupRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Backup, error) {
	return r.List(ctx, map[string]interface{}{"owner_id": ownerID})
}

// Update 更新备份记录
func (r *backupRepository) Update(ctx context.Context, backup *model.Backup) error {
	return r.db.WithContext(ctx).Save(backup).Error
}
