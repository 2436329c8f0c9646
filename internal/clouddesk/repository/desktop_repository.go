package repository

import (
	"context"

	"github.com/jimyag/clouddesk/internal/clouddesk/repository/model"
	"gorm.io/gorm"
)

// DesktopRepository 桌面仓库接口
// List 和 ListByOwner 返回包括 DELETED 在内的所有记录，计费历史依赖它们
type DesktopRepository interface {
	Create(ctx context.Context, desktop *model.Desktop) error
	GetByID(ctx context.Context, id string) (*model.Desktop, error)
	List(ctx context.Context, filters map[string]interface{}) ([]*model.Desktop, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Desktop, error)
	Update(ctx context.Context, desktop *model.Desktop) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type desktopRepository struct {
	db *gorm.DB
}

// NewDesktopRepository 创建桌面仓库
func NewDesktopRepository(db *gorm.DB) DesktopRepository {
	return &desktopRepository{db: db}
}

// Create 创建桌面记录
func (r *desktopRepository) Create(ctx context.Context, desktop *model.Desktop) error {
	return r.db.WithContext(ctx).Create(desktop).Error
}

// GetByID 根据 ID 获取桌面（包括 DELETED 的记录）
func (r *desktopRepository) GetByID(ctx context.Context, id string) (*model.Desktop, error) {
	var desktop model.Desktop
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&desktop).Error; err != nil {
		return nil, err
	}
	return &desktop, nil
}

// List 列出桌面
func (r *desktopRepository) List(ctx context.Context, filters map[string]interface{}) ([]*model.Desktop, error) {
	var desktops []*model.Desktop
	query := r.db.WithContext(ctx).Model(&model.Desktop{})

	// 应用过滤器
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if ownerID, ok := filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	if region, ok := filters["region"]; ok {
		query = query.Where("region = ?", region)
	}

	if err := query.Order("created_at DESC").Find(&desktops).Error; err != nil {
		return nil, err
	}
	return desktops, nil
}

// ListByOwner 列出一个用户的全部桌面（包括 DELETED 的记录，计费需要）
func (r *desktopRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Desktop, error) {
	return r.List(ctx, map[string]interface{}{"owner_id": ownerID})
}

// Update 更新桌面记录
func (r *desktopRepository) Update(ctx context.Context, desktop *model.Desktop) error {
	return r.db.WithContext(ctx).Save(desktop).Error
}

// CountByStatus 按状态统计桌面数量，供指标上报
func (r *desktopRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&model.Desktop{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
