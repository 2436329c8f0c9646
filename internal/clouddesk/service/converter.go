// Package service 提供业务逻辑层的服务实现
package service

import (
	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository/model"
	"github.com/jinzhu/copier"
)

// desktopModelToEntity 将 model.Desktop 转换为 entity.Desktop
func desktopModelToEntity(m *model.Desktop) (*entity.Desktop, error) {
	e := &entity.Desktop{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}
	e.Status = entity.DesktopStatus(m.Status)
	return e, nil
}

// desktopModelsToEntities 批量转换桌面记录
func desktopModelsToEntities(models []*model.Desktop) ([]entity.Desktop, error) {
	entities := make([]entity.Desktop, 0, len(models))
	for _, m := range models {
		e, err := desktopModelToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}
	return entities, nil
}

// backupModelToEntity 将 model.Backup 转换为 entity.Backup
func backupModelToEntity(m *model.Backup) (*entity.Backup, error) {
	e := &entity.Backup{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}
	e.Status = entity.BackupStatus(m.Status)
	return e, nil
}

// backupModelsToEntities 批量转换备份记录
func backupModelsToEntities(models []*model.Backup) ([]entity.Backup, error) {
	entities := make([]entity.Backup, 0, len(models))
	for _, m := range models {
		e, err := backupModelToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}
	return entities, nil
}
