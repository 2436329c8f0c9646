package model

import "time"

// Backup 备份表
// 与桌面一样用状态值表示删除，保留计费历史
type Backup struct {
	ID             string `gorm:"primaryKey;type:text;column:id" json:"id"` // bak-{递增 ID}
	OwnerID        string `gorm:"type:text;not null;index:idx_backups_owner_id;column:owner_id" json:"owner_id"`
	DesktopID      string `gorm:"type:text;not null;index:idx_backups_desktop_id;column:desktop_id" json:"desktop_id"`
	Status         string `gorm:"type:text;not null;index:idx_backups_status;column:status" json:"status"`
	SourceInstance string `gorm:"type:text;not null;column:source_instance" json:"source_instance"` // 厂商侧源实例名
	SourceZone     string `gorm:"type:text;not null;column:source_zone" json:"source_zone"`
	// StorageBytes 镜像物化完成前厂商不上报大小，保持 NULL
	StorageBytes *int64    `gorm:"type:integer;column:storage_bytes" json:"storage_bytes"`
	LastError    string    `gorm:"type:text;column:last_error" json:"last_error"`
	CreatedAt    time.Time `gorm:"type:datetime;not null;index:idx_backups_created_at;column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (Backup) TableName() string {
	return "backups"
}
