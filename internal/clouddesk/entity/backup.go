package entity

import "time"

// Backup 桌面备份（厂商侧机器镜像）信息
type Backup struct {
	ID             string       `json:"id"`       // 备份 ID: bak-{递增 ID}
	OwnerID        string       `json:"owner_id"` // 归属用户
	DesktopID      string       `json:"desktop_id"`
	Status         BackupStatus `json:"status"`
	SourceInstance string       `json:"source_instance"` // 厂商侧源实例名
	SourceZone     string       `json:"source_zone"`
	// StorageBytes 镜像物化完成前未知，nil 时计费为 0
	StorageBytes *int64    `json:"storage_bytes,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateBackupRequest 创建备份请求
type CreateBackupRequest struct {
	DesktopID string `json:"desktop_id" binding:"required"`
}

// CreateBackupResponse 创建备份响应
type CreateBackupResponse struct {
	Backup *Backup `json:"backup"`
}

// DescribeBackupRequest 查询单个备份请求
type DescribeBackupRequest struct {
	ID string `uri:"id" binding:"required"`
}

// DescribeBackupResponse 查询单个备份响应
// 查询会顺带从厂商侧刷新状态和镜像大小
type DescribeBackupResponse struct {
	Backup *Backup `json:"backup"`
}

// ListBackupsRequest 枚举备份请求
type ListBackupsRequest struct {
	DesktopID string `form:"desktop_id,omitempty"` // 按桌面过滤，空表示全部
}

// ListBackupsResponse 枚举备份响应
type ListBackupsResponse struct {
	Backups []Backup `json:"backups"`
}

// DeleteBackupRequest 删除备份请求
type DeleteBackupRequest struct {
	ID string `uri:"id" binding:"required"`
}
