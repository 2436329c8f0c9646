// Package model 定义数据库表结构
package model

import "time"

// Desktop 桌面表
// 删除用状态值表示，不做行删除：DELETED 的记录要留给计费历史，
// UpdatedAt 在标记 DELETED 时定格，成为计费窗口的终点
type Desktop struct {
	ID          string    `gorm:"primaryKey;type:text;column:id" json:"id"` // desk-{递增 ID}
	OwnerID     string    `gorm:"type:text;not null;index:idx_desktops_owner_id;column:owner_id" json:"owner_id"`
	Status      string    `gorm:"type:text;not null;index:idx_desktops_status;column:status" json:"status"`
	CPUCores    int       `gorm:"type:integer;not null;column:cpu_cores" json:"cpu_cores"`
	RAMGB       int       `gorm:"type:integer;not null;column:ram_gb" json:"ram_gb"`
	StorageGB   int       `gorm:"type:integer;not null;column:storage_gb" json:"storage_gb"`
	GPUClass    string    `gorm:"type:text;not null;column:gpu_class" json:"gpu_class"`
	Region      string    `gorm:"type:text;not null;column:region" json:"region"`
	Preset      string    `gorm:"type:text;not null;column:preset" json:"preset"`
	Zone        string    `gorm:"type:text;column:zone" json:"zone"`                 // 厂商侧可用区
	MachineType string    `gorm:"type:text;column:machine_type" json:"machine_type"` // 厂商侧机型
	ExternalIP  string    `gorm:"type:text;column:external_ip" json:"external_ip"`
	LastError   string    `gorm:"type:text;column:last_error" json:"last_error"`
	CreatedAt   time.Time `gorm:"type:datetime;not null;index:idx_desktops_created_at;column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (Desktop) TableName() string {
	return "desktops"
}
