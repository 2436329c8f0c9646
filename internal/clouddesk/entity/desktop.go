// Package entity 定义业务实体
package entity

import "time"

// Desktop 云桌面信息
type Desktop struct {
	ID          string        `json:"id"`                    // 桌面 ID: desk-{递增 ID}
	OwnerID     string        `json:"owner_id"`              // 归属用户
	Status      DesktopStatus `json:"status"`                // 状态
	CPUCores    int           `json:"cpu_cores"`             // CPU 核数
	RAMGB       int           `json:"ram_gb"`                // 内存（GB）
	StorageGB   int           `json:"storage_gb"`            // 启动盘大小（GB）
	GPUClass    string        `json:"gpu_class"`             // 逻辑 GPU 名，"none" 表示无
	Region      string        `json:"region"`                // 逻辑区域
	Preset      string        `json:"preset"`                // 操作系统预设
	Zone        string        `json:"zone"`                  // 厂商侧可用区
	MachineType string        `json:"machine_type"`          // 厂商侧机型
	ExternalIP  string        `json:"external_ip,omitempty"` // 外部地址，未分配时为空
	LastError   string        `json:"last_error,omitempty"`  // 最近一次失败的分类错误码
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateDesktopRequest 创建桌面请求
type CreateDesktopRequest struct {
	CPUCores  int    `json:"cpu_cores"  binding:"required"`
	RAMGB     int    `json:"ram_gb"     binding:"required"`
	StorageGB int    `json:"storage_gb" binding:"required"`
	GPUClass  string `json:"gpu_class,omitempty"` // 可选，默认 "none"
	Region    string `json:"region"     binding:"required"`
	Preset    string `json:"preset"     binding:"required"`
}

// CreateDesktopResponse 创建桌面响应
type CreateDesktopResponse struct {
	Desktop *Desktop `json:"desktop"`
}

// DescribeDesktopRequest 查询单个桌面请求
type DescribeDesktopRequest struct {
	ID string `uri:"id" binding:"required"`
}

// DescribeDesktopResponse 查询单个桌面响应
type DescribeDesktopResponse struct {
	Desktop *Desktop `json:"desktop"`
}

// ListDesktopsRequest 枚举桌面请求
type ListDesktopsRequest struct {
	Status string `form:"status,omitempty"` // 按状态过滤，空表示全部
}

// ListDesktopsResponse 枚举桌面响应
type ListDesktopsResponse struct {
	Desktops []Desktop `json:"desktops"`
}

// StartDesktopRequest 启动桌面请求
type StartDesktopRequest struct {
	ID string `uri:"id" binding:"required"`
}

// StopDesktopRequest 停止桌面请求
type StopDesktopRequest struct {
	ID string `uri:"id" binding:"required"`
}

// DeleteDesktopRequest 删除桌面请求
type DeleteDesktopRequest struct {
	ID string `uri:"id" binding:"required"`
}

// DesktopStateChangeResponse 状态变更响应
type DesktopStateChangeResponse struct {
	ID             string        `json:"id"`
	PreviousStatus DesktopStatus `json:"previous_status"`
	CurrentStatus  DesktopStatus `json:"current_status"`
}
