package entity

// DesktopCost 单个桌面的费用明细
// 各分项独立保留两位小数，RawTotal 保留未舍入的合计用于审计
type DesktopCost struct {
	DesktopID     string  `json:"desktop_id"`
	Status        string  `json:"status"`
	BillableHours float64 `json:"billable_hours"`
	ComputeCost   float64 `json:"compute_cost"`
	StorageCost   float64 `json:"storage_cost"`
	TotalCost     float64 `json:"total_cost"`
	RawTotal      float64 `json:"raw_total"`
}

// BackupCost 单个备份的费用明细
type BackupCost struct {
	BackupID      string  `json:"backup_id"`
	Status        string  `json:"status"`
	BillableHours float64 `json:"billable_hours"`
	StorageGB     float64 `json:"storage_gb"`
	TotalCost     float64 `json:"total_cost"`
}

// UsageSummary 一个用户的用量汇总
// 已删除的资源仍计入历史费用
// 合计口径：TotalBillableHours 是桌面和备份计费时长之和，
// ComputeTotal/StorageTotal 按桌面分项拆分，BackupTotal 即备份存储费合计
type UsageSummary struct {
	OwnerID            string        `json:"owner_id"`
	DesktopCount       int           `json:"desktop_count"`
	ActiveDesktopCount int           `json:"active_desktop_count"`
	BackupCount        int           `json:"backup_count"`
	Desktops           []DesktopCost `json:"desktops"`
	Backups            []BackupCost  `json:"backups"`
	TotalBillableHours float64       `json:"total_billable_hours"`
	ComputeTotal       float64       `json:"compute_total"`
	StorageTotal       float64       `json:"storage_total"`
	DesktopTotal       float64       `json:"desktop_total"`
	BackupTotal        float64       `json:"backup_total"`
	GrandTotal         float64       `json:"grand_total"`
	AverageDesktopCost float64       `json:"average_desktop_cost"`
}

// GetUsageRequest 查询用量请求
type GetUsageRequest struct {
	OwnerID string `uri:"owner_id" binding:"required"`
}

// GetUsageResponse 查询用量响应
type GetUsageResponse struct {
	Summary *UsageSummary `json:"summary"`
}
