package billing

import (
	"math"
	"time"

	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
)

// Engine 计费引擎
// 输入是调用方传入的不可变记录快照，Engine 从不修改它们
type Engine struct {
	pricing Pricing
	// now 可注入，测试用固定时钟
	now func() time.Time
}

// NewEngine 创建计费引擎
func NewEngine(pricing Pricing) *Engine {
	return &Engine{
		pricing: pricing,
		now:     time.Now,
	}
}

// Round2 四舍五入到两位小数
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Rate 每小时费率拆分
// 各分项独立舍入，Total 是舍入后分项的和，RawTotal 保留未舍入值用于审计
type Rate struct {
	Compute  float64
	Storage  float64
	Total    float64
	RawTotal float64
}

// HourlyCost 计算桌面的每小时费率
// 计算、存储两个分项各自乘以全局倍率后独立舍入；
// 历史口径如此，Total 因此可能和未舍入合计差一分钱
func (e *Engine) HourlyCost(desktop *entity.Desktop) Rate {
	rawCompute := (float64(desktop.CPUCores)*e.pricing.CPURate +
		float64(desktop.RAMGB)*e.pricing.RAMRate +
		e.pricing.surcharge(desktop.GPUClass)) * e.pricing.Markup
	rawStorage := float64(desktop.StorageGB) * e.pricing.StorageRate * e.pricing.Markup

	compute := Round2(rawCompute)
	storage := Round2(rawStorage)
	return Rate{
		Compute:  compute,
		Storage:  storage,
		Total:    Round2(compute + storage),
		RawTotal: rawCompute + rawStorage,
	}
}

// BillableHours 计算桌面的计费时长（小时）
// DELETED 的记录用 UpdatedAt 冻结计费窗口，其余状态计到当前时刻；负值截断为 0
func (e *Engine) BillableHours(desktop *entity.Desktop) float64 {
	end := e.now()
	if desktop.Status == entity.DesktopStatusDeleted {
		end = desktop.UpdatedAt
	}
	hours := end.Sub(desktop.CreatedAt).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

// DesktopCost 计算单个桌面的费用明细
// 各分项独立舍入，TotalCost 不保证严格等于分项之和
func (e *Engine) DesktopCost(desktop *entity.Desktop) entity.DesktopCost {
	rate := e.HourlyCost(desktop)
	hours := e.BillableHours(desktop)

	return entity.DesktopCost{
		DesktopID:     desktop.ID,
		Status:        string(desktop.Status),
		BillableHours: Round2(hours),
		ComputeCost:   Round2(hours * rate.Compute),
		StorageCost:   Round2(hours * rate.Storage),
		TotalCost:     Round2(hours * rate.Total),
		RawTotal:      hours * rate.RawTotal,
	}
}

// BackupHours 计算备份的计费时长，窗口冻结规则同桌面
func (e *Engine) BackupHours(backup *entity.Backup) float64 {
	end := e.now()
	if backup.Status == entity.BackupStatusDeleted {
		end = backup.UpdatedAt
	}
	hours := end.Sub(backup.CreatedAt).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

// BackupCost 计算单个备份的费用
// 镜像大小未知（还在拷贝中）时费用为 0，不是错误
func (e *Engine) BackupCost(backup *entity.Backup) entity.BackupCost {
	hours := e.BackupHours(backup)

	cost := entity.BackupCost{
		BackupID:      backup.ID,
		Status:        string(backup.Status),
		BillableHours: Round2(hours),
	}
	if backup.StorageBytes == nil {
		return cost
	}

	gb := float64(*backup.StorageBytes) / float64(1<<30)
	cost.StorageGB = Round2(gb)
	cost.TotalCost = Round2(gb * hours * e.pricing.BackupStorageRate)
	return cost
}

// Summarize 汇总一个用户的全部用量
// 所有记录都参与合计，包括 DELETED（历史费用保留）；
// "活跃" 只统计 RUNNING 和 PROVISIONING；合计在求和之后统一舍入
func (e *Engine) Summarize(ownerID string, desktops []entity.Desktop, backups []entity.Backup) *entity.UsageSummary {
	summary := &entity.UsageSummary{
		OwnerID:      ownerID,
		DesktopCount: len(desktops),
		BackupCount:  len(backups),
		Desktops:     make([]entity.DesktopCost, 0, len(desktops)),
		Backups:      make([]entity.BackupCost, 0, len(backups)),
	}

	var totalHours, computeTotal, storageTotal, desktopTotal, backupTotal float64
	for i := range desktops {
		desktop := &desktops[i]
		cost := e.DesktopCost(desktop)
		summary.Desktops = append(summary.Desktops, cost)
		totalHours += cost.BillableHours
		computeTotal += cost.ComputeCost
		storageTotal += cost.StorageCost
		desktopTotal += cost.TotalCost

		if desktop.Status == entity.DesktopStatusRunning ||
			desktop.Status == entity.DesktopStatusProvisioning {
			summary.ActiveDesktopCount++
		}
	}
	for i := range backups {
		cost := e.BackupCost(&backups[i])
		summary.Backups = append(summary.Backups, cost)
		totalHours += cost.BillableHours
		backupTotal += cost.TotalCost
	}

	summary.TotalBillableHours = Round2(totalHours)
	summary.ComputeTotal = Round2(computeTotal)
	summary.StorageTotal = Round2(storageTotal)
	summary.DesktopTotal = Round2(desktopTotal)
	summary.BackupTotal = Round2(backupTotal)
	summary.GrandTotal = Round2(desktopTotal + backupTotal)
	if len(desktops) > 0 {
		summary.AverageDesktopCost = Round2(desktopTotal / float64(len(desktops)))
	}
	return summary
}
