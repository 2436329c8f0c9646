package entity

import "fmt"

// DesktopStatus 桌面状态
type DesktopStatus string

// 桌面状态集合
// 状态机单向收敛：DELETED 是终态，没有任何出边
const (
	DesktopStatusProvisioning DesktopStatus = "PROVISIONING" // 创建中
	DesktopStatusRunning      DesktopStatus = "RUNNING"      // 运行中
	DesktopStatusStopped      DesktopStatus = "STOPPED"      // 已停止
	DesktopStatusError        DesktopStatus = "ERROR"        // 出错（仍可删除）
	DesktopStatusDeleted      DesktopStatus = "DELETED"      // 已删除（终态）
)

// BackupStatus 备份状态
type BackupStatus string

// 备份状态集合
const (
	BackupStatusCreating  BackupStatus = "CREATING"  // 镜像拷贝中
	BackupStatusCompleted BackupStatus = "COMPLETED" // 已完成
	BackupStatusError     BackupStatus = "ERROR"     // 出错（仍可删除）
	BackupStatusDeleted   BackupStatus = "DELETED"   // 已删除（终态）
)

// desktopTransitions 桌面状态的合法迁移表
var desktopTransitions = map[DesktopStatus][]DesktopStatus{
	DesktopStatusProvisioning: {DesktopStatusRunning, DesktopStatusError},
	DesktopStatusRunning:      {DesktopStatusStopped, DesktopStatusError, DesktopStatusDeleted},
	DesktopStatusStopped:      {DesktopStatusRunning, DesktopStatusError, DesktopStatusDeleted},
	DesktopStatusError:        {DesktopStatusDeleted},
	DesktopStatusDeleted:      {},
}

// backupTransitions 备份状态的合法迁移表
var backupTransitions = map[BackupStatus][]BackupStatus{
	BackupStatusCreating:  {BackupStatusCompleted, BackupStatusError},
	BackupStatusCompleted: {BackupStatusDeleted},
	BackupStatusError:     {BackupStatusDeleted},
	BackupStatusDeleted:   {},
}

// CanTransitionTo 判断桌面状态迁移是否合法
// 严格按迁移表判定：同状态对不在表中，一律拒绝
// 元数据写回（不改状态）不要经过本判定，DELETED 没有任何出边
func (s DesktopStatus) CanTransitionTo(target DesktopStatus) bool {
	for _, allowed := range desktopTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanTransitionTo 判断备份状态迁移是否合法
// 严格按迁移表判定：同状态对不在表中，一律拒绝
func (s BackupStatus) CanTransitionTo(target BackupStatus) bool {
	for _, allowed := range backupTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidateDesktopTransition 校验桌面状态迁移，非法时返回错误
func ValidateDesktopTransition(from, to DesktopStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid status transition from %s to %s", from, to)
	}
	return nil
}

// ValidateBackupTransition 校验备份状态迁移，非法时返回错误
func ValidateBackupTransition(from, to BackupStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid status transition from %s to %s", from, to)
	}
	return nil
}
