package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// Generator 递增 ID 生成器
// 使用 Sonyflake 算法生成全局唯一且递增的 ID
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if sf == nil {
		// 如果创建失败，使用当前时间作为起始时间
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Now(),
		})
	}

	return &Generator{
		sf: sf,
	}
}

// generateIDWithPrefix 生成带前缀的 ID
func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateDesktopID 生成桌面 ID（格式：desk-{递增 ID}）
func (g *Generator) GenerateDesktopID() (string, error) {
	return g.generateIDWithPrefix("desk", "generate desktop ID")
}

// GenerateBackupID 生成备份 ID（格式：bak-{递增 ID}）
func (g *Generator) GenerateBackupID() (string, error) {
	return g.generateIDWithPrefix("bak", "generate backup ID")
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// 包级别的便捷函数，使用默认生成器

// GenerateDesktopID 使用默认生成器生成桌面 ID
func GenerateDesktopID() (string, error) {
	return DefaultGenerator().GenerateDesktopID()
}

// GenerateBackupID 使用默认生成器生成备份 ID
func GenerateBackupID() (string, error) {
	return DefaultGenerator().GenerateBackupID()
}

// GenerateID 使用默认生成器生成通用递增 ID
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
