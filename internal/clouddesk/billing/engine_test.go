package billing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine 创建固定时钟的计费引擎
func newTestEngine(pricing Pricing, now time.Time) *Engine {
	engine := NewEngine(pricing)
	engine.now = func() time.Time { return now }
	return engine
}

func testPricing() Pricing {
	return Pricing{
		CPURate:           788.5,
		RAMRate:           107.9,
		StorageRate:       2.324,
		GPUSurcharge:      map[string]float64{"none": 0, "t4": 350},
		BackupStorageRate: 0.095,
		Markup:            1.0,
	}
}

func TestHourlyCost(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testPricing())

	t.Run("cpu ram storage without gpu", func(t *testing.T) {
		t.Parallel()
		rate := engine.HourlyCost(&entity.Desktop{
			CPUCores: 4, RAMGB: 8, StorageGB: 50, GPUClass: "none",
		})
		assert.InDelta(t, 4017.2, rate.Compute, 0.001)
		assert.InDelta(t, 116.2, rate.Storage, 0.001)
		assert.InDelta(t, 4133.4, rate.Total, 0.001)
	})

	t.Run("gpu surcharge joins the compute component", func(t *testing.T) {
		t.Parallel()
		rate := engine.HourlyCost(&entity.Desktop{
			CPUCores: 4, RAMGB: 8, StorageGB: 50, GPUClass: "t4",
		})
		assert.InDelta(t, 4017.2+350, rate.Compute, 0.001)
	})

	t.Run("markup multiplies each component", func(t *testing.T) {
		t.Parallel()
		pricing := testPricing()
		pricing.Markup = 1.2
		marked := NewEngine(pricing)

		rate := marked.HourlyCost(&entity.Desktop{
			CPUCores: 4, RAMGB: 8, StorageGB: 50, GPUClass: "none",
		})
		assert.InDelta(t, Round2(4017.2*1.2), rate.Compute, 0.001)
		assert.InDelta(t, Round2(116.2*1.2), rate.Storage, 0.001)
	})

	t.Run("raw total keeps the unrounded sum", func(t *testing.T) {
		t.Parallel()
		rate := engine.HourlyCost(&entity.Desktop{
			CPUCores: 4, RAMGB: 8, StorageGB: 50, GPUClass: "none",
		})
		assert.InDelta(t, 4133.4, rate.RawTotal, 0.001)
	})
}

func TestRound2Idempotent(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{4133.4, 0.005, 123.456, 0, -7.891, 8266.8} {
		assert.Equal(t, Round2(x), Round2(Round2(x)), "rounding twice should be a no-op for %v", x)
	}
}

func TestBillableHours(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestEngine(testPricing(), now)

	t.Run("running desktop bills to now", func(t *testing.T) {
		t.Parallel()
		hours := engine.BillableHours(&entity.Desktop{
			Status:    entity.DesktopStatusRunning,
			CreatedAt: now.Add(-2 * time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		})
		assert.InDelta(t, 2.0, hours, 0.001)
	})

	t.Run("deleted desktop freezes at updated_at", func(t *testing.T) {
		t.Parallel()
		created := now.Add(-10 * time.Hour)
		deleted := now.Add(-4 * time.Hour)
		hours := engine.BillableHours(&entity.Desktop{
			Status:    entity.DesktopStatusDeleted,
			CreatedAt: created,
			UpdatedAt: deleted,
		})
		assert.InDelta(t, 6.0, hours, 0.001)
	})

	t.Run("negative window clamps to zero", func(t *testing.T) {
		t.Parallel()
		hours := engine.BillableHours(&entity.Desktop{
			Status:    entity.DesktopStatusDeleted,
			CreatedAt: now,
			UpdatedAt: now.Add(-time.Hour),
		})
		assert.Zero(t, hours)
	})
}

func TestBillableHoursMonotonic(t *testing.T) {
	t.Parallel()

	// 非 DELETED 记录的计费时长随查询时刻单调不减
	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	desktop := &entity.Desktop{Status: entity.DesktopStatusStopped, CreatedAt: created}

	var prev float64
	for i := 1; i <= 10; i++ {
		engine := newTestEngine(testPricing(), created.Add(time.Duration(i)*time.Hour))
		hours := engine.BillableHours(desktop)
		assert.GreaterOrEqual(t, hours, prev)
		prev = hours
	}
}

func TestDesktopCost_EndToEnd(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	engine := newTestEngine(testPricing(), created.Add(2*time.Hour))

	cost := engine.DesktopCost(&entity.Desktop{
		ID: "desk-1", Status: entity.DesktopStatusRunning,
		CPUCores: 4, RAMGB: 8, StorageGB: 50, GPUClass: "none",
		CreatedAt: created,
	})

	assert.InDelta(t, 2.0, cost.BillableHours, 0.001)
	assert.InDelta(t, 8034.4, cost.ComputeCost, 0.001)
	assert.InDelta(t, 232.4, cost.StorageCost, 0.001)
	assert.InDelta(t, 8266.8, cost.TotalCost, 0.001)
}

func TestBackupCost(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	engine := newTestEngine(testPricing(), created.Add(10*time.Hour))

	t.Run("unknown size accrues nothing", func(t *testing.T) {
		t.Parallel()
		cost := engine.BackupCost(&entity.Backup{
			ID: "bak-1", Status: entity.BackupStatusCreating,
			CreatedAt: created,
		})
		assert.Zero(t, cost.TotalCost)
		assert.Zero(t, cost.StorageGB)
	})

	t.Run("known size bills by gb hours", func(t *testing.T) {
		t.Parallel()
		size := int64(10 << 30) // 10 GB
		cost := engine.BackupCost(&entity.Backup{
			ID: "bak-1", Status: entity.BackupStatusCompleted,
			StorageBytes: &size,
			CreatedAt:    created,
		})
		assert.InDelta(t, 10.0, cost.StorageGB, 0.001)
		assert.InDelta(t, Round2(10*10*0.095), cost.TotalCost, 0.001)
	})

	t.Run("deleted backup freezes its window", func(t *testing.T) {
		t.Parallel()
		size := int64(10 << 30)
		cost := engine.BackupCost(&entity.Backup{
			ID: "bak-1", Status: entity.BackupStatusDeleted,
			StorageBytes: &size,
			CreatedAt:    created,
			UpdatedAt:    created.Add(3 * time.Hour),
		})
		assert.InDelta(t, 3.0, cost.BillableHours, 0.001)
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestEngine(testPricing(), now)

	size := int64(5 << 30)
	desktops := []entity.Desktop{
		{ID: "desk-1", Status: entity.DesktopStatusRunning, CPUCores: 4, RAMGB: 8, StorageGB: 50, GPUClass: "none", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "desk-2", Status: entity.DesktopStatusStopped, CPUCores: 2, RAMGB: 4, StorageGB: 50, GPUClass: "none", CreatedAt: now.Add(-1 * time.Hour)},
		// 已删除的桌面仍计入历史费用
		{ID: "desk-3", Status: entity.DesktopStatusDeleted, CPUCores: 2, RAMGB: 4, StorageGB: 50, GPUClass: "none", CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: now.Add(-4 * time.Hour)},
	}
	backups := []entity.Backup{
		{ID: "bak-1", Status: entity.BackupStatusCompleted, StorageBytes: &size, CreatedAt: now.Add(-10 * time.Hour)},
		{ID: "bak-2", Status: entity.BackupStatusCreating, CreatedAt: now.Add(-time.Hour)},
	}

	summary := engine.Summarize("owner-1", desktops, backups)

	assert.Equal(t, "owner-1", summary.OwnerID)
	assert.Equal(t, 3, summary.DesktopCount)
	assert.Equal(t, 2, summary.BackupCount)
	// STOPPED 和 DELETED 不计入活跃
	assert.Equal(t, 1, summary.ActiveDesktopCount)
	require.Len(t, summary.Desktops, 3)
	require.Len(t, summary.Backups, 2)

	var desktopSum float64
	for _, cost := range summary.Desktops {
		assert.Positive(t, cost.TotalCost, "every record contributes, including deleted: %s", cost.DesktopID)
		desktopSum += cost.TotalCost
	}
	assert.InDelta(t, Round2(desktopSum), summary.DesktopTotal, 0.001)
	assert.InDelta(t, Round2(desktopSum/3), summary.AverageDesktopCost, 0.001)
	assert.InDelta(t, Round2(summary.DesktopTotal+summary.BackupTotal), summary.GrandTotal, 0.01)

	// 合计字段：计费时长含桌面和备份，计算/存储按桌面分项求和后舍入
	// 2h + 1h + 1h (桌面) + 10h + 1h (备份) = 15h
	assert.InDelta(t, 15.0, summary.TotalBillableHours, 0.001)
	// 8034.4 + 2008.6 + 2008.6
	assert.InDelta(t, 12051.6, summary.ComputeTotal, 0.001)
	// 232.4 + 116.2 + 116.2
	assert.InDelta(t, 464.8, summary.StorageTotal, 0.001)

	var computeSum, storageSum float64
	for _, cost := range summary.Desktops {
		computeSum += cost.ComputeCost
		storageSum += cost.StorageCost
	}
	assert.InDelta(t, Round2(computeSum), summary.ComputeTotal, 0.001)
	assert.InDelta(t, Round2(storageSum), summary.StorageTotal, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testPricing())
	summary := engine.Summarize("owner-1", nil, nil)

	assert.Zero(t, summary.DesktopCount)
	assert.Zero(t, summary.GrandTotal)
	// 没有桌面时平均值是 0，不是 NaN
	assert.Zero(t, summary.AverageDesktopCost)
}

func TestLoadPricing(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Parallel()
		pricing, err := LoadPricing("")
		require.NoError(t, err)
		assert.InDelta(t, 788.5, pricing.CPURate, 0.001)
		assert.InDelta(t, 1.0, pricing.Markup, 0.001)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "pricing.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cpu_rate: 100\nmarkup: 1.5\n"), 0o644))

		pricing, err := LoadPricing(path)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, pricing.CPURate, 0.001)
		assert.InDelta(t, 1.5, pricing.Markup, 0.001)
		// 未覆盖的字段保持默认值
		assert.InDelta(t, 107.9, pricing.RAMRate, 0.001)
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()
		_, err := LoadPricing(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
