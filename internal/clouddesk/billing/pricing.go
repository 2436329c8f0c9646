// Package billing 实现用量计费
// 对持久化记录和价格表做纯计算，不做任何厂商 I/O；
// 这里出错只可能是程序错误（记录畸形），不参与错误分类
package billing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pricing 价格表
// 部署期常量，服务启动时从配置文件加载，用户不可修改
type Pricing struct {
	// CPURate 每核每小时
	CPURate float64 `yaml:"cpu_rate"`
	// RAMRate 每 GB 内存每小时
	RAMRate float64 `yaml:"ram_rate"`
	// StorageRate 每 GB 启动盘每小时
	StorageRate float64 `yaml:"storage_rate"`
	// GPUSurcharge 按 GPU 型号的每小时附加费，"none" 恒为 0
	GPUSurcharge map[string]float64 `yaml:"gpu_surcharge"`
	// BackupStorageRate 备份存储每 GB 每小时
	BackupStorageRate float64 `yaml:"backup_storage_rate"`
	// Markup 全局加价倍率
	Markup float64 `yaml:"markup"`
}

// DefaultPricing 返回默认价格表
func DefaultPricing() Pricing {
	return Pricing{
		CPURate:     788.5,
		RAMRate:     107.9,
		StorageRate: 2.324,
		GPUSurcharge: map[string]float64{
			"none": 0,
			"t4":   350,
			"l4":   560,
			"a100": 2950,
		},
		BackupStorageRate: 0.095,
		Markup:            1.0,
	}
}

// LoadPricing 从 YAML 文件加载价格表
// path 为空时返回默认价格表；文件中缺失的倍率回落到 1.0
func LoadPricing(path string) (Pricing, error) {
	if path == "" {
		return DefaultPricing(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Pricing{}, fmt.Errorf("read pricing file: %w", err)
	}

	pricing := DefaultPricing()
	if err := yaml.Unmarshal(data, &pricing); err != nil {
		return Pricing{}, fmt.Errorf("parse pricing file: %w", err)
	}
	if pricing.Markup <= 0 {
		pricing.Markup = 1.0
	}
	return pricing, nil
}

// surcharge 查 GPU 附加费，未知型号按 0 计
func (p Pricing) surcharge(gpuClass string) float64 {
	if p.GPUSurcharge == nil {
		return 0
	}
	return p.GPUSurcharge[gpuClass]
}
